package moex

// issTable is the column/row layout every ISS block uses.
type issTable struct {
	Columns []string        `json:"columns"`
	Data    [][]interface{} `json:"data"`
}

// value returns the first row's cell for column, or nil.
func (t issTable) value(column string) interface{} {
	if len(t.Data) == 0 {
		return nil
	}
	for i, c := range t.Columns {
		if c == column && i < len(t.Data[0]) {
			return t.Data[0][i]
		}
	}
	return nil
}

type issResponse struct {
	Marketdata issTable `json:"marketdata"`
	Securities issTable `json:"securities"`
}
