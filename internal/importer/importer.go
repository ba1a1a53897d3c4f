package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/portfolio"
)

// RowError describes a skipped input line.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

type Result struct {
	Holdings []*portfolio.Holding
	Skipped  []*RowError
}

// Mapping selects 0-based columns for the generic format. NameCol may be
// NoColumn to reuse the symbol as the name.
type Mapping struct {
	SymbolCol       int
	NameCol         int
	QuantityCol     int
	BuyPriceCol     int
	CurrentPriceCol int
}

const NoColumn = -1

// TemplateMapping matches the columns written by WriteTemplate.
var TemplateMapping = Mapping{SymbolCol: 0, NameCol: 1, QuantityCol: 2, BuyPriceCol: 3, CurrentPriceCol: 4}

type Format string

const (
	FormatZerodha Format = "zerodha"
	FormatGroww   Format = "groww"
	FormatGeneric Format = "generic"
)

type Importer struct {
	logger *logger.Logger
}

func New(log *logger.Logger) *Importer {
	return &Importer{logger: log}
}

// Import dispatches to the parser for format. Mapping is only used by FormatGeneric.
func (im *Importer) Import(format Format, r io.Reader, m Mapping) (*Result, error) {
	switch format {
	case FormatZerodha:
		return im.ImportZerodha(r)
	case FormatGroww:
		return im.ImportGroww(r)
	case FormatGeneric:
		return im.ImportGeneric(r, m)
	default:
		return nil, fmt.Errorf("unknown import format %q", format)
	}
}

// ImportZerodha reads Instrument, Qty., Avg. cost, LTP[, ...].
func (im *Importer) ImportZerodha(r io.Reader) (*Result, error) {
	return im.parse(r, "zerodha", func(fields []string) (*portfolio.Holding, error) {
		if len(fields) < 4 {
			return nil, fmt.Errorf("expected at least 4 columns, got %d", len(fields))
		}
		symbol := NormalizeSymbol(fields[0])
		qty, err := parseQuantity(fields[1])
		if err != nil {
			return nil, err
		}
		avgCost, err := parsePlain(fields[2])
		if err != nil {
			return nil, err
		}
		current, err := parsePlain(fields[3])
		if err != nil {
			return nil, err
		}
		return portfolio.NewHolding(symbol, symbol, qty, avgCost, current)
	})
}

// ImportGroww reads Stock Name, Quantity, Avg Buy Price, Current Price with
// currency-prefixed prices.
func (im *Importer) ImportGroww(r io.Reader) (*Result, error) {
	return im.parse(r, "groww", func(fields []string) (*portfolio.Holding, error) {
		if len(fields) < 4 {
			return nil, fmt.Errorf("expected at least 4 columns, got %d", len(fields))
		}
		name := strings.TrimSpace(fields[0])
		symbol := NormalizeSymbol(ExtractSymbol(name))
		qty, err := parseQuantity(fields[1])
		if err != nil {
			return nil, err
		}
		avgCost, err := parseMoney(fields[2])
		if err != nil {
			return nil, err
		}
		current, err := parseMoney(fields[3])
		if err != nil {
			return nil, err
		}
		return portfolio.NewHolding(name, symbol, qty, avgCost, current)
	})
}

func (im *Importer) ImportGeneric(r io.Reader, m Mapping) (*Result, error) {
	if m.SymbolCol < 0 || m.QuantityCol < 0 || m.BuyPriceCol < 0 || m.CurrentPriceCol < 0 || m.NameCol < NoColumn {
		return nil, fmt.Errorf("invalid column mapping %+v", m)
	}
	need := max(m.SymbolCol, m.NameCol, m.QuantityCol, m.BuyPriceCol, m.CurrentPriceCol) + 1

	return im.parse(r, "generic", func(fields []string) (*portfolio.Holding, error) {
		if len(fields) < need {
			return nil, fmt.Errorf("expected at least %d columns, got %d", need, len(fields))
		}
		// Without a name column the name is the symbol as written, before any
		// exchange suffix is added.
		name := strings.TrimSpace(fields[m.SymbolCol])
		symbol := NormalizeSymbol(name)
		if m.NameCol != NoColumn {
			name = strings.TrimSpace(fields[m.NameCol])
		}
		qty, err := parseQuantity(fields[m.QuantityCol])
		if err != nil {
			return nil, err
		}
		buy, err := parseMoney(fields[m.BuyPriceCol])
		if err != nil {
			return nil, err
		}
		current, err := parseMoney(fields[m.CurrentPriceCol])
		if err != nil {
			return nil, err
		}
		return portfolio.NewHolding(name, symbol, qty, buy, current)
	})
}

// parse skips the header and hands each remaining record to row. Rows that fail
// are logged and collected; only read errors from r abort the import.
func (im *Importer) parse(r io.Reader, format string, row func([]string) (*portfolio.Holding, error)) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	res := &Result{}
	header := true
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("read %s csv: %w", format, err)
			}
			if header {
				header = false
				continue
			}
			im.skip(res, format, perr.Line, perr.Err.Error())
			continue
		}
		if header {
			header = false
			continue
		}

		line, _ := cr.FieldPos(0)
		h, err := row(fields)
		if err != nil {
			im.skip(res, format, line, err.Error())
			continue
		}
		res.Holdings = append(res.Holdings, h)
	}

	im.logger.Info("csv import finished", "format", format,
		"imported", len(res.Holdings), "skipped", len(res.Skipped))
	return res, nil
}

func (im *Importer) skip(res *Result, format string, line int, reason string) {
	im.logger.Warn("skipping invalid line", "format", format, "line", line, "reason", reason)
	res.Skipped = append(res.Skipped, &RowError{Line: line, Reason: reason})
}

var moneyNoise = strings.NewReplacer("₹", "", "$", "", "€", "", "£", "", ",", "", " ", "")

func parseQuantity(s string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return q, nil
}

func parsePlain(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return v, nil
}

func parseMoney(s string) (float64, error) {
	v, err := strconv.ParseFloat(moneyNoise.Replace(strings.TrimSpace(s)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return v, nil
}
