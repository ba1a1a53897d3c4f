package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/camuig/stock-quest/internal/game"
	"github.com/camuig/stock-quest/internal/portfolio"
)

func sampleEngine(t *testing.T) *game.Engine {
	t.Helper()
	e := game.New("Long Term")
	for _, h := range []struct {
		name, symbol string
		qty          int
		buy, current float64
	}{
		{"Tata Consultancy Services", "TCS.NS", 10, 3500, 3650},
		{"Infosys", "INFY.NS", 15, 1450, 1520.25},
		{"Reliance", "RELIANCE.NS", 8, 2450, 2400},
	} {
		hh, err := portfolio.NewHolding(h.name, h.symbol, h.qty, h.buy, h.current)
		require.NoError(t, err)
		e.AddHolding(hh)
	}
	e.RecordTradeOutcome(true)
	e.UpdateDailyProfitLoss()
	e.RecordActiveDay(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	return e
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	e := sampleEngine(t)
	original := Capture(e)

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	restored, err := decoded.Restore()
	require.NoError(t, err)
	assert.Equal(t, e.State(), restored.State())
	assert.Equal(t, "Long Term", restored.Ledger().Name())

	got := restored.Ledger().Holdings()
	want := e.Ledger().Holdings()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, *want[i], *got[i])
	}
}

func TestCapture_PreservesAchievementOrder(t *testing.T) {
	e := sampleEngine(t)
	s := Capture(e)
	assert.Equal(t, e.Achievements(), s.Achievements)
	assert.Equal(t, game.FirstStock, s.Achievements[0])
}

func TestCapture_EmptyEngine(t *testing.T) {
	s := Capture(game.New("Empty"))
	data, err := Encode(s)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, decoded.Holdings)
	assert.Empty(t, decoded.Achievements)
	assert.Equal(t, 1, decoded.Level)
}

func TestDecode_Corrupt(t *testing.T) {
	tests := map[string][]byte{
		"empty":          nil,
		"foreign header": []byte("not a snapshot"),
		"truncated body": append([]byte("QUEST"), 0xde, 0x00),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecode_IncompatibleVersion(t *testing.T) {
	body, err := msgpack.Marshal(&Snapshot{Version: Version + 1, Level: 1})
	require.NoError(t, err)

	_, err = Decode(append([]byte("QUEST"), body...))
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestRestore_RejectsBadLevel(t *testing.T) {
	_, err := (&Snapshot{Version: Version, Level: 0}).Restore()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portfolio.quest")
	store := NewFileStore(path)
	e := sampleEngine(t)

	require.NoError(t, store.Save(Capture(e)))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Capture(e), loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "p.quest"))
	e := sampleEngine(t)
	require.NoError(t, store.Save(Capture(e)))

	e.RemoveHolding("INFY.NS")
	require.NoError(t, store.Save(Capture(e)))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Holdings, 2)
}

func TestFileStore_LoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.quest")
	_, err := NewFileStore(path).Load()

	assert.ErrorIs(t, err, ErrNotFound)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, path, lerr.Path)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.quest")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	_, err := NewFileStore(path).Load()
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}
