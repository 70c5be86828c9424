package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ndxcap/internal/contracts"
	"github.com/wonny/ndxcap/pkg/config"
	"github.com/wonny/ndxcap/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "console",
	})
}

func testDataset() contracts.Dataset {
	return contracts.Dataset{
		{Date: "2024-06-01", Name: "AAPL", FullName: "Apple Inc.", Category: "Technology", Value: 3_000_000_000_000, Growth: 0.1234},
		{Date: "2024-06-01", Name: "GOOG(L)", FullName: "Alphabet", Category: "Communication Services", Value: 2_200_000_000_000, Growth: -0.0021},
	}
}

func TestStore_Load_MissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.json"), testLogger())

	ds, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestStore_Load_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New(path, testLogger())

	ds, err := s.Load()
	require.NoError(t, err, "corrupt file is treated as no prior data")
	assert.Empty(t, ds)
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := New(path, testLogger())

	want := testDataset()
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_Save_WireFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := New(path, testLogger())

	require.NoError(t, s.Save(testDataset()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Len(t, raw, 2)

	first := raw[0]
	assert.Equal(t, "2024-06-01", first["date"])
	assert.Equal(t, "AAPL", first["name"])
	assert.Equal(t, "Apple Inc.", first["fullname"])
	assert.Equal(t, "Technology", first["category"])
	assert.EqualValues(t, 3_000_000_000_000, first["value"])
	assert.EqualValues(t, 0.1234, first["growth"])
}

func TestStore_Save_ReplacesExistingFileAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	s := New(path, testLogger())

	require.NoError(t, s.Save(testDataset()))
	require.NoError(t, s.Save(testDataset()[:1]))

	ds, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, ds, 1)

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Save_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")
	s := New(path, testLogger())

	require.NoError(t, s.Save(testDataset()))

	ds, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, ds, 2)
}
