package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestIsolatedLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.log")
	log := NewIsolatedLogger(path)

	log.Debug("ingest", "below file level", nil)
	log.Info("ingest", "Document indexed", map[string]interface{}{"chunks": 3})
	log.Error("ingest", "Document indexing failed", map[string]interface{}{"error": "embed chunk 0: timeout"})
	_ = log.Sync()

	entries := readEntries(t, path)
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "ingest", entries[0]["module"])
	assert.Equal(t, "Document indexed", entries[0]["message"])
	assert.NotContains(t, entries[0], "error")

	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "embed chunk 0: timeout", entries[1]["error"])
}

func TestNew_NoSinksFallsBackToNop(t *testing.T) {
	log := New(Options{})
	assert.NotPanics(t, func() {
		log.Warn("loop", "nothing configured", nil)
	})
}
