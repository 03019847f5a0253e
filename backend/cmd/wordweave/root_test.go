package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordweave/backend/internal/lexicon"
	"wordweave/backend/internal/sqlstore"
)

// setupEnv points every command at a throwaway SQLite file and disk cache.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "graph.db"))
	t.Setenv("CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("RANDOM_SEED", "1")
	t.Setenv("ENV", "test")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAskTeachThenAnswer(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "ask", "what is a car", "--teach", "a car is a vehicle")
	require.NoError(t, err)
	assert.Contains(t, out, "Learned.")

	out, err = run(t, "ask", "what", "is", "a", "car")
	require.NoError(t, err)
	assert.Contains(t, out, "vehicle")

	out, err = run(t, "generate", "car")
	require.NoError(t, err)
	assert.Contains(t, out, "vehicle")
}

func TestGenerateUnknownMethod(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "generate", "car", "--method", "telepathy")
	assert.Error(t, err)
}

func TestCycleAndStatus(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "cycle", "-n", "2")
	require.NoError(t, err)
	dec := json.NewDecoder(bytes.NewBufferString(out))
	var first map[string]any
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, true, first["ran"])
	assert.Equal(t, "idle", first["mode"])

	out, err = run(t, "status", "--activity")
	require.NoError(t, err)
	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "closed", status["backend"])
	assert.Len(t, status["activity"], 2)
	inner := status["status"].(map[string]any)
	assert.EqualValues(t, 2, inner["cycles"])
}

func TestImportFromSQLite(t *testing.T) {
	dir := setupEnv(t)

	srcPath := filepath.Join(dir, "source.db")
	src, err := sqlstore.Open(srcPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, src.SaveRelations(ctx, lexicon.Relation{Word: "hot", RelatedWord: "cold", Kind: lexicon.KindAntonym, Strength: 0.6}))
	require.NoError(t, src.SaveRelations(ctx, lexicon.Relation{Word: "hot", RelatedWord: "hot", Kind: lexicon.KindSynonym, Strength: 0.6}))
	require.NoError(t, src.SaveDefinition(ctx, lexicon.Definition{Word: "hot", Text: "having a high temperature"}))
	require.NoError(t, src.Close(ctx))

	out, err := run(t, "import", "--from", "sqlite", "--path", srcPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.EqualValues(t, 1, report["relations"])
	assert.EqualValues(t, 1, report["definitions"])
	assert.EqualValues(t, 1, report["rejected"])
}

func TestImportRequiresPath(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "import", "--from", "sqlite")
	assert.Error(t, err)
}

func TestSeedThenCycleLearns(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Queued 12 records.")

	_, err = run(t, "cycle")
	require.NoError(t, err)

	out, err = run(t, "generate", "sad", "--method", "conceptual")
	require.NoError(t, err)
	assert.Contains(t, out, "happy")
}

func TestParseSeed(t *testing.T) {
	records, err := parseSeed(bytes.NewBufferString("# header\n\ntea|drink|Tea is a drink.\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tea", records[0].Word)
	assert.Equal(t, "drink", records[0].Category)

	_, err = parseSeed(bytes.NewBufferString("tea|drink\n"))
	assert.Error(t, err)

	_, err = parseSeed(bytes.NewBufferString("42|num|Forty two.\n"))
	assert.Error(t, err)
}
