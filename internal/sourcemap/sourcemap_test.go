package sourcemap

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mappings used by the tests below decode to:
//
//	generated (0,0) -> app.ts (0,0)
//	generated (0,4) -> app.ts (0,4)
//	generated (1,0) -> app.ts (1,4)
//	generated (3,0) -> app.ts (3,4)
const testMap = `{
	"version": 3,
	"file": "app.js",
	"sources": ["../src/app.ts"],
	"names": [],
	"mappings": "AAAA,IAAI;AACA;;AAEA"
}`

func TestDecodeSegment(t *testing.T) {
	t.Parallel()

	fields, err := decodeSegment("AAgBC")
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 16, 1}, fields)

	fields, err = decodeSegment("D")
	require.NoError(t, err)
	require.Equal(t, []int{-1}, fields)

	_, err = decodeSegment("A!")
	require.ErrorIs(t, err, errInvalidVLQ)

	_, err = decodeSegment("g")
	require.ErrorIs(t, err, errInvalidVLQ, "a continuation bit without a following digit is malformed")
}

func TestGeneratedToOriginal(t *testing.T) {
	t.Parallel()

	baseDir := filepath.Join(string(filepath.Separator), "proj", "out")
	sm, err := Parse([]byte(testMap), baseDir)
	require.NoError(t, err)

	appTs := filepath.Join(string(filepath.Separator), "proj", "src", "app.ts")
	require.Equal(t, []string{appTs}, sm.Sources())

	source, line, col, found := sm.GeneratedToOriginal(0, 5)
	require.True(t, found)
	assert.Equal(t, appTs, source)
	assert.Equal(t, 0, line)
	assert.Equal(t, 4, col)

	_, line, col, found = sm.GeneratedToOriginal(1, 10)
	require.True(t, found)
	assert.Equal(t, 1, line)
	assert.Equal(t, 4, col)

	_, _, _, found = sm.GeneratedToOriginal(2, 0)
	assert.False(t, found, "line without mappings")
}

func TestOriginalToGeneratedSearchesForward(t *testing.T) {
	t.Parallel()

	baseDir := filepath.Join(string(filepath.Separator), "proj", "out")
	sm, err := Parse([]byte(testMap), baseDir)
	require.NoError(t, err)
	appTs := filepath.Join(string(filepath.Separator), "proj", "src", "app.ts")

	genLine, genCol, found := sm.OriginalToGenerated(appTs, 0, 1)
	require.True(t, found)
	assert.Equal(t, 0, genLine)
	assert.Equal(t, 4, genCol)

	genLine, genCol, found = sm.OriginalToGenerated(appTs, 2, 0)
	require.True(t, found, "a line without mappings should snap to the next mapped position")
	assert.Equal(t, 3, genLine)
	assert.Equal(t, 0, genCol)

	_, _, found = sm.OriginalToGenerated(appTs, 4, 0)
	assert.False(t, found)

	_, _, found = sm.OriginalToGenerated(filepath.Join(baseDir, "other.ts"), 0, 0)
	assert.False(t, found)
}

func TestParseRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"version": 2, "sources": [], "mappings": ""}`), "")
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Parse([]byte(`{"version": 3, "sources": ["a.ts"], "mappings": "AKAA"}`), "")
	require.Error(t, err, "source index out of range")

	_, err = Parse([]byte(`not json`), "")
	require.Error(t, err)
}

func TestLoadInlineAndFileMaps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "out", "app.js")

	inline := "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(testMap))
	sm, err := Load(scriptPath, inline)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "src", "app.ts")}, sm.Sources())

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "out", "maps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out", "maps", "app.js.map"), []byte(testMap), 0o644))
	sm, err = Load(scriptPath, "maps/app.js.map")
	require.NoError(t, err)
	// Sources are relative to the map file, not to the script.
	require.Equal(t, []string{filepath.Join(dir, "out", "src", "app.ts")}, sm.Sources())

	_, err = Load(scriptPath, "missing.js.map")
	require.Error(t, err)
}

func TestFindURL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "app.js")
	content := "var a = 1;\n//# sourceMappingURL=old.js.map\nvar b = 2;\n//# sourceMappingURL=app.js.map\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(content), 0o644))

	mapURL, found := FindURL(scriptPath)
	require.True(t, found)
	require.Equal(t, "app.js.map", mapURL)

	plainPath := filepath.Join(dir, "plain.js")
	require.NoError(t, os.WriteFile(plainPath, []byte("var a = 1;\n"), 0o644))
	_, found = FindURL(plainPath)
	require.False(t, found)

	_, found = FindURL(filepath.Join(dir, "missing.js"))
	require.False(t, found)
}
