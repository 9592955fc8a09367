package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arcanaland/cardtsv/internal/card"
	"github.com/arcanaland/cardtsv/internal/config"
)

var fixture = map[string]string{
	"sets.json": `[{"code": "rhino", "name": "Rhino"}]`,
	"packs.json": `[
		{"code": "core", "name": "Core Set"},
		{"code": "twc", "name": "The Wrecking Crew"}
	]`,
	"pack/core.json": `[
		{"code": "01001a", "name": "Spider-Man", "text": "Line one\nLine two",
		 "linked_card": {"code": "01001b", "name": "Peter Parker"}},
		{"code": "01002", "name": "Web-Shooter", "cost": 1, "text": "Say \"thwip"}
	]`,
	"pack/core_encounter.json": `[{"code": "01094", "name": "Rhino", "set_code": "rhino"}]`,
	"pack/twc.json":            `[{"code": "02002", "duplicate_of": "01002", "pack_name": "ignored"}]`,
}

func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestGenerate(t *testing.T) {
	c := config.Default()
	c.Root = writeFixture(t, fixture)

	var out, diag bytes.Buffer
	require.NoError(t, generate(c, &out, &diag, zaptest.NewLogger(t)))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 6, "header plus five cards")

	header := strings.Split(lines[0], "\t")
	assert.Equal(t, []string{"code", "cost", "duplicate_of", "name", "pack_name", "set_code", "set_name", "text"}, header)

	rows := map[string]map[string]string{}
	for _, line := range lines[1:] {
		values := strings.Split(line, "\t")
		require.Len(t, values, len(header))
		row := map[string]string{}
		for i, field := range header {
			row[field] = values[i]
		}
		rows[row[card.CodeField]] = row
	}

	assert.Equal(t, `Line one\nLine two`, rows["01001a"]["text"])
	assert.Equal(t, "Peter Parker", rows["01001b"]["name"])
	assert.Equal(t, "", rows["01001b"]["pack_name"])
	assert.Equal(t, "Rhino", rows["01094"]["set_name"])

	dup := rows["02002"]
	assert.Equal(t, "Web-Shooter", dup["name"])
	assert.Equal(t, "1", dup["cost"])
	assert.Equal(t, "The Wrecking Crew", dup["pack_name"], "pack name of the duplicate wins")

	assert.Equal(t, 2, strings.Count(diag.String(), "\n"), "01002 and its duplicate both carry the odd quote")
	assert.Contains(t, diag.String(), "Card code: 01002 field: text quote characters: 1")
}

func TestGenerateFailsOnUnknownSet(t *testing.T) {
	files := map[string]string{}
	for k, v := range fixture {
		files[k] = v
	}
	files["sets.json"] = `[]`

	c := config.Default()
	c.Root = writeFixture(t, files)

	var out bytes.Buffer
	err := generate(c, &out, &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, card.ErrLookup)
	assert.Empty(t, out.String(), "nothing is written before the data is complete")
}

func TestGenerateFileKeepsPreviousReportOnFailure(t *testing.T) {
	files := map[string]string{}
	for k, v := range fixture {
		files[k] = v
	}
	files["pack/twc.json"] = `[{"code": "02002", "duplicate_of": "99999"}]`

	c := config.Default()
	c.Root = writeFixture(t, files)

	dir := t.TempDir()
	target := filepath.Join(dir, "all_cards.tsv")
	require.NoError(t, os.WriteFile(target, []byte("previous report\n"), 0644))

	err := generateFile(c, target, &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, card.ErrLookup)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "previous report\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is cleaned up")
}

func TestGenerateFileReplacesReport(t *testing.T) {
	c := config.Default()
	c.Root = writeFixture(t, fixture)

	target := filepath.Join(t.TempDir(), "all_cards.tsv")
	require.NoError(t, os.WriteFile(target, []byte("previous report\n"), 0644))

	require.NoError(t, generateFile(c, target, &bytes.Buffer{}, zaptest.NewLogger(t)))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "code\tcost\t"))
	assert.Len(t, strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"), 6)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&bytes.Buffer{})
	RootCmd.SetArgs(args)
	t.Cleanup(func() { RootCmd.SetArgs(nil) })

	err := RootCmd.Execute()
	return out.String(), err
}

func TestRootCommandWritesOutputFile(t *testing.T) {
	root := writeFixture(t, fixture)
	target := filepath.Join(t.TempDir(), "all_cards.tsv")

	_, err := execute(t, "--root", root, "--output", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "code\tcost\t"))
}

func TestValidateCommand(t *testing.T) {
	root := writeFixture(t, fixture)

	out, err := execute(t, "validate", "--root", root, "--output", "")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ 5 cards, 8 fields")
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, "Card code: 02002 field: text")
}

func TestPacksCommand(t *testing.T) {
	root := writeFixture(t, fixture)

	out, err := execute(t, "packs", "--root", root, "--output", "")
	require.NoError(t, err)
	assert.Contains(t, out, "core")
	assert.Contains(t, out, "main:yes encounter:yes")
	assert.Contains(t, out, "main:yes encounter:no")
}
