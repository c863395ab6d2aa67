package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFilterByLevel(t *testing.T) {
	got := FilterByLevel(Builtin(), 1)
	require.Len(t, got, 4)
	for _, e := range got {
		assert.LessOrEqual(t, e.Level, 1, e.Korean)
	}
	assert.Len(t, FilterByLevel(Builtin(), 5), 10)
	assert.Empty(t, FilterByLevel(Builtin(), 0))
}

func TestBuiltinReturnsCopy(t *testing.T) {
	a := Builtin()
	a[0].Korean = "changed"
	assert.Equal(t, "사과", Builtin()[0].Korean)
}

func TestLevels(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4}, Levels(Builtin()))
}

func TestWriteThenLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vocab.tsv")
	entries := []Entry{
		{Korean: "물", English: "water", POS: Noun, Level: 1},
		{Korean: "예쁘다", English: "to be pretty", POS: Adjective, Level: 2},
		{Korean: "그리고", English: "and", POS: "conjunction", Level: 1},
	}
	require.NoError(t, WriteFile(path, entries))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestLoadFileReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.tsv")
	content := "# comment\n물\twater\tnoun\t1\n\n불\tfire\tnoun\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vocab.tsv:4")

	for _, level := range []string{"0", "6"} {
		content := "물\twater\tnoun\t1\n불\tfire\tnoun\t" + level + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := LoadFile(path)
		require.Error(t, err, "level %s", level)
		assert.Contains(t, err.Error(), "vocab.tsv:2")
		assert.Contains(t, err.Error(), "out of range 1-5")
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.tsv")
	require.NoError(t, os.WriteFile(path, []byte("# only a comment\n"), 0o644))

	_, err := LoadFile(path)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestLoadOrBuiltin(t *testing.T) {
	entries, fromFile, err := LoadOrBuiltin(filepath.Join(t.TempDir(), "missing.tsv"))
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.Equal(t, Builtin(), entries)
}

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	content := "korean,english,pos,level\n" +
		"물,water,Noun,1\n" +
		",missing,noun,1\n" +
		"불,fire,noun,9\n" +
		",,,\n" +
		"달리다,to run,verb,2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, result, err := Import(path, DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Korean: "물", English: "water", POS: Noun, Level: 1},
		{Korean: "달리다", English: "to run", POS: Verb, Level: 2},
	}, entries)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 3")
	assert.Contains(t, result.Errors[1], "out of range")
}

func TestImportWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Korean", "English", "POS", "Level"},
		{"하늘", "sky", "noun", 1},
		{"보다", "to see", "verb", 2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	entries, result, err := Import(path, DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, []Entry{
		{Korean: "하늘", English: "sky", POS: Noun, Level: 1},
		{Korean: "보다", English: "to see", POS: Verb, Level: 2},
	}, entries)
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	_, _, err := Import("words.json", DefaultImportOptions())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmpty))
}
