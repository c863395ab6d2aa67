package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/hancards/internal/model"
)

// checkLevel rejects levels outside the difficulty range.
func checkLevel(level int) error {
	if level < model.MinLevel || level > model.MaxLevel {
		return fmt.Errorf("level %d out of range %d-%d", level, model.MinLevel, model.MaxLevel)
	}
	return nil
}

// ErrEmpty is returned when a vocabulary source has no entries.
var ErrEmpty = errors.New("vocabulary is empty")

// LoadFile reads tab-separated entries: korean, english, pos, level.
// Blank lines and lines starting with '#' are ignored.
func LoadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only vocabulary.
			_ = cerr
		}
	}()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return entries, nil
}

func parseLine(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return Entry{}, fmt.Errorf("expected 4 tab-separated fields, got %d", len(fields))
	}
	level, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid level %q", fields[3])
	}
	if err := checkLevel(level); err != nil {
		return Entry{}, err
	}
	entry := Entry{
		Korean:  strings.TrimSpace(fields[0]),
		English: strings.TrimSpace(fields[1]),
		POS:     ParsePOS(fields[2]),
		Level:   level,
	}
	if entry.Korean == "" || entry.English == "" {
		return Entry{}, fmt.Errorf("korean and english must not be empty")
	}
	return entry, nil
}

// WriteFile writes entries in the LoadFile format, replacing path atomically.
func WriteFile(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create vocabulary dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "vocab-*.tsv")
	if err != nil {
		return fmt.Errorf("failed to create temp vocabulary: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := fmt.Fprintln(writer, "# korean\tenglish\tpos\tlevel"); err != nil {
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(writer, "%s\t%s\t%s\t%d\n", e.Korean, e.English, e.POS, e.Level); err != nil {
			return fmt.Errorf("failed to write vocabulary: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush vocabulary: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close vocabulary: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	return nil
}

// LoadOrBuiltin loads path, falling back to the bundled table when the file
// does not exist. The bool reports whether the file was used.
func LoadOrBuiltin(path string) ([]Entry, bool, error) {
	entries, err := LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Builtin(), false, nil
		}
		return nil, false, err
	}
	return entries, true, nil
}
