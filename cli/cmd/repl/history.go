package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const (
	baseHistory = "history.utf8"

	// maxHistory bounds the entries kept on disk.
	maxHistory = 1000
)

// modePrefix marks the mode of each history file line.
var modePrefix = map[inputMode]string{
	modeEval: "E:",
	modeCtrl: "C:",
}

// HistoryEntry is one submitted line and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// History is the REPL input history, persisted one entry per line. A
// History with an empty path is kept in memory only.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory creates a History backed by the file at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with the contents of the history file. A
// missing file is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry := HistoryEntry{Line: line, Mode: modeEval}

		for mode, prefix := range modePrefix {
			if s, ok := strings.CutPrefix(line, prefix); ok {
				entry = HistoryEntry{Line: s, Mode: mode}

				break
			}
		}

		h.entries = append(h.entries, entry)
	}

	return scanner.Err()
}

// Add appends line entered in mode. An earlier identical entry is moved to
// the end instead of repeated.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{Line: line, Mode: mode}

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if i >= 0 || len(h.entries) > maxHistory {
		if over := len(h.entries) - maxHistory; over > 0 {
			h.entries = slices.Delete(h.entries, 0, over)
		}

		return h.rewrite()
	}

	return h.append(entry)
}

// Entry returns the entry at index i, oldest first.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Seek returns the index of the nearest entry after from in direction step
// (+1 or -1) accepted by keep, or -1 when there is none.
func (h *History) Seek(from, step int, keep func(HistoryEntry) bool) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := from + step; i >= 0 && i < len(h.entries); i += step {
		if keep == nil || keep(h.entries[i]) {
			return i
		}
	}

	return -1
}

// append writes entry to the end of the history file. Must be called with
// h.mu held.
func (h *History) append(entry HistoryEntry) error {
	if h.path == "" {
		return nil
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(modePrefix[entry.Mode] + entry.Line + "\n")

	return err
}

// rewrite replaces the history file with the current entries. Must be
// called with h.mu held.
func (h *History) rewrite() error {
	if h.path == "" {
		return nil
	}

	var b strings.Builder
	for _, entry := range h.entries {
		b.WriteString(modePrefix[entry.Mode] + entry.Line + "\n")
	}

	return os.WriteFile(h.path, []byte(b.String()), 0o600)
}
