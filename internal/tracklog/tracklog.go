// Package tracklog persists logged positions as a single JSON array file.
//
// The log is append-only: entries are never rewritten or removed and keep
// arrival order. Every append reads the whole array back, adds one entry and
// rewrites the file.
package tracklog

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"

	"github.com/benmeehan/location-agent/pkg/file"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/rs/zerolog"
)

// DateTimeLayout is the local wall-clock format of Entry.DateTime.
const DateTimeLayout = "2006-01-02 15:04:05"

// Entry is one persisted observation.
type Entry struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	AccuracyM float64 `json:"accuracy_m"`
	DateTime  string  `json:"datetime"`
}

// NewEntry converts an observation into its persisted form.
func NewEntry(loc location.Location) Entry {
	return Entry{
		Lat:       loc.Latitude,
		Lng:       loc.Longitude,
		AccuracyM: loc.Accuracy,
		DateTime:  loc.Timestamp.Local().Format(DateTimeLayout),
	}
}

// Log is the JSON array file on disk.
type Log struct {
	path       string
	fileClient file.FileOperations
	logger     zerolog.Logger

	mu    sync.Mutex
	count int // entries written by this process, -1 until first read
}

// NewLog returns a log backed by path. Nothing is created until the first Append.
func NewLog(path string, fileClient file.FileOperations, logger zerolog.Logger) *Log {
	return &Log{
		path:       path,
		fileClient: fileClient,
		logger:     logger.With().Str("component", "tracklog").Logger(),
		count:      -1,
	}
}

// Path returns the file location.
func (l *Log) Path() string {
	return l.path
}

// Read returns all entries in arrival order. A missing, blank, unreadable or
// malformed file reads as an empty log.
func (l *Log) Read() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *Log) read() []Entry {
	entries := []Entry{}

	raw, err := l.fileClient.ReadFileRaw(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn().Err(err).Str("path", l.path).Msg("Failed to read location log, treating as empty")
		}
		l.count = 0
		return entries
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		l.count = 0
		return entries
	}

	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		if err != nil {
			l.logger.Warn().Err(err).Str("path", l.path).Msg("Malformed location log, treating as empty")
		}
		l.count = 0
		return []Entry{}
	}

	l.count = len(entries)
	return entries
}

// Append adds entry at the end of the log and rewrites the file.
func (l *Log) Append(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := append(l.read(), entry)
	if err := l.fileClient.WriteJsonFile(l.path, entries); err != nil {
		return err
	}

	l.count = len(entries)
	l.logger.Debug().
		Float64("lat", entry.Lat).
		Float64("lng", entry.Lng).
		Int("entries", l.count).
		Msg("Location appended to log")
	return nil
}

// Len returns the number of entries, reading the file if it has not been read yet.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count < 0 {
		l.read()
	}
	return l.count
}
