// Package filters persists the dashboard's query filters with file watching.
package filters

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// FileVersion is the current filters file format version.
const FileVersion = 1

// ErrUnsupportedVersion is returned when the filters file was written by a
// newer format.
var ErrUnsupportedVersion = errors.New("unsupported filters file version")

// File represents the JSON file structure for filter storage.
type File struct {
	GroupType string `json:"group_type"`
	Range     string `json:"range"`
	Version   int    `json:"version"`
	UserID    int    `json:"user_id"`
}

// Event represents a filters service event.
type Event struct {
	Error   error
	Filters models.Query
	Type    EventType
}

// EventType defines the type of filters event.
type EventType int

const (
	// EventFiltersChanged indicates the filters file was edited externally.
	EventFiltersChanged EventType = iota
	// EventError indicates the file could not be watched or parsed.
	EventError
)

// Service keeps the current query filters in sync with a JSON file.
type Service struct {
	mu            sync.RWMutex
	query         models.Query
	filePath      string
	watcher       *fsnotify.Watcher
	onChange      func(models.Query)
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New creates a filters service. When the file does not exist it is created
// from defaults.
func New(filePath string, defaults models.Query) (*Service, error) {
	if filePath == "" {
		return nil, errors.New("filters path is empty")
	}

	s := &Service{
		query:     defaults,
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create filters directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load filters: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create filters file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the filters file path.
func (s *Service) Path() string {
	return s.filePath
}

// Get returns the current filters.
func (s *Service) Get() models.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Set replaces the current filters and persists them.
func (s *Service) Set(q models.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.query
	s.query = q
	if err := s.saveLocked(); err != nil {
		s.query = prev
		return fmt.Errorf("failed to save filters: %w", err)
	}
	return nil
}

// SetOnChange registers a callback invoked after an external edit is loaded.
func (s *Service) SetOnChange(fn func(models.Query)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Parse decodes a filters file. Missing fields fall back to defaults.
func Parse(data []byte, defaults models.Query) (models.Query, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return defaults, fmt.Errorf("failed to parse filters file: %w", err)
	}
	if f.Version > FileVersion {
		return defaults, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}

	q := defaults
	if f.GroupType != "" {
		g, err := models.ParseGroupType(f.GroupType)
		if err != nil {
			return defaults, err
		}
		q.Group = g
	}
	if f.Range != "" {
		r, err := models.ParseRangePreset(f.Range)
		if err != nil {
			return defaults, err
		}
		q.Range = r
	}
	if f.UserID < 0 {
		return defaults, fmt.Errorf("invalid user_id: %d", f.UserID)
	}
	q.UserID = f.UserID
	return q, nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	q, err := Parse(data, s.query)
	if err != nil {
		return err
	}
	s.query = q
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the filters file (must hold lock).
func (s *Service) saveLocked() error {
	f := File{
		Version:   FileVersion,
		GroupType: string(s.query.Group),
		UserID:    s.query.UserID,
		Range:     s.query.Range.Key(),
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal filters: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so atomic renames are seen.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the file. Our own saves reload to the same query
// and are not reported.
func (s *Service) handleFileChange() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.sendEvent(Event{Type: EventError, Error: err})
		}
		return
	}

	s.mu.Lock()
	prev := s.query
	q, err := Parse(data, prev)
	if err != nil {
		s.mu.Unlock()
		logger.Warn("ignoring invalid filters file", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	s.query = q
	onChange := s.onChange
	s.mu.Unlock()

	if q == prev {
		return
	}

	logger.Info("filters changed on disk", "group", q.Group, "range", q.Range.Key(), "user_id", q.UserID)
	s.sendEvent(Event{Type: EventFiltersChanged, Filters: q})
	if onChange != nil {
		onChange(q)
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
