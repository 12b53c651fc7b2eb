package selection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

var errMalformed = errors.New("malformed snapshot")

// Store owns the selection list of one assessment and its persistence
type Store struct {
	backend    Backend
	logger     *zap.Logger
	mu         sync.RWMutex
	selections []ToolSelection
}

// NewStore creates an empty store over backend. Call Load to restore state.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Load restores the live snapshot and returns a copy of it. A missing,
// unreadable or malformed snapshot yields an empty store.
func (s *Store) Load() []ToolSelection {
	loaded := s.read(LiveKey)

	s.mu.Lock()
	s.selections = loaded
	s.mu.Unlock()

	return cloneAll(loaded)
}

// LoadFinal returns the submitted snapshot, if one was committed
func (s *Store) LoadFinal() ([]ToolSelection, bool) {
	data, ok, err := s.backend.Get(FinalKey)
	if err != nil {
		s.logger.Warn("Failed to read final selections", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	final, err := decode(data)
	if err != nil {
		s.logger.Warn("Ignoring malformed final selections", zap.Error(err))
		return nil, false
	}
	return final, true
}

func (s *Store) read(key string) []ToolSelection {
	data, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.Warn("Failed to read saved selections", zap.String("key", key), zap.Error(err))
		return []ToolSelection{}
	}
	if !ok {
		return []ToolSelection{}
	}

	selections, err := decode(data)
	if err != nil {
		s.logger.Warn("Ignoring malformed saved selections", zap.String("key", key), zap.Error(err))
		return []ToolSelection{}
	}
	return selections
}

// Upsert replaces the selection for categoryID in place, or appends a new
// one. The resulting store is saved when it is non-empty.
func (s *Store) Upsert(categoryID string, selectedTools, customTools []string) {
	s.mu.Lock()
	updated := ToolSelection{
		Category:      categoryID,
		SelectedTools: cloneStrings(selectedTools),
		CustomTools:   cloneStrings(customTools),
	}

	replaced := false
	for i := range s.selections {
		if s.selections[i].Category == categoryID {
			s.selections[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		s.selections = append(s.selections, updated)
	}
	snapshot := cloneAll(s.selections)
	s.mu.Unlock()

	if len(snapshot) > 0 {
		s.Save(snapshot)
	}
}

// OnSelectionChange implements Listener
func (s *Store) OnSelectionChange(sel ToolSelection) {
	s.Upsert(sel.Category, sel.SelectedTools, sel.CustomTools)
}

// Save persists snapshot as the live selections
func (s *Store) Save(snapshot []ToolSelection) {
	s.write(LiveKey, snapshot)
}

// CommitFinal persists snapshot under the final key. The live snapshot is
// left as is.
func (s *Store) CommitFinal(snapshot []ToolSelection) {
	s.write(FinalKey, snapshot)
}

func (s *Store) write(key string, snapshot []ToolSelection) {
	data, err := sonic.Marshal(snapshot)
	if err != nil {
		s.logger.Error("Failed to encode selections", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.backend.Set(key, data); err != nil {
		s.logger.Error("Failed to persist selections", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Debug("Selections persisted",
		zap.String("key", key),
		zap.Int("categories", len(snapshot)),
	)
}

// Snapshot returns a copy of the current selections in insertion order
func (s *Store) Snapshot() []ToolSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.selections)
}

// Get returns the selection for a category, if it has been touched
func (s *Store) Get(categoryID string) (ToolSelection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sel := range s.selections {
		if sel.Category == categoryID {
			return sel.Clone(), true
		}
	}
	return ToolSelection{}, false
}

// Len returns the number of categories touched
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selections)
}

func decode(data []byte) ([]ToolSelection, error) {
	var selections []ToolSelection
	if err := sonic.Unmarshal(data, &selections); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}

	seen := make(map[string]struct{}, len(selections))
	for i := range selections {
		sel := &selections[i]
		if sel.Category == "" {
			return nil, fmt.Errorf("%w: entry %d has no category", errMalformed, i)
		}
		if _, dup := seen[sel.Category]; dup {
			return nil, fmt.Errorf("%w: category %s appears twice", errMalformed, sel.Category)
		}
		seen[sel.Category] = struct{}{}

		if sel.SelectedTools == nil {
			sel.SelectedTools = []string{}
		}
		if sel.CustomTools == nil {
			sel.CustomTools = []string{}
		}
	}
	if selections == nil {
		selections = []ToolSelection{}
	}
	return selections, nil
}
