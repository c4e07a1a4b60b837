package router

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StrategySelector holds the strategy picked by one client.
// Invalid updates are rejected and the previous selection is kept.
type StrategySelector struct {
	mu       sync.Mutex
	table    *StrategyTable
	current  StrategyID
	lastUsed time.Time
}

// NewStrategySelector starts at the table default
func NewStrategySelector(table *StrategyTable) *StrategySelector {
	return &StrategySelector{
		table:    table,
		current:  table.Default(),
		lastUsed: time.Now(),
	}
}

// Current returns the selected strategy id
func (s *StrategySelector) Current() StrategyID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return s.current
}

// Update parses the raw selection value and stores it.
// On failure the returned id is the retained previous selection.
func (s *StrategySelector) Update(raw string) (StrategyID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()

	value := strings.TrimSpace(raw)
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return s.current, fmt.Errorf("%w: %q is not an integer", ErrInvalidStrategyInput, raw)
	}
	id := StrategyID(parsed)
	if _, ok := s.table.Get(id); !ok {
		return s.current, fmt.Errorf("%w: strategy %d does not exist", ErrInvalidStrategyInput, id)
	}

	s.current = id
	return s.current, nil
}

func (s *StrategySelector) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SelectorStore keeps one selector per client session
type SelectorStore struct {
	mu        sync.RWMutex
	table     *StrategyTable
	selectors map[string]*StrategySelector
}

// NewSelectorStore creates an empty store
func NewSelectorStore(table *StrategyTable) *SelectorStore {
	return &SelectorStore{
		table:     table,
		selectors: make(map[string]*StrategySelector),
	}
}

// Open creates a new session and returns its id
func (s *SelectorStore) Open() (string, *StrategySelector) {
	selector := NewStrategySelector(s.table)
	return s.add(selector), selector
}

// add stores a selector under a fresh session id
func (s *SelectorStore) add(selector *StrategySelector) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.selectors[id] = selector
	s.mu.Unlock()

	return id
}

// Get returns the selector of an existing session
func (s *SelectorStore) Get(sessionID string) (*StrategySelector, error) {
	s.mu.RLock()
	selector, ok := s.selectors[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	return selector, nil
}

// Prune drops sessions idle for longer than maxIdle and returns how many were removed
func (s *SelectorStore) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, selector := range s.selectors {
		if selector.idleSince().Before(cutoff) {
			delete(s.selectors, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of open sessions
func (s *SelectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selectors)
}
