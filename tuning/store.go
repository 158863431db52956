package tuning

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// TraceIndex is the side-output of a build: a map from trace key
// ("item:<id>:stat:<key>", "cooking:<name>:<field>",
// "craft:<name>:ingredient:<item>") to expression trace. It is safe
// for concurrent readers.
type TraceIndex struct {
	mu     sync.RWMutex
	traces map[string]*ExprTrace
}

// NewTraceIndex returns an empty index.
func NewTraceIndex() *TraceIndex {
	return &TraceIndex{traces: make(map[string]*ExprTrace)}
}

// Put stores a trace under key, overwriting any previous entry.
func (s *TraceIndex) Put(key string, tr *ExprTrace) {
	if key == "" || tr == nil {
		return
	}
	s.mu.Lock()
	s.traces[key] = tr
	s.mu.Unlock()
}

// Get returns the trace stored under key.
func (s *TraceIndex) Get(key string) (*ExprTrace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tr, ok := s.traces[key]
	return tr, ok
}

// Len returns the number of stored traces.
func (s *TraceIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.traces)
}

// Prefix returns up to limit entries whose key starts with prefix, in
// key order. limit <= 0 means no limit.
func (s *TraceIndex) Prefix(prefix string, limit int) map[string]*ExprTrace {
	out := make(map[string]*ExprTrace)
	if prefix == "" {
		return out
	}
	s.mu.RLock()
	keys := make([]string, 0, len(s.traces))
	for k := range s.traces {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		if limit > 0 && len(out) >= limit {
			break
		}
		s.mu.RLock()
		out[k] = s.traces[k]
		s.mu.RUnlock()
	}
	return out
}

// MarshalJSON serializes the index as a flat key -> trace object.
func (s *TraceIndex) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.traces)
}

// LoadTraceIndex reads a trace index previously written as JSON.
// A missing file yields an empty index.
func LoadTraceIndex(path string) (*TraceIndex, error) {
	s := NewTraceIndex()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read trace index: %w", err)
	}
	if err := json.Unmarshal(data, &s.traces); err != nil {
		return nil, fmt.Errorf("failed to parse trace index: %w", err)
	}
	return s, nil
}
