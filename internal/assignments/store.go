package assignments

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"fairness-mcp/internal/fairness"

	"github.com/rs/zerolog/log"
)

// Store provides thread-safe, chronological storage of assignment history,
// partitioned by entity kind (custodios, armados).
type Store struct {
	mu   sync.RWMutex
	logs map[fairness.EntityKind][]Record
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		logs: make(map[fairness.EntityKind][]Record),
	}
}

// Append adds records for a kind, keeping chronological order and dropping
// duplicates. It returns the number of records actually added.
func (s *Store) Append(kind fairness.EntityKind, records []Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.logs[kind]

	existing := make(map[string]bool, len(history))
	for _, r := range history {
		existing[r.identity()] = true
	}

	added := 0
	for _, r := range records {
		id := r.identity()
		if existing[id] {
			continue
		}
		existing[id] = true
		history = append(history, r)
		added++
	}

	if added == 0 {
		return 0
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp < history[j].Timestamp
	})

	s.logs[kind] = history
	return added
}

// Load reads the JSONL cache for a kind. A missing file is not an error.
func (s *Store) Load(dir string, kind fairness.EntityKind) error {
	path := cachePath(dir, kind)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("Skipping invalid JSON line in history")
			continue
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading history: %w", err)
	}

	log.Info().Str("kind", string(kind)).Int("count", len(records)).Msg("Loaded assignment history")
	s.Append(kind, records)
	return nil
}

// Save persists the history for a kind to its JSONL cache file.
func (s *Store) Save(dir string, kind fairness.EntityKind) error {
	s.mu.RLock()
	history := append([]Record(nil), s.logs[kind]...)
	s.mu.RUnlock()

	if len(history) == 0 {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	path := cachePath(dir, kind)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, r := range history {
		if err := encoder.Encode(r); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename history file: %w", err)
	}

	log.Info().Str("kind", string(kind)).Int("count", len(history)).Msg("Assignment history saved")
	return nil
}

// Count returns the number of records held for a kind.
func (s *Store) Count(kind fairness.EntityKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[kind])
}

// LatestTimestamp returns the time of the most recent record for a kind.
func (s *Store) LatestTimestamp(kind fairness.EntityKind) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.logs[kind]
	if len(history) == 0 {
		return time.Time{}
	}
	return time.UnixMicro(history[len(history)-1].Timestamp).UTC()
}

// InRange returns the engine records within [start, end]. A zero end is open.
func (s *Store) InRange(kind fairness.EntityKind, start, end time.Time) []fairness.AssignmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startTs := start.UnixMicro()
	endTs := end.UnixMicro()

	var result []fairness.AssignmentRecord
	for _, r := range s.logs[kind] {
		if r.Timestamp >= startTs && (end.IsZero() || r.Timestamp <= endTs) {
			result = append(result, r.Assignment())
		}
	}
	return result
}

// LastSeen builds an index of the latest assignment per entity as of asOf.
// Records after asOf are invisible; a zero asOf includes everything.
// External-provider records are ignored.
func (s *Store) LastSeen(kind fairness.EntityKind, asOf time.Time) *LastSeenIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bound := asOf.UnixMicro()

	idx := &LastSeenIndex{
		byID:   make(map[string]int64),
		byName: make(map[string]int64),
	}
	for _, r := range s.logs[kind] {
		if r.ExcludedProvider || (!asOf.IsZero() && r.Timestamp > bound) {
			continue
		}
		if r.EntityID != "" && r.Timestamp > idx.byID[r.EntityID] {
			idx.byID[r.EntityID] = r.Timestamp
		}
		if name := fairness.Normalize(r.EntityName); name != "" && r.Timestamp > idx.byName[name] {
			idx.byName[name] = r.Timestamp
		}
	}
	return idx
}

func cachePath(dir string, kind fairness.EntityKind) string {
	return filepath.Join(dir, fmt.Sprintf("%s.jsonl", kind))
}
