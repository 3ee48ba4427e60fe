package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/stackplay/internal/engine"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	presetPrefix   = "preset/"
)

// Preferences stores user settings for the analyzer.
type Preferences struct {
	DefaultDepth    int           `json:"default_depth"`
	DefaultMoveTime time.Duration `json:"default_move_time"`
	MultiPV         int           `json:"multi_pv"`
	PresetName      string        `json:"preset_name"`
	LastUsed        time.Time     `json:"last_used"`
}

// DefaultPreferences returns default analyzer preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		DefaultDepth:    3,
		DefaultMoveTime: 2 * time.Second,
		MultiPV:         1,
		LastUsed:        time.Now(),
	}
}

// Stats accumulates analysis statistics across runs.
type Stats struct {
	PositionsAnalyzed int           `json:"positions_analyzed"`
	NodesExpanded     uint64        `json:"nodes_expanded"`
	GoalsFound        int           `json:"goals_found"`
	DeepestLine       int           `json:"deepest_line"`
	TotalAnalysisTime time.Duration `json:"total_analysis_time"`
}

// NewStats returns empty statistics.
func NewStats() *Stats {
	return &Stats{}
}

// RunResult describes one completed analysis run.
type RunResult struct {
	Nodes     uint64
	Depth     int
	FoundGoal bool
	Duration  time.Duration
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// New opens the storage in the platform data directory.
func New() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens the storage in a specific directory. Tests use this to avoid
// touching the real data directory.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) setJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON loads key into v, reporting whether the key existed.
func (s *Storage) getJSON(key string, v interface{}) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SavePreferences saves user preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastUsed = time.Now()
	return s.setJSON(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returning defaults if not found.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	_, err := s.getJSON(keyPreferences, prefs)
	return prefs, err
}

// SavePreset stores scoring weights under a name.
func (s *Storage) SavePreset(name string, params engine.ScoreParams) error {
	return s.setJSON(presetPrefix+name, &params)
}

// LoadPreset loads scoring weights by name, falling back to the defaults
// when the preset does not exist.
func (s *Storage) LoadPreset(name string) (engine.ScoreParams, bool, error) {
	params := engine.DefaultScoreParams()
	found, err := s.getJSON(presetPrefix+name, &params)
	return params, found, err
}

// ListPresets returns the names of all stored presets.
func (s *Storage) ListPresets() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(presetPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return names, err
}

// LoadStats loads cumulative statistics, returning empty stats if not found.
func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()
	_, err := s.getJSON(keyStats, stats)
	return stats, err
}

// SaveStats saves cumulative statistics.
func (s *Storage) SaveStats(stats *Stats) error {
	return s.setJSON(keyStats, stats)
}

// RecordRun folds one completed analysis run into the statistics.
func (s *Storage) RecordRun(result RunResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.PositionsAnalyzed++
	stats.NodesExpanded += result.Nodes
	stats.TotalAnalysisTime += result.Duration
	if result.FoundGoal {
		stats.GoalsFound++
	}
	if result.Depth > stats.DeepestLine {
		stats.DeepestLine = result.Depth
	}

	return s.SaveStats(stats)
}

// NodesPerSecond returns the average expansion rate across all recorded runs.
func (s *Stats) NodesPerSecond() float64 {
	if s.TotalAnalysisTime <= 0 {
		return 0
	}
	return float64(s.NodesExpanded) / s.TotalAnalysisTime.Seconds()
}
