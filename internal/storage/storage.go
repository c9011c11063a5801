package storage

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/botframe/datastore"
)

const commandHistoryLimit = 20

// directKey holds records of direct-message invocations.
const directKey = "direct"

// HistoryEntry is one dispatched command.
type HistoryEntry struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Command   string    `json:"command"`
	Args      string    `json:"args"`
	Datetime  time.Time `json:"datetime"`
}

// Record is everything stored for one guild.
type Record struct {
	History  []HistoryEntry `json:"cmd_history"`
	Usage    map[string]int `json:"usage"`
	Disabled []string       `json:"disabled_units"`
}

type Storage struct {
	mu sync.Mutex
	ds *datastore.DataStore
}

func New(filePath string, log zerolog.Logger) (*Storage, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = log
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// Stats reports the size and location of the underlying store.
func (s *Storage) Stats() map[string]any {
	return s.ds.Stats()
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Flush writes pending changes to disk.
func (s *Storage) Flush() error {
	return s.ds.SaveToFile()
}

func recordKey(guildID string) string {
	if guildID == "" {
		return directKey
	}
	return "guild:" + guildID
}

// update runs fn on the guild record and stores the result.
func (s *Storage) update(guildID string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.recordLocked(guildID)
	if err != nil {
		return err
	}
	fn(record)
	return s.ds.Add(recordKey(guildID), record)
}

func (s *Storage) read(guildID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked(guildID)
}

func (s *Storage) recordLocked(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Decode(recordKey(guildID), &record); err != nil {
		return nil, fmt.Errorf("guild record %s: %w", guildID, err)
	}
	if record.Usage == nil {
		record.Usage = map[string]int{}
	}
	return &record, nil
}

// AppendHistory records a command and bumps its usage counter. Only the most
// recent entries are kept.
func (s *Storage) AppendHistory(guildID string, entry HistoryEntry) error {
	return s.update(guildID, func(r *Record) {
		r.History = append(r.History, entry)
		if len(r.History) > commandHistoryLimit {
			r.History = r.History[len(r.History)-commandHistoryLimit:]
		}
		r.Usage[entry.Command]++
	})
}

// History returns the recorded commands, oldest first.
func (s *Storage) History(guildID string) ([]HistoryEntry, error) {
	r, err := s.read(guildID)
	if err != nil {
		return nil, err
	}
	return r.History, nil
}

// Usage returns how often each command ran.
func (s *Storage) Usage(guildID string) (map[string]int, error) {
	r, err := s.read(guildID)
	if err != nil {
		return nil, err
	}
	return r.Usage, nil
}

func (s *Storage) DisableUnit(guildID, unit string) error {
	return s.update(guildID, func(r *Record) {
		if !slices.Contains(r.Disabled, unit) {
			r.Disabled = append(r.Disabled, unit)
			slices.Sort(r.Disabled)
		}
	})
}

func (s *Storage) EnableUnit(guildID, unit string) error {
	return s.update(guildID, func(r *Record) {
		r.Disabled = slices.DeleteFunc(r.Disabled, func(u string) bool { return u == unit })
	})
}

func (s *Storage) IsUnitDisabled(guildID, unit string) (bool, error) {
	r, err := s.read(guildID)
	if err != nil {
		return false, err
	}
	return slices.Contains(r.Disabled, unit), nil
}

func (s *Storage) DisabledUnits(guildID string) ([]string, error) {
	r, err := s.read(guildID)
	if err != nil {
		return nil, err
	}
	return r.Disabled, nil
}
