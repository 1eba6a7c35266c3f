package prefstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/model"
)

const prefsKey = "autotext"

// Store persists the singleton Preferences row. Reads and writes go through
// a mutex so read-modify-write updates from concurrent admin requests do not
// interleave.
type Store struct {
	mu sync.Mutex
	db *sqlx.DB
}

func New(config *boot.Config) (*Store, error) {
	dbName := path.Join(config.DataDirectory(), "autotext_prefs.db")

	db, err := sqlx.Connect("sqlite3", "file:"+dbName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`create table if not exists preferences(
		Key   text not null primary key,
		Value text not null
	)`)
	if err != nil {
		return fmt.Errorf("creating preferences table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored preferences, or the defaults when nothing has been
// written yet.
func (s *Store) Get() (*model.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get()
}

func (s *Store) get() (*model.Preferences, error) {
	var raw string
	err := s.db.Get(&raw, `select Value from preferences where Key = ?`, prefsKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DefaultPreferences(), nil
		}
		return nil, fmt.Errorf("fetching preferences: %w", err)
	}

	prefs := &model.Preferences{}
	if err := json.Unmarshal([]byte(raw), prefs); err != nil {
		return nil, fmt.Errorf("unmarshalling preferences: %w", err)
	}
	if prefs.BlockedNumbers == nil {
		prefs.BlockedNumbers = []string{}
	}
	return prefs, nil
}

// Put stores the given preferences, clamping the cooldown into [1,60].
func (s *Store) Put(prefs *model.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(prefs)
}

func (s *Store) put(prefs *model.Preferences) error {
	prefs.CooldownMinutes = model.ClampCooldown(prefs.CooldownMinutes)
	if prefs.BlockedNumbers == nil {
		prefs.BlockedNumbers = []string{}
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshalling preferences: %w", err)
	}

	_, err = s.db.Exec(`insert into preferences(Key, Value) values(?, ?)
		on conflict(Key) do update set Value = excluded.Value`, prefsKey, string(raw))
	if err != nil {
		return fmt.Errorf("storing preferences: %w", err)
	}
	return nil
}

// IsNumberBlocked reports whether the number matches any blocklist entry
// under last-10-digit normalization.
func (s *Store) IsNumberBlocked(number string) (bool, error) {
	prefs, err := s.Get()
	if err != nil {
		return false, err
	}
	for _, blocked := range prefs.BlockedNumbers {
		if model.SameNumber(blocked, number) {
			return true, nil
		}
	}
	return false, nil
}

// AddBlockedNumber appends a number to the blocklist if not already present.
func (s *Store) AddBlockedNumber(number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.get()
	if err != nil {
		return err
	}
	for _, blocked := range prefs.BlockedNumbers {
		if blocked == number {
			return nil
		}
	}
	prefs.BlockedNumbers = append(prefs.BlockedNumbers, number)
	return s.put(prefs)
}

// RemoveBlockedNumber drops any blocklist entry normalizing to the same
// number.
func (s *Store) RemoveBlockedNumber(number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.get()
	if err != nil {
		return err
	}
	kept := prefs.BlockedNumbers[:0]
	for _, blocked := range prefs.BlockedNumbers {
		if !model.SameNumber(blocked, number) {
			kept = append(kept, blocked)
		}
	}
	prefs.BlockedNumbers = kept
	return s.put(prefs)
}

// SetTemplates replaces both message templates, leaving everything else
// untouched. Empty strings leave the corresponding template as-is.
func (s *Store) SetTemplates(missedCall, followUp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.get()
	if err != nil {
		return err
	}
	if missedCall != "" {
		prefs.MissedCallTemplate = missedCall
	}
	if followUp != "" {
		prefs.FollowUpTemplate = followUp
	}
	return s.put(prefs)
}

// ResetToDefaults restores every setting except the message templates, which
// have their own reset.
func (s *Store) ResetToDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.get()
	if err != nil {
		return err
	}
	defaults := model.DefaultPreferences()
	defaults.MissedCallTemplate = prefs.MissedCallTemplate
	defaults.FollowUpTemplate = prefs.FollowUpTemplate
	return s.put(defaults)
}

// ResetTemplates restores the default message templates only.
func (s *Store) ResetTemplates() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.get()
	if err != nil {
		return err
	}
	prefs.MissedCallTemplate = model.DefaultMissedCallTemplate
	prefs.FollowUpTemplate = model.DefaultFollowUpTemplate
	return s.put(prefs)
}
