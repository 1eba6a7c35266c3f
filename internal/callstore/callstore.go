package callstore

import (
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/model"
)

// Store mirrors the call journal pushed by paired devices. The auto-mode
// dispatch strategy resolves caller numbers from the most recent missed
// entry here.
type Store struct {
	db *sqlx.DB
}

func New(config *boot.Config) (*Store, error) {
	dbName := path.Join(config.DataDirectory(), "autotext_calls.db")

	db, err := sqlx.Connect("sqlite3", "file:"+dbName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`create table if not exists call_events(
		ID         integer primary key autoincrement,
		DeviceID   text not null,
		Number     text not null,
		Type       tinyint not null,
		OccurredAt integer not null
	)`)
	if err != nil {
		return fmt.Errorf("creating call_events table: %w", err)
	}

	_, err = s.db.Exec(`create index if not exists idx_calls_device_time
		on call_events(DeviceID, OccurredAt desc)`)
	if err != nil {
		return fmt.Errorf("creating call index: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append records a call-journal entry.
func (s *Store) Append(event model.CallEvent) error {
	_, err := s.db.Exec(`insert into call_events(DeviceID, Number, Type, OccurredAt)
		values(?, ?, ?, ?)`,
		string(event.DeviceID), event.Number, int(event.Type), event.OccurredAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting call event: %w", err)
	}
	return nil
}

// LastMissedNumber returns the number of the most recent missed call for the
// device within the window, or ErrorNoNumberResolved when none falls inside
// it.
func (s *Store) LastMissedNumber(deviceID model.DeviceID, now time.Time, window time.Duration) (string, error) {
	cutoff := now.Add(-window).UnixMilli()

	var number string
	err := s.db.Get(&number, `select Number from call_events
		where DeviceID = ? and Type = ? and OccurredAt >= ?
		order by OccurredAt desc limit 1`,
		string(deviceID), int(model.CallTypeMissed), cutoff)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrorNoNumberResolved
		}
		return "", fmt.Errorf("querying call journal: %w", err)
	}

	return number, nil
}

// PurgeOlderThan trims journal entries past the retention window.
func (s *Store) PurgeOlderThan(retention time.Duration, now time.Time) error {
	cutoff := now.Add(-retention).UnixMilli()
	_, err := s.db.Exec(`delete from call_events where OccurredAt < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("purging call events: %w", err)
	}
	return nil
}
