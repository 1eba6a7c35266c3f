package logstore

import (
	"fmt"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/model"
)

// Store is the append-only message log. Records are created on send attempt
// and have their status mutated later by delivery receipts, correlated
// through per-part gateway IDs.
type Store struct {
	db *sqlx.DB
}

func New(config *boot.Config) (*Store, error) {
	dbName := path.Join(config.DataDirectory(), "autotext_logs.db")

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
	_, err := s.db.Exec(`create table if not exists message_logs(
		ID          integer primary key autoincrement,
		PhoneNumber text not null,
		Body        text not null,
		SentAt      integer not null,
		Status      text not null
	)`)
	if err != nil {
		return fmt.Errorf("creating message_logs table: %w", err)
	}

	_, err = s.db.Exec(`create index if not exists idx_logs_sent_at on message_logs(SentAt desc)`)
	if err != nil {
		return fmt.Errorf("creating timestamp index: %w", err)
	}
	_, err = s.db.Exec(`create index if not exists idx_logs_phone on message_logs(PhoneNumber)`)
	if err != nil {
		return fmt.Errorf("creating phone index: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists message_parts(
		PartID   text not null primary key,
		RecordID integer not null references message_logs(ID)
	)`)
	if err != nil {
		return fmt.Errorf("creating message_parts table: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes a new log record and links the gateway part IDs used for the
// send, returning the assigned record ID.
func (s *Store) Append(record model.MessageLogRecord, partIDs []string) (int64, error) {
	res, err := s.db.Exec(`insert into message_logs(PhoneNumber, Body, SentAt, Status)
		values(?, ?, ?, ?)`,
		record.PhoneNumber, record.Body, record.SentAt.UnixMilli(), string(record.Status))
	if err != nil {
		return 0, fmt.Errorf("inserting log record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting record id: %w", err)
	}

	for _, partID := range partIDs {
		_, err := s.db.Exec(`insert into message_parts(PartID, RecordID) values(?, ?)`, partID, id)
		if err != nil {
			return 0, fmt.Errorf("linking part %s: %w", partID, err)
		}
	}

	return id, nil
}

// UpdateStatus mutates the status of an existing record.
func (s *Store) UpdateStatus(id int64, status model.MessageStatus) error {
	res, err := s.db.Exec(`update message_logs set Status = ? where ID = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorRecordNotFound
	}
	return nil
}

// UpdateStatusByPartID resolves a gateway part ID to its record and updates
// the record's status.
func (s *Store) UpdateStatusByPartID(partID string, status model.MessageStatus) error {
	res, err := s.db.Exec(`update message_logs set Status = ?
		where ID = (select RecordID from message_parts where PartID = ?)`,
		string(status), partID)
	if err != nil {
		return fmt.Errorf("updating status by part: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorRecordNotFound
	}
	return nil
}

type recordRow struct {
	ID          int64  `db:"ID"`
	PhoneNumber string `db:"PhoneNumber"`
	Body        string `db:"Body"`
	SentAt      int64  `db:"SentAt"`
	Status      string `db:"Status"`
}

func (r recordRow) toRecord() model.MessageLogRecord {
	return model.MessageLogRecord{
		ID:          r.ID,
		PhoneNumber: r.PhoneNumber,
		Body:        r.Body,
		SentAt:      time.UnixMilli(r.SentAt).UTC(),
		Status:      model.MessageStatus(r.Status),
	}
}

// Recent returns up to limit records ordered by recency.
func (s *Store) Recent(limit int) ([]model.MessageLogRecord, error) {
	rows := []recordRow{}
	err := s.db.Select(&rows, `select * from message_logs order by SentAt desc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent logs: %w", err)
	}

	records := make([]model.MessageLogRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// ForNumber returns every record for a phone number ordered by recency.
func (s *Store) ForNumber(number string) ([]model.MessageLogRecord, error) {
	rows := []recordRow{}
	err := s.db.Select(&rows, `select * from message_logs where PhoneNumber = ? order by SentAt desc`, number)
	if err != nil {
		return nil, fmt.Errorf("fetching logs for number: %w", err)
	}

	records := make([]model.MessageLogRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// CountAll returns the total number of records.
func (s *Store) CountAll() (int, error) {
	var count int
	err := s.db.Get(&count, `select count(*) from message_logs`)
	if err != nil {
		return 0, fmt.Errorf("counting logs: %w", err)
	}
	return count, nil
}

// ExistsWithin reports whether a record for the number exists newer than the
// given window.
func (s *Store) ExistsWithin(number string, window time.Duration, now time.Time) (bool, error) {
	cutoff := now.Add(-window).UnixMilli()
	var count int
	err := s.db.Get(&count, `select count(*) from message_logs
		where PhoneNumber = ? and SentAt > ?`, number, cutoff)
	if err != nil {
		return false, fmt.Errorf("checking recent sends: %w", err)
	}
	return count > 0, nil
}

// PurgeOlderThan deletes records older than the retention window.
func (s *Store) PurgeOlderThan(retention time.Duration, now time.Time) error {
	cutoff := now.Add(-retention).UnixMilli()
	_, err := s.db.Exec(`delete from message_parts
		where RecordID in (select ID from message_logs where SentAt < ?)`, cutoff)
	if err != nil {
		return fmt.Errorf("purging old parts: %w", err)
	}
	_, err = s.db.Exec(`delete from message_logs where SentAt < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("purging old logs: %w", err)
	}
	return nil
}

// ClearAll deletes every record.
func (s *Store) ClearAll() error {
	if _, err := s.db.Exec(`delete from message_parts`); err != nil {
		return fmt.Errorf("clearing parts: %w", err)
	}
	if _, err := s.db.Exec(`delete from message_logs`); err != nil {
		return fmt.Errorf("clearing logs: %w", err)
	}
	return nil
}
