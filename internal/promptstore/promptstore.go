package promptstore

import (
	"fmt"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/model"
)

// Store queues reply prompts for assisted-mode devices. Devices collect
// their pending prompts and mark them handled after showing them.
type Store struct {
	db *sqlx.DB
}

func New(config *boot.Config) (*Store, error) {
	dbName := path.Join(config.DataDirectory(), "autotext_prompts.db")

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
	_, err := s.db.Exec(`create table if not exists reply_prompts(
		ID          text not null primary key,
		DeviceID    text not null,
		Kind        tinyint not null,
		PhoneNumber text not null default '',
		Body        text not null,
		CreatedAt   integer not null,
		Handled     tinyint not null default 0
	)`)
	if err != nil {
		return fmt.Errorf("creating reply_prompts table: %w", err)
	}

	_, err = s.db.Exec(`create index if not exists idx_prompts_device
		on reply_prompts(DeviceID, Handled)`)
	if err != nil {
		return fmt.Errorf("creating prompt index: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append queues a prompt and returns its assigned ID.
func (s *Store) Append(prompt model.ReplyPrompt) (string, error) {
	if prompt.ID == "" {
		prompt.ID = model.CreateID()
	}
	if prompt.CreatedAt.IsZero() {
		prompt.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`insert into reply_prompts(ID, DeviceID, Kind, PhoneNumber, Body, CreatedAt, Handled)
		values(?, ?, ?, ?, ?, ?, 0)`,
		prompt.ID, string(prompt.DeviceID), int(prompt.Kind), prompt.PhoneNumber,
		prompt.Body, prompt.CreatedAt.UnixMilli())
	if err != nil {
		return "", fmt.Errorf("inserting prompt: %w", err)
	}
	return prompt.ID, nil
}

type promptRow struct {
	ID          string `db:"ID"`
	DeviceID    string `db:"DeviceID"`
	Kind        int    `db:"Kind"`
	PhoneNumber string `db:"PhoneNumber"`
	Body        string `db:"Body"`
	CreatedAt   int64  `db:"CreatedAt"`
	Handled     bool   `db:"Handled"`
}

// Pending returns the unhandled prompts for a device, oldest first.
func (s *Store) Pending(deviceID model.DeviceID) ([]model.ReplyPrompt, error) {
	rows := []promptRow{}
	err := s.db.Select(&rows, `select * from reply_prompts
		where DeviceID = ? and Handled = 0 order by CreatedAt asc`, string(deviceID))
	if err != nil {
		return nil, fmt.Errorf("fetching pending prompts: %w", err)
	}

	prompts := make([]model.ReplyPrompt, 0, len(rows))
	for _, row := range rows {
		prompts = append(prompts, model.ReplyPrompt{
			ID:          row.ID,
			DeviceID:    model.DeviceID(row.DeviceID),
			Kind:        model.PromptKind(row.Kind),
			PhoneNumber: row.PhoneNumber,
			Body:        row.Body,
			CreatedAt:   time.UnixMilli(row.CreatedAt).UTC(),
			Handled:     row.Handled,
		})
	}
	return prompts, nil
}

// MarkHandled flags a prompt as shown to the user.
func (s *Store) MarkHandled(promptID string) error {
	res, err := s.db.Exec(`update reply_prompts set Handled = 1 where ID = ?`, promptID)
	if err != nil {
		return fmt.Errorf("marking prompt handled: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorPromptNotFound
	}
	return nil
}
