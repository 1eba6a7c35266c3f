package devicestore

import (
	"crypto/ecdsa"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/model"
	"com.charlotteservicehub.autotext/pkg/keys"
)

// Store holds the paired devices and their public keys. Device auth tokens
// are issued once at registration and stored only as bcrypt hashes.
type Store struct {
	db *sqlx.DB
}

func New(config *boot.Config) (*Store, error) {
	dbName := path.Join(config.DataDirectory(), "autotext_devices.db")

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
	_, err := s.db.Exec(`create table if not exists devices(
		ID        text not null primary key,
		Name      text not null,
		PublicKey text not null,
		TokenHash text not null,
		CreatedAt integer not null
	)`)
	if err != nil {
		return fmt.Errorf("creating devices table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Register stores a new device keyed by the ID derived from its public key
// and returns the device plus its one-time auth token.
func (s *Store) Register(name string, publicKey *ecdsa.PublicKey) (*model.Device, string, error) {
	deviceID := keys.DeviceIDFromPublicKey(publicKey)

	encodedKey, err := keys.EncodePublicKey(publicKey, deviceID)
	if err != nil {
		return nil, "", fmt.Errorf("encoding public key: %w", err)
	}

	token := model.CreateID()
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), 10)
	if err != nil {
		return nil, "", fmt.Errorf("hashing token: %w", err)
	}

	device := &model.Device{
		ID:        model.DeviceID(deviceID),
		Name:      name,
		PublicKey: encodedKey,
		TokenHash: string(tokenHash),
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.Exec(`insert into devices(ID, Name, PublicKey, TokenHash, CreatedAt)
		values(?, ?, ?, ?, ?)
		on conflict(ID) do update set Name = excluded.Name, PublicKey = excluded.PublicKey,
			TokenHash = excluded.TokenHash`,
		string(device.ID), device.Name, device.PublicKey, device.TokenHash,
		device.CreatedAt.UnixMilli())
	if err != nil {
		return nil, "", fmt.Errorf("inserting device: %w", err)
	}

	return device, token, nil
}

type deviceRow struct {
	ID        string `db:"ID"`
	Name      string `db:"Name"`
	PublicKey string `db:"PublicKey"`
	TokenHash string `db:"TokenHash"`
	CreatedAt int64  `db:"CreatedAt"`
}

// Get fetches a device by ID.
func (s *Store) Get(deviceID model.DeviceID) (*model.Device, error) {
	row := deviceRow{}
	err := s.db.Get(&row, `select * from devices where ID = ?`, string(deviceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorDeviceNotFound
		}
		return nil, fmt.Errorf("fetching device: %w", err)
	}

	return &model.Device{
		ID:        model.DeviceID(row.ID),
		Name:      row.Name,
		PublicKey: row.PublicKey,
		TokenHash: row.TokenHash,
		CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
	}, nil
}

// PublicKey returns the device's registered signing key.
func (s *Store) PublicKey(deviceID model.DeviceID) (*ecdsa.PublicKey, error) {
	device, err := s.Get(deviceID)
	if err != nil {
		return nil, err
	}
	return keys.DecodePublicKey(device.PublicKey)
}

// VerifyToken checks a presented auth token against the stored hash.
func (s *Store) VerifyToken(deviceID model.DeviceID, token string) error {
	device, err := s.Get(deviceID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(device.TokenHash), []byte(token)); err != nil {
		return model.ErrorInvalidToken
	}
	return nil
}

// RotateKey replaces the device's public key after token verification. The
// device keeps its ID; a new ID would orphan its prompt queue.
func (s *Store) RotateKey(deviceID model.DeviceID, token string, publicKey *ecdsa.PublicKey) error {
	if err := s.VerifyToken(deviceID, token); err != nil {
		return err
	}

	encodedKey, err := keys.EncodePublicKey(publicKey, string(deviceID))
	if err != nil {
		return fmt.Errorf("encoding public key: %w", err)
	}

	_, err = s.db.Exec(`update devices set PublicKey = ? where ID = ?`, encodedKey, string(deviceID))
	if err != nil {
		return fmt.Errorf("updating device key: %w", err)
	}
	return nil
}
