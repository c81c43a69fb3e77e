package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore"
)

var _ localstore.Store = (*Store)(nil)

// Store persists local store values in PostgreSQL using GORM.
type Store struct {
	db        *gorm.DB
	namespace string
}

// NewStore wires a PostgreSQL-backed store. Caller manages DB lifecycle and schema.
func NewStore(db *gorm.DB, namespace string) *Store {
	if namespace == "" {
		namespace = "default"
	}
	return &Store{db: db, namespace: namespace}
}

// entryRecord maps one key/value pair.
type entryRecord struct {
	Namespace string    `gorm:"primaryKey;column:namespace;size:128"`
	Key       string    `gorm:"primaryKey;column:key;size:128"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (entryRecord) TableName() string { return "local_store_entries" }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record entryRecord
	err := s.db.WithContext(ctx).First(&record, "namespace = ? AND key = ?", s.namespace, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, localstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := entryRecord{Namespace: s.namespace, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&record).Error
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		Delete(&entryRecord{}).Error
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres local store not configured")
	}
	return nil
}
