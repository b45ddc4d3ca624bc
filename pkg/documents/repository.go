package documents

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("document not found")

// Store is the narrow record-store contract consumed by the service and the
// worker. Get returns ErrNotFound for unknown ids; Insert assigns the
// identifier; Transaction commits iff fn returns nil and rolls back otherwise.
type Store interface {
	Get(ctx context.Context, id int64) (*Document, error)
	Insert(ctx context.Context, doc *Document) error
	Save(ctx context.Context, doc *Document) error
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Document{})
}

func (r *Repository) Get(ctx context.Context, id int64) (*Document, error) {
	var doc Document
	result := r.db.WithContext(ctx).First(&doc, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &doc, nil
}

func (r *Repository) Insert(ctx context.Context, doc *Document) error {
	if doc.UploadTimestamp.IsZero() {
		doc.UploadTimestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *Repository) Save(ctx context.Context, doc *Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *Repository) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}
