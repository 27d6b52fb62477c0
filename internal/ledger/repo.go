package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paclead/splitsettle/pkg/db/models"
)

// Repository manages persistence for ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntries(ctx context.Context, entries []models.LedgerEntry) error
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]models.LedgerEntry, error)
	ListBySaleAndRef(ctx context.Context, saleID uuid.UUID, stableRef string) ([]models.LedgerEntry, error)
	ReleaseDue(ctx context.Context, now time.Time, limit int) (int64, error)
	CountUnreleasedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntries(ctx context.Context, entries []models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *repository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Order("party_kind ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListBySaleAndRef(ctx context.Context, saleID uuid.UUID, stableRef string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("sale_id = ? AND stable_ref = ?", saleID, stableRef).
		Order("party_kind ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ReleaseDue stamps released_at on up to limit entries whose release time
// has passed.
func (r *repository) ReleaseDue(ctx context.Context, now time.Time, limit int) (int64, error) {
	due := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("id").
		Where("released_at IS NULL AND release_at <= ?", now).
		Order("release_at ASC")
	if limit > 0 {
		due = due.Limit(limit)
	}
	res := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("id IN (?)", due).
		Update("released_at", now)
	return res.RowsAffected, res.Error
}

// CountUnreleasedBefore counts entries that should have been released before
// cutoff but still are not.
func (r *repository) CountUnreleasedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("released_at IS NULL AND release_at < ?", cutoff).
		Count(&count).Error
	return count, err
}
