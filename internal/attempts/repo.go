package attempts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paclead/splitsettle/pkg/db/models"
)

// Repository persists payment attempt audit rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertIfAbsent(ctx context.Context, attempt *models.PaymentAttempt) (bool, error)
	FindByStableRef(ctx context.Context, stableRef string) (*models.PaymentAttempt, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]models.PaymentAttempt, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an attempts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// InsertIfAbsent relies on the unique stable_ref index so concurrent
// deliveries race on the database, not on a prior read.
func (r *repository) InsertIfAbsent(ctx context.Context, attempt *models.PaymentAttempt) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stable_ref"}},
			DoNothing: true,
		}).
		Create(attempt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindByStableRef(ctx context.Context, stableRef string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	err := r.db.WithContext(ctx).Where("stable_ref = ?", stableRef).Take(&attempt).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *repository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]models.PaymentAttempt, error) {
	var out []models.PaymentAttempt
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
