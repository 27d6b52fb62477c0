package split

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
)

// Repository manages split rules and execution markers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveRules(ctx context.Context, organizationID uuid.UUID) ([]models.SplitRule, error)
	CreateRule(ctx context.Context, rule *models.SplitRule) error
	DeactivateRule(ctx context.Context, organizationID, ruleID uuid.UUID) (bool, error)
	InsertExecutionIfAbsent(ctx context.Context, exec *models.SplitExecution) (bool, error)
	FindExecution(ctx context.Context, saleID uuid.UUID, stableRef string) (*models.SplitExecution, error)
	FirstPaidExecution(ctx context.Context, saleID uuid.UUID) (*models.SplitExecution, error)
	ListExecutions(ctx context.Context, saleID uuid.UUID) ([]models.SplitExecution, error)
	ListPendingReversals(ctx context.Context, saleID uuid.UUID) ([]models.SplitExecution, error)
	ResolvePending(ctx context.Context, executionID uuid.UUID, entryCount int, totalCents int64, note *string) error
	LockSale(ctx context.Context, saleID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a split repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActiveRules(ctx context.Context, organizationID uuid.UUID) ([]models.SplitRule, error) {
	var rules []models.SplitRule
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND active = ?", organizationID, true).
		Order("priority ASC").
		Order("created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) CreateRule(ctx context.Context, rule *models.SplitRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// DeactivateRule reports false when no active rule of the organization matched.
func (r *repository) DeactivateRule(ctx context.Context, organizationID, ruleID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SplitRule{}).
		Where("id = ? AND organization_id = ? AND active = ?", ruleID, organizationID, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// InsertExecutionIfAbsent claims the (sale, stable ref) pair. It reports
// false when another delivery already claimed it.
func (r *repository) InsertExecutionIfAbsent(ctx context.Context, exec *models.SplitExecution) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sale_id"}, {Name: "stable_ref"}},
			DoNothing: true,
		}).
		Create(exec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindExecution(ctx context.Context, saleID uuid.UUID, stableRef string) (*models.SplitExecution, error) {
	var exec models.SplitExecution
	err := r.db.WithContext(ctx).
		Where("sale_id = ? AND stable_ref = ?", saleID, stableRef).
		First(&exec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exec, nil
}

// FirstPaidExecution returns the earliest paid execution that wrote entries.
func (r *repository) FirstPaidExecution(ctx context.Context, saleID uuid.UUID) (*models.SplitExecution, error) {
	var exec models.SplitExecution
	err := r.db.WithContext(ctx).
		Where("sale_id = ? AND event_type = ? AND entry_count > 0", saleID, enums.SettlementEventPaid).
		Order("created_at ASC").
		Order("id ASC").
		First(&exec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exec, nil
}

func (r *repository) ListExecutions(ctx context.Context, saleID uuid.UUID) ([]models.SplitExecution, error) {
	var execs []models.SplitExecution
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&execs).Error; err != nil {
		return nil, err
	}
	return execs, nil
}

// ListPendingReversals returns reversals parked before the sale was paid,
// oldest first.
func (r *repository) ListPendingReversals(ctx context.Context, saleID uuid.UUID) ([]models.SplitExecution, error) {
	var execs []models.SplitExecution
	if err := r.db.WithContext(ctx).
		Where("sale_id = ? AND pending = ?", saleID, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&execs).Error; err != nil {
		return nil, err
	}
	return execs, nil
}

func (r *repository) ResolvePending(ctx context.Context, executionID uuid.UUID, entryCount int, totalCents int64, note *string) error {
	res := r.db.WithContext(ctx).
		Model(&models.SplitExecution{}).
		Where("id = ? AND pending = ?", executionID, true).
		Updates(map[string]any{
			"pending":     false,
			"entry_count": entryCount,
			"total_cents": totalCents,
			"note":        note,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("pending reversal %s already resolved", executionID)
	}
	return nil
}

// LockSale takes a row lock on the sale for the rest of the transaction.
// SQLite ignores the locking clause; its writers are already serialized.
func (r *repository) LockSale(ctx context.Context, saleID uuid.UUID) error {
	var sale models.Sale
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", saleID).
		Limit(1).
		Find(&sale).Error
}
