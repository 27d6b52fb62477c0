package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paclead/splitsettle/pkg/enums"
)

// SplitExecution marks a (sale, stable ref) pair as processed. It is inserted
// in the same transaction as the ledger entries it produced.
type SplitExecution struct {
	ID         uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	SaleID     uuid.UUID                 `gorm:"column:sale_id;type:uuid;not null;uniqueIndex:ux_split_executions_sale_ref,priority:1"`
	StableRef  string                    `gorm:"column:stable_ref;not null;uniqueIndex:ux_split_executions_sale_ref,priority:2"`
	EventType  enums.SettlementEventType `gorm:"column:event_type;not null"`
	EntryCount int                       `gorm:"column:entry_count;not null"`
	TotalCents int64                     `gorm:"column:total_cents;not null"`
	Pending    bool                      `gorm:"column:pending;not null;default:false"`
	Note       *string                   `gorm:"column:note"`
	CreatedAt  time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (SplitExecution) TableName() string { return "split_executions" }

func (e *SplitExecution) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
