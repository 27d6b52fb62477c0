package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/paclead/splitsettle/pkg/enums"
)

// SplitRule configures one non-platform party for an organization's sales.
// Exactly one of Percent or FixedCents is meaningful; FixedCents wins when set.
type SplitRule struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `gorm:"column:organization_id;type:uuid;not null;index"`
	PartyKind      enums.PartyKind `gorm:"column:party_kind;not null"`
	PartyID        uuid.UUID       `gorm:"column:party_id;type:uuid;not null"`
	Percent        decimal.Decimal `gorm:"column:percent;type:numeric(7,4);not null"`
	FixedCents     *int64          `gorm:"column:fixed_cents"`
	Priority       int             `gorm:"column:priority;not null"`
	Active         bool            `gorm:"column:active;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (SplitRule) TableName() string { return "split_rules" }

func (r *SplitRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
