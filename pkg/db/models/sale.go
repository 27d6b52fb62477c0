package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paclead/splitsettle/pkg/enums"
)

// Sale is the commercial transaction whose proceeds are split. Rows are
// created by the order-entry flow; this service only mutates payment fields.
type Sale struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID       uuid.UUID           `gorm:"column:organization_id;type:uuid;not null;index"`
	TotalCents           int64               `gorm:"column:total_cents;not null"`
	InterestCents        int64               `gorm:"column:interest_cents;not null"`
	Status               enums.SaleStatus    `gorm:"column:status;not null"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;not null"`
	PaymentMethod        *string             `gorm:"column:payment_method"`
	Gateway              *string             `gorm:"column:gateway"`
	GatewayTransactionID *string             `gorm:"column:gateway_transaction_id;index"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Sale) TableName() string { return "sales" }

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
