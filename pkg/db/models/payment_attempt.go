package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/paclead/splitsettle/pkg/enums"
)

// PaymentAttempt is the immutable audit row for one distinct webhook event.
// StableRef is unique; redeliveries never insert a second row.
type PaymentAttempt struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	StableRef     string                    `gorm:"column:stable_ref;not null;uniqueIndex:ux_payment_attempts_stable_ref"`
	SaleID        uuid.UUID                 `gorm:"column:sale_id;type:uuid;not null;index"`
	Gateway       enums.Gateway             `gorm:"column:gateway;not null"`
	TransactionID *string                   `gorm:"column:transaction_id"`
	PaymentMethod enums.PaymentMethod       `gorm:"column:payment_method;not null"`
	AmountCents   int64                     `gorm:"column:amount_cents;not null"`
	FeeCents      int64                     `gorm:"column:fee_cents;not null"`
	PaymentStatus enums.PaymentStatus       `gorm:"column:payment_status;not null"`
	RawStatus     string                    `gorm:"column:raw_status;not null"`
	EventType     enums.SettlementEventType `gorm:"column:event_type;not null"`
	Payload       datatypes.JSON            `gorm:"column:payload;type:jsonb"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (PaymentAttempt) TableName() string { return "payment_attempts" }

func (a *PaymentAttempt) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
