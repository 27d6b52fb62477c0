package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paclead/splitsettle/pkg/enums"
)

// LedgerEntry is one signed money movement for one party of one sale event.
// Credits are positive, debits negative.
type LedgerEntry struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	SaleID         uuid.UUID                 `gorm:"column:sale_id;type:uuid;not null;uniqueIndex:ux_ledger_entries_party,priority:1"`
	StableRef      string                    `gorm:"column:stable_ref;not null;uniqueIndex:ux_ledger_entries_party,priority:2"`
	PartyKind      enums.PartyKind           `gorm:"column:party_kind;not null;uniqueIndex:ux_ledger_entries_party,priority:3"`
	PartyID        uuid.UUID                 `gorm:"column:party_id;type:uuid;not null;uniqueIndex:ux_ledger_entries_party,priority:4"`
	OrganizationID uuid.UUID                 `gorm:"column:organization_id;type:uuid;not null"`
	EventType      enums.SettlementEventType `gorm:"column:event_type;not null"`
	EntryKind      enums.LedgerEntryKind     `gorm:"column:entry_kind;not null"`
	AmountCents    int64                     `gorm:"column:amount_cents;not null"`
	ReleaseAt      time.Time                 `gorm:"column:release_at;not null;index"`
	ReleasedAt     *time.Time                `gorm:"column:released_at"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

func (e *LedgerEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
