package enums

// LedgerEntryKind maps to the ledger_entry_kind column.
type LedgerEntryKind string

const (
	LedgerEntryCredit LedgerEntryKind = "credit"
	LedgerEntryDebit  LedgerEntryKind = "debit"
)

func (k LedgerEntryKind) IsValid() bool {
	return k == LedgerEntryCredit || k == LedgerEntryDebit
}
