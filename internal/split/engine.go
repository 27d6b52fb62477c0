// Package split turns settlement events into per-party ledger entries.
//
// Every (sale, stable ref) pair is applied at most once. The claim is an
// insert-if-absent on split_executions, written in the same transaction as
// the entries and the outbox event, so concurrent deliveries of the same
// event cannot both write.
package split

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paclead/splitsettle/internal/ledger"
	"github.com/paclead/splitsettle/pkg/config"
	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
	"github.com/paclead/splitsettle/pkg/logger"
	"github.com/paclead/splitsettle/pkg/metrics"
	"github.com/paclead/splitsettle/pkg/outbox"
	"github.com/paclead/splitsettle/pkg/outbox/payloads"
)

const (
	resultApplied   = "applied"
	resultDuplicate = "duplicate"
	resultSkipped   = "skipped"
	resultFailed    = "failed"
)

// TxRunner runs fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Event is a normalized settlement event for a located sale.
type Event struct {
	Sale          *models.Sale
	StableRef     string
	EventType     enums.SettlementEventType
	Gateway       enums.Gateway
	PaymentMethod enums.PaymentMethod
	AmountCents   int64
	FeeCents      int64
	InterestCents int64
	OccurredAt    time.Time
}

// Result describes what a Process call did.
type Result struct {
	Applied   bool
	Duplicate bool
	// Pending marks a reversal parked until the sale's paid event arrives.
	Pending bool
	Entries []models.LedgerEntry
	Note    string
}

type EngineParams struct {
	DB         TxRunner
	Splits     Repository
	Ledger     ledger.Repository
	Outbox     outbox.Emitter
	Settlement config.SettlementConfig
	Policy     Policy
	Metrics    *metrics.SplitMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type Engine struct {
	db         TxRunner
	splits     Repository
	ledger     ledger.Repository
	outbox     outbox.Emitter
	settlement config.SettlementConfig
	platformID uuid.UUID
	policy     Policy
	metrics    *metrics.SplitMetrics
	logg       *logger.Logger
	now        func() time.Time
}

func NewEngine(params EngineParams) (*Engine, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Splits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "split repository required")
	}
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository required")
	}
	platformID, err := uuid.Parse(params.Settlement.PlatformPartyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "invalid platform party id")
	}
	policy := params.Policy
	if policy == nil {
		policy = ConfiguredPolicy{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		db:         params.DB,
		splits:     params.Splits,
		ledger:     params.Ledger,
		outbox:     params.Outbox,
		settlement: params.Settlement,
		platformID: platformID,
		policy:     policy,
		metrics:    params.Metrics,
		logg:       logg,
		now:        now,
	}, nil
}

// Process applies ev exactly once per (sale, stable ref). Events that do not
// move money are skipped. A replayed event returns Duplicate with no writes.
func (e *Engine) Process(ctx context.Context, ev Event) (Result, error) {
	if ev.Sale == nil || ev.Sale.ID == uuid.Nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "sale is required")
	}
	if ev.StableRef == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "stable ref is required")
	}
	if !ev.EventType.MovesMoney() {
		e.metrics.IncExecution(ev.EventType.String(), resultSkipped)
		return Result{Note: "event does not move money"}, nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = e.now().UTC()
	}

	ctx = e.logg.WithFields(ctx, map[string]any{
		"sale_id":    ev.Sale.ID.String(),
		"stable_ref": ev.StableRef,
		"event_type": ev.EventType.String(),
	})

	var result Result
	err := e.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = e.apply(ctx, tx, ev)
		return err
	})
	if err != nil {
		e.metrics.IncExecution(ev.EventType.String(), resultFailed)
		e.logg.Error(ctx, "split processing failed", err)
		if pkgerrors.As(err) != nil {
			return Result{}, err
		}
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err,
			fmt.Sprintf("split %s for sale %s (%s)", ev.EventType, ev.Sale.ID, ev.StableRef))
	}

	switch {
	case result.Duplicate:
		e.metrics.IncExecution(ev.EventType.String(), resultDuplicate)
		e.logg.Info(ctx, "split already processed")
	default:
		e.metrics.IncExecution(ev.EventType.String(), resultApplied)
		for _, entry := range result.Entries {
			e.metrics.AddLedgerCents(string(entry.PartyKind), string(entry.EntryKind), entry.AmountCents)
		}
		switch {
		case result.Pending:
			e.logg.Info(ctx, "reversal deferred until paid settlement")
		case result.Note != "":
			e.logg.Warn(e.logg.WithField(ctx, "note", result.Note), "split recorded without ledger entries")
		default:
			e.logg.Info(e.logg.WithField(ctx, "entries", len(result.Entries)), "split applied")
		}
	}
	return result, nil
}

// plan is what one event writes once its (sale, stable ref) pair is claimed.
type plan struct {
	entries  []models.LedgerEntry
	note     string
	pending  bool
	events   []outbox.DomainEvent
	resolved []resolvedReversal
}

// resolvedReversal is a pending reversal settled by the paid event that
// finally produced the credits it mirrors.
type resolvedReversal struct {
	exec    models.SplitExecution
	entries []models.LedgerEntry
	note    string
}

func (e *Engine) apply(ctx context.Context, tx *gorm.DB, ev Event) (Result, error) {
	splits := e.splits.WithTx(tx)

	// Serializes every money movement of one sale, so two reversals under
	// different stable refs cannot both read "not yet reversed".
	if err := splits.LockSale(ctx, ev.Sale.ID); err != nil {
		return Result{}, err
	}

	prior, err := splits.FindExecution(ctx, ev.Sale.ID, ev.StableRef)
	if err != nil {
		return Result{}, err
	}
	if prior != nil {
		return Result{Duplicate: true}, nil
	}

	var p plan
	if ev.EventType == enums.SettlementEventPaid {
		p, err = e.settle(ctx, splits, ev)
	} else {
		p, err = e.reverse(ctx, tx, splits, ev)
	}
	if err != nil {
		return Result{}, err
	}

	exec := &models.SplitExecution{
		SaleID:     ev.Sale.ID,
		StableRef:  ev.StableRef,
		EventType:  ev.EventType,
		EntryCount: len(p.entries),
		TotalCents: sumEntries(p.entries),
		Pending:    p.pending,
	}
	if p.note != "" {
		exec.Note = &p.note
	}
	claimed, err := splits.InsertExecutionIfAbsent(ctx, exec)
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		return Result{Duplicate: true}, nil
	}

	entries := p.entries
	for _, r := range p.resolved {
		var note *string
		if r.note != "" {
			note = &r.note
		}
		if err := splits.ResolvePending(ctx, r.exec.ID, len(r.entries), sumEntries(r.entries), note); err != nil {
			return Result{}, err
		}
		entries = append(entries, r.entries...)
	}

	if err := e.ledger.WithTx(tx).CreateEntries(ctx, entries); err != nil {
		return Result{}, err
	}
	if e.outbox != nil {
		for _, event := range p.events {
			if err := e.outbox.Emit(ctx, tx, event); err != nil {
				return Result{}, err
			}
		}
	}
	return Result{Applied: true, Pending: p.pending, Entries: entries, Note: p.note}, nil
}

func (e *Engine) settle(ctx context.Context, splits Repository, ev Event) (plan, error) {
	sale := ev.Sale
	gross := ev.AmountCents
	if gross <= 0 {
		gross = sale.TotalCents
	}
	interest := ev.InterestCents
	if interest <= 0 {
		interest = sale.InterestCents
	}

	rules, err := splits.ListActiveRules(ctx, sale.OrganizationID)
	if err != nil {
		return plan{}, err
	}
	shares, err := e.policy.Allocate(Allocation{
		GrossCents:    gross,
		FeeCents:      ev.FeeCents,
		InterestCents: interest,
		Parties:       partiesFor(sale, rules, e.platformID),
	})
	if err != nil {
		return plan{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate split")
	}
	if err := checkConservation(shares, gross); err != nil {
		return plan{}, err
	}

	deferred := ev.OccurredAt.Add(e.settlement.DelayFor(ev.PaymentMethod.String()))
	entries := make([]models.LedgerEntry, 0, len(shares))
	index := map[partyKey]int{}
	for _, share := range shares {
		if share.AmountCents == 0 {
			continue
		}
		key := partyKey{kind: share.Party.Kind, id: share.Party.ID}
		if i, ok := index[key]; ok {
			entries[i].AmountCents += share.AmountCents
			continue
		}
		releaseAt := deferred
		if share.Party.Kind == enums.PartyKindIndustry {
			releaseAt = ev.OccurredAt
		}
		index[key] = len(entries)
		entries = append(entries, models.LedgerEntry{
			SaleID:         sale.ID,
			OrganizationID: sale.OrganizationID,
			StableRef:      ev.StableRef,
			PartyKind:      share.Party.Kind,
			PartyID:        share.Party.ID,
			EventType:      ev.EventType,
			EntryKind:      enums.LedgerEntryCredit,
			AmountCents:    share.AmountCents,
			ReleaseAt:      releaseAt.UTC(),
		})
	}

	p := plan{
		entries: entries,
		events: []outbox.DomainEvent{{
			EventType:     enums.EventSplitSettled,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			OccurredAt:    ev.OccurredAt,
			Data: payloads.SplitSettledEvent{
				SaleID:         sale.ID,
				OrganizationID: sale.OrganizationID,
				Gateway:        ev.Gateway,
				StableRef:      ev.StableRef,
				GrossCents:     gross,
				FeeCents:       ev.FeeCents,
				Parties:        partyAmounts(entries),
			},
		}},
	}

	pending, err := splits.ListPendingReversals(ctx, sale.ID)
	if err != nil {
		return plan{}, err
	}
	var appliedRef string
	for _, exec := range pending {
		r := resolvedReversal{exec: exec}
		if appliedRef == "" {
			r.entries = mirrorCredits(entries, sale, exec.StableRef, exec.EventType, ev.OccurredAt)
			appliedRef = exec.StableRef
		} else {
			r.note = "sale already reversed by " + appliedRef
		}
		p.resolved = append(p.resolved, r)
		p.events = append(p.events, reversedEvent(ev, sale, exec.StableRef, exec.EventType, ev.StableRef, r.entries))
	}
	return p, nil
}

// reverse mirrors the liable credits of the first paid settlement. Platform
// and industry credits are never debited. Without a paid settlement the
// reversal is parked as pending and applied when the paid event lands.
func (e *Engine) reverse(ctx context.Context, tx *gorm.DB, splits Repository, ev Event) (plan, error) {
	sale := ev.Sale

	paid, err := splits.FirstPaidExecution(ctx, sale.ID)
	if err != nil {
		return plan{}, err
	}
	if paid == nil {
		return plan{pending: true, note: "awaiting paid settlement"}, nil
	}

	executions, err := splits.ListExecutions(ctx, sale.ID)
	if err != nil {
		return plan{}, err
	}
	for _, prior := range executions {
		if prior.EventType.IsReversal() && prior.EntryCount > 0 {
			return plan{
				note:   "sale already reversed by " + prior.StableRef,
				events: []outbox.DomainEvent{reversedEvent(ev, sale, ev.StableRef, ev.EventType, paid.StableRef, nil)},
			}, nil
		}
	}

	credits, err := e.ledger.WithTx(tx).ListBySaleAndRef(ctx, sale.ID, paid.StableRef)
	if err != nil {
		return plan{}, err
	}
	p := plan{entries: mirrorCredits(credits, sale, ev.StableRef, ev.EventType, ev.OccurredAt)}
	if len(p.entries) == 0 {
		p.note = "no liable credits to reverse"
	}
	p.events = []outbox.DomainEvent{reversedEvent(ev, sale, ev.StableRef, ev.EventType, paid.StableRef, p.entries)}
	return p, nil
}

// mirrorCredits debits every liable credit, tagged with the reversal's ref.
func mirrorCredits(credits []models.LedgerEntry, sale *models.Sale, ref string, eventType enums.SettlementEventType, at time.Time) []models.LedgerEntry {
	entries := make([]models.LedgerEntry, 0, len(credits))
	for _, credit := range credits {
		if !credit.PartyKind.LiableForReversal() || credit.AmountCents <= 0 {
			continue
		}
		entries = append(entries, models.LedgerEntry{
			SaleID:         sale.ID,
			OrganizationID: sale.OrganizationID,
			StableRef:      ref,
			PartyKind:      credit.PartyKind,
			PartyID:        credit.PartyID,
			EventType:      eventType,
			EntryKind:      enums.LedgerEntryDebit,
			AmountCents:    -credit.AmountCents,
			ReleaseAt:      at.UTC(),
		})
	}
	return entries
}

func reversedEvent(ev Event, sale *models.Sale, ref string, eventType enums.SettlementEventType, reversedRef string, entries []models.LedgerEntry) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventSplitReversed,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		OccurredAt:    ev.OccurredAt,
		Data: payloads.SplitReversedEvent{
			SaleID:         sale.ID,
			OrganizationID: sale.OrganizationID,
			Gateway:        ev.Gateway,
			StableRef:      ref,
			EventType:      eventType,
			ReversedRef:    reversedRef,
			Parties:        partyAmounts(entries),
		},
	}
}

func checkConservation(shares []Share, gross int64) error {
	var sum int64
	for _, share := range shares {
		if share.AmountCents < 0 {
			return pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("negative share %d for %s party", share.AmountCents, share.Party.Kind))
		}
		sum += share.AmountCents
	}
	if sum != gross {
		return pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("split shares sum to %d, gross is %d", sum, gross))
	}
	return nil
}

type partyKey struct {
	kind enums.PartyKind
	id   uuid.UUID
}

func sumEntries(entries []models.LedgerEntry) int64 {
	var total int64
	for _, entry := range entries {
		total += entry.AmountCents
	}
	return total
}

func partyAmounts(entries []models.LedgerEntry) []payloads.PartyAmount {
	out := make([]payloads.PartyAmount, 0, len(entries))
	for _, entry := range entries {
		out = append(out, payloads.PartyAmount{
			PartyKind:   entry.PartyKind,
			PartyID:     entry.PartyID,
			AmountCents: entry.AmountCents,
			ReleaseAt:   entry.ReleaseAt,
		})
	}
	return out
}
