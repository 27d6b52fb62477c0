package split

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paclead/splitsettle/internal/ledger"
	"github.com/paclead/splitsettle/pkg/config"
	"github.com/paclead/splitsettle/pkg/db"
	"github.com/paclead/splitsettle/pkg/db/dbtest"
	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
	"github.com/paclead/splitsettle/pkg/outbox"
)

var (
	platformID = uuid.MustParse("0b6c5f0e-8a51-4f8e-9a1d-1c0f4b5d2e77")
	occurred   = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
)

type harness struct {
	conn   *gorm.DB
	engine *Engine
	ledger ledger.Repository
	sale   *models.Sale
}

func settlementConfig() config.SettlementConfig {
	return config.SettlementConfig{
		PixDelay:        24 * time.Hour,
		BoletoDelay:     48 * time.Hour,
		CreditCardDelay: 720 * time.Hour,
		DefaultDelay:    720 * time.Hour,
		PlatformPartyID: platformID.String(),
	}
}

func newHarness(t *testing.T, rules ...models.SplitRule) *harness {
	t.Helper()
	return newHarnessWithPolicy(t, nil, rules...)
}

func newHarnessWithPolicy(t *testing.T, policy Policy, rules ...models.SplitRule) *harness {
	t.Helper()
	conn := dbtest.Open(t)
	sale := &models.Sale{
		OrganizationID: uuid.New(),
		TotalCents:     10000,
		Status:         enums.SaleStatusPending,
		PaymentStatus:  enums.PaymentStatusPending,
	}
	require.NoError(t, conn.Create(sale).Error)
	for i := range rules {
		rules[i].OrganizationID = sale.OrganizationID
		rules[i].Active = true
		require.NoError(t, conn.Create(&rules[i]).Error)
	}

	ledgerRepo := ledger.NewRepository(conn)
	engine, err := NewEngine(EngineParams{
		DB:         db.NewWithConn(conn),
		Splits:     NewRepository(conn),
		Ledger:     ledgerRepo,
		Outbox:     outbox.NewService(outbox.NewRepository(conn), nil),
		Settlement: settlementConfig(),
		Policy:     policy,
	})
	require.NoError(t, err)
	return &harness{conn: conn, engine: engine, ledger: ledgerRepo, sale: sale}
}

func (h *harness) event(eventType enums.SettlementEventType, ref string) Event {
	return Event{
		Sale:          h.sale,
		StableRef:     ref,
		EventType:     eventType,
		Gateway:       enums.GatewayAsaas,
		PaymentMethod: enums.PaymentMethodPix,
		AmountCents:   10000,
		FeeCents:      500,
		OccurredAt:    occurred,
	}
}

func (h *harness) entries(t *testing.T) []models.LedgerEntry {
	t.Helper()
	entries, err := h.ledger.ListBySale(context.Background(), h.sale.ID)
	require.NoError(t, err)
	return entries
}

func (h *harness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.conn.Model(model).Count(&n).Error)
	return n
}

func byParty(entries []models.LedgerEntry, ref string) map[enums.PartyKind]int64 {
	out := map[enums.PartyKind]int64{}
	for _, e := range entries {
		if ref == "" || e.StableRef == ref {
			out[e.PartyKind] += e.AmountCents
		}
	}
	return out
}

func affiliateRule(percent string) models.SplitRule {
	return models.SplitRule{PartyKind: enums.PartyKindAffiliate, PartyID: uuid.New(), Percent: pct(percent), Priority: 1}
}

const (
	paidRef       = "asaas:pay_123:paid"
	chargebackRef = "asaas:pay_123:chargedback"
	refundRef     = "asaas:pay_123:refunded"
)

func TestEnginePaidSplitsAcrossParties(t *testing.T) {
	h := newHarness(t, affiliateRule("20"))

	res, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventPaid, paidRef))
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.Len(t, res.Entries, 3)

	amounts := byParty(h.entries(t), paidRef)
	require.Equal(t, int64(500), amounts[enums.PartyKindPlatform])
	require.Equal(t, int64(7600), amounts[enums.PartyKindTenant])
	require.Equal(t, int64(1900), amounts[enums.PartyKindAffiliate])
	require.Equal(t, int64(10000), amounts[enums.PartyKindPlatform]+amounts[enums.PartyKindTenant]+amounts[enums.PartyKindAffiliate])

	for _, e := range h.entries(t) {
		require.Equal(t, enums.LedgerEntryCredit, e.EntryKind)
		require.True(t, e.ReleaseAt.Equal(occurred.Add(24*time.Hour)), "pix delay applies to %s", e.PartyKind)
		if e.PartyKind == enums.PartyKindPlatform {
			require.Equal(t, platformID, e.PartyID)
		}
		if e.PartyKind == enums.PartyKindTenant {
			require.Equal(t, h.sale.OrganizationID, e.PartyID)
		}
	}
	require.Equal(t, int64(1), h.count(t, &models.OutboxEvent{}))
}

func TestEngineChargebackDebitsOnlyLiableParties(t *testing.T) {
	industry := models.SplitRule{PartyKind: enums.PartyKindIndustry, PartyID: uuid.New(), FixedCents: cents(2000)}
	h := newHarness(t, affiliateRule("20"), industry)

	_, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventPaid, paidRef))
	require.NoError(t, err)
	before := byParty(h.entries(t), "")

	res, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventChargedback, chargebackRef))
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.Len(t, res.Entries, 2)

	debits := byParty(h.entries(t), chargebackRef)
	require.Equal(t, -before[enums.PartyKindTenant], debits[enums.PartyKindTenant])
	require.Equal(t, -before[enums.PartyKindAffiliate], debits[enums.PartyKindAffiliate])
	require.NotContains(t, debits, enums.PartyKindPlatform)
	require.NotContains(t, debits, enums.PartyKindIndustry)

	after := byParty(h.entries(t), "")
	require.Equal(t, before[enums.PartyKindPlatform], after[enums.PartyKindPlatform])
	require.Equal(t, before[enums.PartyKindIndustry], after[enums.PartyKindIndustry])
	require.Zero(t, after[enums.PartyKindTenant])
	require.Zero(t, after[enums.PartyKindAffiliate])

	for _, e := range res.Entries {
		require.Equal(t, enums.LedgerEntryDebit, e.EntryKind)
		require.Equal(t, enums.SettlementEventChargedback, e.EventType)
	}
	require.Equal(t, int64(2), h.count(t, &models.OutboxEvent{}))
}

func TestEngineScenarioChargebackAmounts(t *testing.T) {
	h := newHarness(t, affiliateRule("20"))
	_, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventPaid, paidRef))
	require.NoError(t, err)
	_, err = h.engine.Process(context.Background(), h.event(enums.SettlementEventChargedback, chargebackRef))
	require.NoError(t, err)

	debits := byParty(h.entries(t), chargebackRef)
	require.Equal(t, map[enums.PartyKind]int64{
		enums.PartyKindTenant:    -7600,
		enums.PartyKindAffiliate: -1900,
	}, debits)
}

func TestEngineReplayIsNoop(t *testing.T) {
	h := newHarness(t, affiliateRule("20"))
	ev := h.event(enums.SettlementEventPaid, paidRef)

	_, err := h.engine.Process(context.Background(), ev)
	require.NoError(t, err)
	first := h.entries(t)

	for i := 0; i < 3; i++ {
		res, err := h.engine.Process(context.Background(), ev)
		require.NoError(t, err)
		require.True(t, res.Duplicate)
		require.False(t, res.Applied)
	}

	again := h.entries(t)
	require.Len(t, again, len(first))
	for i := range first {
		require.Equal(t, first[i].ID, again[i].ID)
	}
	require.Equal(t, int64(1), h.count(t, &models.SplitExecution{}))
	require.Equal(t, int64(1), h.count(t, &models.OutboxEvent{}))
}

func TestEngineSecondReversalDoesNotDoubleDebit(t *testing.T) {
	h := newHarness(t, affiliateRule("20"))
	_, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventPaid, paidRef))
	require.NoError(t, err)
	_, err = h.engine.Process(context.Background(), h.event(enums.SettlementEventRefunded, refundRef))
	require.NoError(t, err)

	res, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventChargedback, chargebackRef))
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.Empty(t, res.Entries)
	require.Contains(t, res.Note, refundRef)

	require.Empty(t, byParty(h.entries(t), chargebackRef))
	require.Equal(t, int64(3), h.count(t, &models.SplitExecution{}))
}

func TestEngineReversalBeforePaidIsParked(t *testing.T) {
	h := newHarness(t)

	res, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventRefunded, refundRef))
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.True(t, res.Pending)
	require.Empty(t, res.Entries)
	require.Empty(t, h.entries(t))
	require.Zero(t, h.count(t, &models.OutboxEvent{}))

	exec, err := NewRepository(h.conn).FindExecution(context.Background(), h.sale.ID, refundRef)
	require.NoError(t, err)
	require.NotNil(t, exec)
	require.True(t, exec.Pending)
	require.Zero(t, exec.EntryCount)
}

func TestEngineChargebackBeforePaidIsAppliedOnSettlement(t *testing.T) {
	h := newHarness(t, affiliateRule("20"))
	ctx := context.Background()

	res, err := h.engine.Process(ctx, h.event(enums.SettlementEventChargedback, chargebackRef))
	require.NoError(t, err)
	require.True(t, res.Pending)

	res, err = h.engine.Process(ctx, h.event(enums.SettlementEventPaid, paidRef))
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.Len(t, res.Entries, 5)

	res, err = h.engine.Process(ctx, h.event(enums.SettlementEventChargedback, chargebackRef))
	require.NoError(t, err)
	require.True(t, res.Duplicate)

	net := byParty(h.entries(t), "")
	require.Zero(t, net[enums.PartyKindTenant])
	require.Zero(t, net[enums.PartyKindAffiliate])
	require.Equal(t, int64(500), net[enums.PartyKindPlatform])

	require.Equal(t, map[enums.PartyKind]int64{
		enums.PartyKindTenant:    -7600,
		enums.PartyKindAffiliate: -1900,
	}, byParty(h.entries(t), chargebackRef))

	exec, err := NewRepository(h.conn).FindExecution(ctx, h.sale.ID, chargebackRef)
	require.NoError(t, err)
	require.False(t, exec.Pending)
	require.Equal(t, 2, exec.EntryCount)
	require.Equal(t, int64(-9500), exec.TotalCents)
	require.Equal(t, int64(2), h.count(t, &models.OutboxEvent{}))
}

func TestEngineTwoParkedReversalsDebitOnce(t *testing.T) {
	h := newHarness(t, affiliateRule("20"))
	ctx := context.Background()

	_, err := h.engine.Process(ctx, h.event(enums.SettlementEventRefunded, refundRef))
	require.NoError(t, err)
	_, err = h.engine.Process(ctx, h.event(enums.SettlementEventChargedback, chargebackRef))
	require.NoError(t, err)
	_, err = h.engine.Process(ctx, h.event(enums.SettlementEventPaid, paidRef))
	require.NoError(t, err)

	net := byParty(h.entries(t), "")
	require.Zero(t, net[enums.PartyKindTenant])
	require.Zero(t, net[enums.PartyKindAffiliate])
	require.Len(t, byParty(h.entries(t), refundRef), 2)
	require.Empty(t, byParty(h.entries(t), chargebackRef))

	pending, err := NewRepository(h.conn).ListPendingReversals(ctx, h.sale.ID)
	require.NoError(t, err)
	require.Empty(t, pending)

	later, err := h.engine.Process(ctx, h.event(enums.SettlementEventChargedback, "asaas:pay_999:chargedback"))
	require.NoError(t, err)
	require.Empty(t, later.Entries)
	require.Contains(t, later.Note, refundRef)
}

// staleReadRepo never sees an existing execution, which is what a delivery
// racing a concurrent commit observes.
type staleReadRepo struct {
	Repository
	calls *[]string
}

func (r staleReadRepo) WithTx(tx *gorm.DB) Repository {
	return staleReadRepo{Repository: r.Repository.WithTx(tx), calls: r.calls}
}

func (r staleReadRepo) LockSale(ctx context.Context, saleID uuid.UUID) error {
	*r.calls = append(*r.calls, "lock")
	return r.Repository.LockSale(ctx, saleID)
}

func (r staleReadRepo) FindExecution(context.Context, uuid.UUID, string) (*models.SplitExecution, error) {
	*r.calls = append(*r.calls, "find")
	return nil, nil
}

func TestEngineClaimLosesToConcurrentExecution(t *testing.T) {
	h := newHarness(t, affiliateRule("20"))
	require.NoError(t, h.conn.Create(&models.SplitExecution{
		SaleID:    h.sale.ID,
		StableRef: paidRef,
		EventType: enums.SettlementEventPaid,
	}).Error)

	calls := []string{}
	engine, err := NewEngine(EngineParams{
		DB:         db.NewWithConn(h.conn),
		Splits:     staleReadRepo{Repository: NewRepository(h.conn), calls: &calls},
		Ledger:     h.ledger,
		Outbox:     outbox.NewService(outbox.NewRepository(h.conn), nil),
		Settlement: settlementConfig(),
	})
	require.NoError(t, err)

	res, err := engine.Process(context.Background(), h.event(enums.SettlementEventPaid, paidRef))
	require.NoError(t, err)
	require.True(t, res.Duplicate)
	require.False(t, res.Applied)
	require.Empty(t, h.entries(t))
	require.Zero(t, h.count(t, &models.OutboxEvent{}))
	require.Equal(t, int64(1), h.count(t, &models.SplitExecution{}))
	require.Equal(t, []string{"lock", "find"}, calls)
}

func TestEngineIndustryReleasesImmediately(t *testing.T) {
	industry := models.SplitRule{PartyKind: enums.PartyKindIndustry, PartyID: uuid.New(), Percent: pct("30")}
	h := newHarness(t, industry, affiliateRule("10"))
	ev := h.event(enums.SettlementEventPaid, paidRef)
	ev.PaymentMethod = enums.PaymentMethodCreditCard

	_, err := h.engine.Process(context.Background(), ev)
	require.NoError(t, err)

	var industryRelease time.Time
	others := []time.Time{}
	for _, e := range h.entries(t) {
		if e.PartyKind == enums.PartyKindIndustry {
			industryRelease = e.ReleaseAt
			require.Equal(t, int64(3000), e.AmountCents)
			continue
		}
		others = append(others, e.ReleaseAt)
	}
	require.True(t, industryRelease.Equal(occurred))
	require.NotEmpty(t, others)
	for _, at := range others {
		require.False(t, industryRelease.After(at))
		require.True(t, at.Equal(occurred.Add(720*time.Hour)))
	}
}

func TestEngineFallsBackToSaleTotalAndInterest(t *testing.T) {
	h := newHarness(t)
	h.sale.InterestCents = 250
	ev := h.event(enums.SettlementEventPaid, paidRef)
	ev.AmountCents = 0

	_, err := h.engine.Process(context.Background(), ev)
	require.NoError(t, err)

	amounts := byParty(h.entries(t), paidRef)
	require.Equal(t, int64(750), amounts[enums.PartyKindPlatform])
	require.Equal(t, int64(9250), amounts[enums.PartyKindTenant])
}

func TestEngineSkipsNonMonetaryEvents(t *testing.T) {
	h := newHarness(t)
	res, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventOther, "asaas:pay_123:other"))
	require.NoError(t, err)
	require.False(t, res.Applied)
	require.Zero(t, h.count(t, &models.SplitExecution{}))
}

func TestEngineRejectsLeakyPolicy(t *testing.T) {
	leaky := PolicyFunc(func(in Allocation) ([]Share, error) {
		return []Share{{Party: in.Parties[0], AmountCents: in.GrossCents - 1}}, nil
	})
	h := newHarnessWithPolicy(t, leaky)

	_, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventPaid, paidRef))
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeInternal, pkgerrors.CodeOf(err))
	require.Zero(t, h.count(t, &models.SplitExecution{}))
	require.Empty(t, h.entries(t))
}

func TestEnginePolicyErrorRollsBack(t *testing.T) {
	failing := PolicyFunc(func(Allocation) ([]Share, error) { return nil, errors.New("rules unavailable") })
	h := newHarnessWithPolicy(t, failing)

	_, err := h.engine.Process(context.Background(), h.event(enums.SettlementEventPaid, paidRef))
	require.Error(t, err)
	require.Zero(t, h.count(t, &models.OutboxEvent{}))
}

func TestNewEngineValidatesDependencies(t *testing.T) {
	_, err := NewEngine(EngineParams{})
	require.Error(t, err)

	conn := dbtest.Open(t)
	cfg := settlementConfig()
	cfg.PlatformPartyID = "platform"
	_, err = NewEngine(EngineParams{
		DB:         db.NewWithConn(conn),
		Splits:     NewRepository(conn),
		Ledger:     ledger.NewRepository(conn),
		Settlement: cfg,
	})
	require.Error(t, err)
}
