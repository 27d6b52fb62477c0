package attempts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/paclead/splitsettle/pkg/db/dbtest"
	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
)

func TestInsertIfAbsentYieldsToExistingRow(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	saleID := uuid.New()

	existing := &models.PaymentAttempt{
		StableRef:     "stripe:pi_1:paid",
		SaleID:        saleID,
		Gateway:       enums.GatewayStripe,
		PaymentMethod: enums.PaymentMethodCreditCard,
		AmountCents:   10000,
		PaymentStatus: enums.PaymentStatusPaid,
		RawStatus:     "payment_intent.succeeded",
		EventType:     enums.SettlementEventPaid,
	}
	require.NoError(t, conn.Create(existing).Error)

	late := &models.PaymentAttempt{
		StableRef:     "stripe:pi_1:paid",
		SaleID:        saleID,
		Gateway:       enums.GatewayStripe,
		PaymentMethod: enums.PaymentMethodCreditCard,
		AmountCents:   10000,
		PaymentStatus: enums.PaymentStatusPaid,
		RawStatus:     "charge.succeeded",
		EventType:     enums.SettlementEventPaid,
	}
	created, err := repo.InsertIfAbsent(context.Background(), late)
	require.NoError(t, err)
	require.False(t, created)

	var count int64
	require.NoError(t, conn.Model(&models.PaymentAttempt{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	stored, err := repo.FindByStableRef(context.Background(), "stripe:pi_1:paid")
	require.NoError(t, err)
	require.Equal(t, existing.ID, stored.ID)
	require.Equal(t, "payment_intent.succeeded", stored.RawStatus)
}
