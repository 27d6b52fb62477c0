package sales

import (
	"context"
	"sort"
	"strings"

	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

// StatusUpdate is what one webhook event may change on a sale.
type StatusUpdate struct {
	SaleStatus    *enums.SaleStatus
	PaymentStatus enums.PaymentStatus
	Gateway       enums.Gateway
	TransactionID string
	PaymentMethod enums.PaymentMethod
}

// Applied reports which fields the updater wrote.
type Applied struct {
	StatusChanged bool
	Fields        []string
}

// Updater writes payment state onto sales.
type Updater struct {
	repo Repository
}

func NewUpdater(repo Repository) (*Updater, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sales repository required")
	}
	return &Updater{repo: repo}, nil
}

// Apply always records the payment status and gateway identifiers. The
// lifecycle status only moves forward, so a replayed paid event never pulls a
// delivered or refunded sale back to paid. The in-memory sale is updated to
// match what was written.
func (u *Updater) Apply(ctx context.Context, sale *models.Sale, update StatusUpdate) (Applied, error) {
	if sale == nil {
		return Applied{}, pkgerrors.New(pkgerrors.CodeValidation, "sale is required")
	}

	fields := map[string]any{}
	if update.PaymentStatus != "" {
		fields["payment_status"] = string(update.PaymentStatus)
	}
	if update.Gateway != "" {
		fields["gateway"] = string(update.Gateway)
	}
	if txID := strings.TrimSpace(update.TransactionID); txID != "" {
		fields["gateway_transaction_id"] = txID
	}
	if update.PaymentMethod != "" && update.PaymentMethod != enums.PaymentMethodUnknown {
		fields["payment_method"] = string(update.PaymentMethod)
	}

	statusChanged := false
	if update.SaleStatus != nil && sale.Status.CanAdvanceTo(*update.SaleStatus) {
		fields["status"] = string(*update.SaleStatus)
		statusChanged = true
	}

	if err := u.repo.UpdatePaymentFields(ctx, sale.ID, fields); err != nil {
		return Applied{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sale payment fields")
	}

	applied := Applied{StatusChanged: statusChanged}
	for key, value := range fields {
		applied.Fields = append(applied.Fields, key)
		str := value.(string)
		switch key {
		case "payment_status":
			sale.PaymentStatus = enums.PaymentStatus(str)
		case "gateway":
			sale.Gateway = &str
		case "gateway_transaction_id":
			sale.GatewayTransactionID = &str
		case "payment_method":
			sale.PaymentMethod = &str
		case "status":
			sale.Status = enums.SaleStatus(str)
		}
	}
	sort.Strings(applied.Fields)
	return applied, nil
}
