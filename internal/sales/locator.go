package sales

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

// ErrSaleNotFound means neither the sale reference nor the gateway
// transaction id matched a sale.
var ErrSaleNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")

// LocateInput carries the identifiers a normalized event exposes.
type LocateInput struct {
	Gateway       enums.Gateway
	SaleRef       string
	TransactionID string
}

// Locator resolves the sale a webhook refers to.
type Locator struct {
	repo Repository
}

func NewLocator(repo Repository) (*Locator, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sales repository required")
	}
	return &Locator{repo: repo}, nil
}

// Locate tries the sale reference first and falls back to the gateway
// transaction id recorded by an earlier event for the same payment.
func (l *Locator) Locate(ctx context.Context, input LocateInput) (*models.Sale, error) {
	if id, err := uuid.Parse(strings.TrimSpace(input.SaleRef)); err == nil {
		sale, err := l.repo.FindByID(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
		}
		if sale != nil {
			return sale, nil
		}
	}

	txID := strings.TrimSpace(input.TransactionID)
	if txID == "" || input.Gateway == "" {
		return nil, ErrSaleNotFound
	}
	sale, err := l.repo.FindByGatewayTransaction(ctx, input.Gateway, txID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale by transaction")
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}
