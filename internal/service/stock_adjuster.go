package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// StockAdjuster keeps warehouse stock in step with the work entries that
// reserve it. It always runs on the repositories of the caller's transaction.
type StockAdjuster struct {
	disabled bool
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewStockAdjuster builds the adjuster from the service settings.
func NewStockAdjuster(settings config.ServiceSettings, metrics *observability.Metrics, logger *zap.Logger) *StockAdjuster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAdjuster{
		disabled: settings.DisableStockManagement,
		metrics:  metrics,
		logger:   logger,
	}
}

// Reserve takes the entry's reservation out of stock.
func (a *StockAdjuster) Reserve(ctx context.Context, repos repository.TxRepositories, warehouse string, entry domain.WorkEntry) error {
	return a.adjust(ctx, repos, warehouse, entry.ReferenceValue(), -domain.Reservation(entry.Status, entry.Quantity))
}

// Release gives the entry's reservation back to stock.
func (a *StockAdjuster) Release(ctx context.Context, repos repository.TxRepositories, warehouse string, entry domain.WorkEntry) error {
	return a.adjust(ctx, repos, warehouse, entry.ReferenceValue(), domain.Reservation(entry.Status, entry.Quantity))
}

// Move releases what before reserved and then reserves for after.
func (a *StockAdjuster) Move(ctx context.Context, repos repository.TxRepositories, warehouse string, before, after domain.WorkEntry) error {
	if err := a.Release(ctx, repos, warehouse, before); err != nil {
		return err
	}
	return a.Reserve(ctx, repos, warehouse, after)
}

func (a *StockAdjuster) adjust(ctx context.Context, repos repository.TxRepositories, warehouse, reference string, delta float64) error {
	if a.disabled || reference == "" || delta == 0 {
		return nil
	}

	product, err := repos.Products.GetByReference(ctx, reference)
	if err != nil {
		if apperrors.IsNotFound(err) {
			a.logger.Warn("stock not adjusted: unknown product", zap.String("reference", reference))
			return nil
		}
		return fmt.Errorf("load product %s: %w", reference, err)
	}
	if product.NoStock {
		return nil
	}

	if err := repos.Stock.AddQuantity(ctx, reference, warehouse, delta); err != nil {
		return fmt.Errorf("adjust stock %s@%s: %w", reference, warehouse, err)
	}
	a.metrics.RecordStockAdjustment(delta)
	a.logger.Debug("stock adjusted",
		zap.String("reference", reference),
		zap.String("warehouse", warehouse),
		zap.Float64("delta", delta))
	return nil
}
