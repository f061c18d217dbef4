package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"crediario/portal-backend/internal/payments"
	"crediario/portal-backend/internal/sales"
)

// StatusWorker reconciles stored sale statuses with their installment
// ledgers and logs an overdue summary for the store.
type StatusWorker struct {
	sales    *sales.Service
	payments payments.Repository
	logger   *zap.Logger
}

func NewStatusWorker(salesService *sales.Service, paymentsRepo payments.Repository, logger *zap.Logger) *StatusWorker {
	return &StatusWorker{
		sales:    salesService,
		payments: paymentsRepo,
		logger:   logger,
	}
}

// Run performs one reconciliation pass. Sale status is always derived from
// installments, so a pass only repairs drift left by partial failures.
func (w *StatusWorker) Run(ctx context.Context) {
	started := time.Now()

	ids, err := w.sales.ListOpenSaleIDs(ctx)
	if err != nil {
		w.logger.Error("Failed to list open sales", zap.Error(err))
		return
	}

	changed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			w.logger.Warn("Status pass interrupted", zap.Int("processed", changed))
			return
		}
		updated, err := w.sales.RefreshStatus(ctx, id)
		if err != nil {
			w.logger.Error("Failed to refresh sale status",
				zap.String("sale_id", id.String()), zap.Error(err))
			continue
		}
		if updated {
			changed++
		}
	}

	w.logOverdueSummary(ctx)

	w.logger.Info("Status pass finished",
		zap.Int("open_sales", len(ids)),
		zap.Int("statuses_changed", changed),
		zap.Duration("elapsed", time.Since(started)))
}

func (w *StatusWorker) logOverdueSummary(ctx context.Context) {
	overdue, err := w.payments.ListOverdue(ctx, time.Now(), payments.OverdueFilter{})
	if err != nil {
		w.logger.Error("Failed to load overdue installments", zap.Error(err))
		return
	}
	if len(overdue) == 0 {
		return
	}

	total := overdue[0].Remaining()
	for _, inst := range overdue[1:] {
		total = total.Add(inst.Remaining())
	}
	w.logger.Info("Overdue summary",
		zap.Int("installments", len(overdue)),
		zap.String("open_value", total.StringFixed(2)))
}
