package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/settlement/report"
)

// OutboxRelay prints and publishes settlement records queued by payments.
// Delivery is at least once: an entry is marked done only after its receipt
// is stored and the broker confirmed it.
type OutboxRelay struct {
	tx        Transactor
	repo      OutboxRepository
	receipts  ReceiptStore
	publisher Publisher
	batchSize int
	interval  time.Duration
	logger    *zap.Logger
}

func NewOutboxRelay(tx Transactor, repo OutboxRepository, receipts ReceiptStore, publisher Publisher, batchSize int, interval time.Duration, logger *zap.Logger) *OutboxRelay {
	return &OutboxRelay{
		tx:        tx,
		repo:      repo,
		receipts:  receipts,
		publisher: publisher,
		batchSize: batchSize,
		interval:  interval,
		logger:    logger,
	}
}

// RelayOnce handles up to one batch and returns how many entries were
// delivered. It stops at the first delivery failure so entries stay in order.
// The batch rows stay locked until the delivered ones are marked done, so a
// concurrent shift closure waits instead of delivering them twice.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	var delivered int
	var deliverErr error

	err := r.tx.Transact(ctx, func(ctx context.Context) error {
		entries, err := r.repo.GetPendingOutbox(ctx, r.batchSize)
		if err != nil {
			return err
		}

		done := make([]int64, 0, len(entries))
		for _, entry := range entries {
			if err := r.deliver(ctx, entry); err != nil {
				deliverErr = err
				break
			}
			done = append(done, entry.ID)
		}
		delivered = len(done)
		return r.repo.MarkDoneOutboxes(ctx, done)
	})
	if err != nil {
		return 0, err
	}
	return delivered, deliverErr
}

// Flush delivers every pending entry, batch by batch. Shift closure calls it
// inside its transaction so receipts land in the shift being archived.
func (r *OutboxRelay) Flush(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.RelayOnce(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 || n < r.batchSize {
			return total, nil
		}
	}
}

func (r *OutboxRelay) deliver(ctx context.Context, entry domain.OutboxEntry) error {
	var rec domain.SettlementRecord
	if err := json.Unmarshal(entry.Content, &rec); err != nil {
		// Retrying cannot fix a malformed entry.
		r.logger.Error("dropping malformed outbox entry", zap.Int64("outboxId", entry.ID), zap.Error(err))
		return nil
	}

	content, err := report.Receipt(rec)
	if err != nil {
		return err
	}
	path, err := r.receipts.SaveReceipt(rec.TableNumber, rec.SettledAt, content)
	if err != nil {
		return err
	}
	if err := r.publisher.Publish(ctx, rec.ID, entry.Content); err != nil {
		return err
	}

	r.logger.Info("receipt delivered",
		zap.String("recordId", rec.ID),
		zap.Uint("table", rec.TableNumber),
		zap.String("path", path),
	)
	return nil
}

// Run relays on every tick until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("outbox relay failed, retrying on next tick", zap.Error(err))
			}
		}
	}
}
