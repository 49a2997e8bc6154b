// Package worker exports written transactions to the external ledger. It
// consumes AMQP sync messages and, as a backup for lost messages, scans
// the database for rows still flagged as pending.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

type SyncWorker struct {
	store     storage.Store
	ledger    sheets.LedgerWriter
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(store storage.Store, ledger sheets.LedgerWriter, batchSize int, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		store:     store,
		ledger:    ledger,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSyncMessage exports the transaction named by one AMQP message.
// The current row is read from the database, so a message that arrives
// after a further update still exports the latest state.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.InfoContext(ctx, "processing sync message",
		log.FieldTxnID, msg.ID,
		log.FieldVersion, msg.Version)

	txn, err := w.store.GetTransactionByID(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		// The row is gone; requeueing would redeliver forever. Drop it.
		w.logger.WarnContext(ctx, "sync message names a missing transaction, dropping",
			log.FieldTxnID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.export(ctx, txn.ID, *txn); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	return nil
}

// ProcessPendingTransactions exports rows still flagged as pending. It is
// the backup path for AMQP messages that never arrived.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains pending rows accumulated while the worker was
// down, using a larger batch than the periodic scan.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPending(ctx context.Context, batch int) error {
	pending, err := w.store.PendingSync(ctx, batch)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "processing pending transactions", "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		txn, err := w.store.GetTransactionByID(ctx, p.ID)
		if err != nil {
			w.logger.ErrorContext(ctx, "failed to load pending transaction",
				log.FieldTxnID, p.ID, log.ErrAttr(err))
			w.markError(ctx, p.ID)
			failed++
			continue
		}

		if err := w.export(ctx, p.ID, *txn); err != nil {
			w.logger.ErrorContext(ctx, "failed to export pending transaction",
				log.FieldTxnID, p.ID, log.ErrAttr(err))
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "pending scan completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

// export appends the row to the ledger and flips the sync flags. An
// append failure marks the row so it is not retried until the next write
// resets it.
func (w *SyncWorker) export(ctx context.Context, id int64, txn core.Transaction) error {
	ref, err := w.ledger.Append(ctx, txn)
	if err != nil {
		w.markError(ctx, id)
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.store.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	w.logger.InfoContext(ctx, "transaction exported",
		log.FieldTxnID, id,
		log.FieldLedgerRef, ref)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, id int64) {
	if err := w.store.MarkSyncError(ctx, id); err != nil {
		w.logger.ErrorContext(ctx, "failed to mark sync error",
			log.FieldTxnID, id, log.ErrAttr(err))
	}
}
