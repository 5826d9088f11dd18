package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/walletcore/internal/domain"
)

// JournalArchiver implements usecase.JournalArchiver. It mirrors every
// journal entry into PostgreSQL for durable audit; the in-memory journal
// remains the source of truth for balances.
type JournalArchiver struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewJournalArchiver creates a new JournalArchiver.
func NewJournalArchiver(pool *pgxpool.Pool, retrier *Retrier) *JournalArchiver {
	return &JournalArchiver{
		pool:    pool,
		retrier: retrier,
	}
}

const insertArchiveEntry = `
INSERT INTO journal_archive (
	id, user_id, kind, amount, currency, resulting_balance, tag, metadata, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`

// Archive writes one journal entry. Conflicting IDs are ignored so a retried
// ledger operation never duplicates an archive row.
func (a *JournalArchiver) Archive(ctx context.Context, tx *domain.Transaction) error {
	var metadata []byte
	if tx.Metadata != nil {
		var err error
		metadata, err = json.Marshal(tx.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	operation := func() error {
		_, err := a.pool.Exec(ctx, insertArchiveEntry,
			tx.ID,
			tx.UserID,
			string(tx.Kind),
			tx.Amount,
			tx.Currency,
			tx.ResultingBalance,
			string(tx.Tag),
			metadata,
			tx.CreatedAt,
		)
		return err
	}

	if a.retrier != nil {
		return a.retrier.Retry(ctx, operation)
	}
	return operation()
}

// ListByUser returns archived entries for a user, most recent first.
func (a *JournalArchiver) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.pool.Query(ctx, `
SELECT id, user_id, kind, amount, currency, resulting_balance, tag, metadata, created_at
FROM journal_archive
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Transaction
	for rows.Next() {
		var (
			tx       domain.Transaction
			kind     string
			tag      string
			metadata []byte
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &kind, &tx.Amount, &tx.Currency, &tx.ResultingBalance, &tag, &metadata, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Kind = domain.TransactionKind(kind)
		tx.Tag = domain.TransactionTag(tag)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		entries = append(entries, &tx)
	}

	return entries, rows.Err()
}
