package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
)

const transactionColumns = `
	id, type, amount, payment_method_id, payment_method_name, details,
	date, description, category, created_at
`

// TransactionRepository provides data access methods for the transaction table.
// Variant payloads are persisted in the details column through a DetailsCodec.
type TransactionRepository struct {
	db    *sql.DB
	tx    *sql.Tx
	codec *DetailsCodec
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
// A nil codec stores details as plain JSON.
func NewTransactionRepository(db *sql.DB, codec *DetailsCodec) *TransactionRepository {
	if codec == nil {
		codec = &DetailsCodec{}
	}
	return &TransactionRepository{db: db, codec: codec}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db:    r.db,
		tx:    tx,
		codec: r.codec,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TransactionRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetTransactions retrieves the transactions matching the filter, ordered by date and then insertion time.
// Transactions without a date sort first. Returns an empty slice if nothing matches.
func (r *TransactionRepository) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.StoredTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE 1=1`
	var args []any

	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		query += " AND type IN (" + strings.Join(placeholders, ",") + ")"
	}

	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate.Format("2006-01-02"))
	}

	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate.Format("2006-01-02"))
	}

	query += " ORDER BY date ASC, created_at ASC, id ASC"

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.StoredTransaction{}

	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single transaction by ID.
// Returns ErrTransactionNotFound if no record with the given ID exists.
func (r *TransactionRepository) GetTransaction(ctx context.Context, transactionID string) (model.StoredTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ?`

	t, err := r.scanTransaction(r.getQuerier().QueryRowContext(ctx, query, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoredTransaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.StoredTransaction{}, err
	}
	return t, nil
}

// InsertTransaction stores a transaction.
// Returns ErrDuplicateEntry if a transaction with the same ID already exists.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t ledger.Transaction) error {
	details, err := r.codec.Encode(t)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO "transaction" (` + transactionColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err = r.getQuerier().ExecContext(ctx, query,
		t.ID,
		string(t.Type),
		t.Amount,
		t.PaymentMethod.ID,
		nullString(t.PaymentMethod.Name),
		details,
		nullDate(t.Date),
		nullString(t.Description),
		nullString(t.Category),
		time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicateEntry, t.ID)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// InsertTransactions stores a batch of transactions atomically: either every row is written or none is.
func (r *TransactionRepository) InsertTransactions(ctx context.Context, txs []ledger.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	if r.tx != nil {
		return r.insertAll(ctx, txs)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.WithTx(tx).insertAll(ctx, txs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) insertAll(ctx context.Context, txs []ledger.Transaction) error {
	for _, t := range txs {
		if err := r.InsertTransaction(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// existingIDsChunk keeps IN lists below SQLite's bound-parameter limit.
const existingIDsChunk = 500

// ExistingIDs returns the subset of ids that are already stored.
func (r *TransactionRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	for lo := 0; lo < len(ids); lo += existingIDsChunk {
		chunk := ids[lo:min(lo+existingIDsChunk, len(ids))]

		placeholders := make([]string, len(chunk))
		args := make([]any, len(chunk))
		for i, id := range chunk {
			placeholders[i] = "?"
			args[i] = id
		}

		query := `SELECT id FROM "transaction" WHERE id IN (` + strings.Join(placeholders, ",") + `)`
		rows, err := r.getQuerier().QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query transaction ids: %w", err)
		}

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan transaction id: %w", err)
			}
			existing[id] = struct{}{}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("error iterating transaction ids: %w", err)
		}
	}

	return existing, nil
}

// DeleteTransaction removes a transaction by its ID.
// Returns ErrTransactionNotFound if no record with the given ID exists.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	query := `DELETE FROM "transaction" WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}

// CountTransactions returns the number of stored transactions.
func (r *TransactionRepository) CountTransactions(ctx context.Context) (int, error) {
	var count int
	err := r.getQuerier().QueryRowContext(ctx, `SELECT COUNT(*) FROM "transaction"`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *TransactionRepository) scanTransaction(row rowScanner) (model.StoredTransaction, error) {
	var t model.StoredTransaction
	var txType string
	var methodName, details, dateStr, description, category, createdAtStr sql.NullString

	err := row.Scan(
		&t.ID,
		&txType,
		&t.Amount,
		&t.PaymentMethod.ID,
		&methodName,
		&details,
		&dateStr,
		&description,
		&category,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return t, err
	}
	if err != nil {
		return t, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	t.Type = ledger.TransactionType(txType)
	t.PaymentMethod.Name = methodName.String
	t.Description = description.String
	t.Category = category.String

	if dateStr.Valid && dateStr.String != "" {
		t.Date, err = ParseTime(dateStr.String)
		if err != nil {
			return t, fmt.Errorf("failed to parse date: %w", err)
		}
	}

	if createdAtStr.Valid && createdAtStr.String != "" {
		t.CreatedAt, err = ParseTime(createdAtStr.String)
		if err != nil {
			return t, fmt.Errorf("failed to parse created_at: %w", err)
		}
	}

	if err := r.codec.Decode(details, &t.Transaction); err != nil {
		return t, err
	}

	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d time.Time) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format("2006-01-02"), Valid: true}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
