package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/repository"
)

// parallelThreshold is the batch size from which aggregation is split across shards.
const parallelThreshold = 1024

// LedgerService handles transaction storage and the ledger calculations over stored
// and submitted transactions.
type LedgerService struct {
	transactionRepo *repository.TransactionRepository
	aggregator      *ledger.Aggregator
	shards          int
	log             zerolog.Logger
}

// NewLedgerService creates a new LedgerService with the provided repository and ledger engine.
// shards below 1 disable parallel aggregation.
func NewLedgerService(
	transactionRepo *repository.TransactionRepository,
	aggregator *ledger.Aggregator,
	shards int,
	log zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		transactionRepo: transactionRepo,
		aggregator:      aggregator,
		shards:          shards,
		log:             log.With().Str("component", "ledger_service").Logger(),
	}
}

// Registry returns the transaction type registry the calculator dispatches on.
func (s *LedgerService) Registry() *ledger.Registry {
	return s.aggregator.Calculator().Registry()
}

// TransactionTypes returns the descriptor of every registered transaction type in registration order.
func (s *LedgerService) TransactionTypes() []ledger.TypeDescriptor {
	return s.Registry().Descriptors()
}

// TransactionType returns the descriptor of a single transaction type.
func (s *LedgerService) TransactionType(t ledger.TransactionType) (ledger.TypeDescriptor, error) {
	return s.Registry().Lookup(t)
}

// CreateTransaction validates and stores a transaction. A missing ID is replaced by a new UUID.
// Transactions the calculator rejects are never stored.
func (s *LedgerService) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	if _, err := s.aggregator.Calculator().Compute(tx); err != nil {
		return ledger.Transaction{}, err
	}

	if err := s.transactionRepo.InsertTransaction(ctx, tx); err != nil {
		return ledger.Transaction{}, err
	}

	s.log.Debug().Str("transaction_id", tx.ID).Str("type", string(tx.Type)).Msg("transaction created")
	return tx, nil
}

// GetTransaction retrieves a single stored transaction.
func (s *LedgerService) GetTransaction(ctx context.Context, transactionID string) (model.StoredTransaction, error) {
	return s.transactionRepo.GetTransaction(ctx, transactionID)
}

// ListTransactions retrieves the stored transactions matching the filter.
func (s *LedgerService) ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.StoredTransaction, error) {
	return s.transactionRepo.GetTransactions(ctx, filter)
}

// DeleteTransaction removes a stored transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, transactionID string) error {
	if err := s.transactionRepo.DeleteTransaction(ctx, transactionID); err != nil {
		return err
	}
	s.log.Debug().Str("transaction_id", transactionID).Msg("transaction deleted")
	return nil
}

// TransactionImpact computes the impact vector of a stored transaction.
func (s *LedgerService) TransactionImpact(ctx context.Context, transactionID string) (model.TransactionImpact, error) {
	stored, err := s.transactionRepo.GetTransaction(ctx, transactionID)
	if err != nil {
		return model.TransactionImpact{}, err
	}

	impact, err := s.aggregator.Calculator().Compute(stored.Transaction)
	if err != nil {
		return model.TransactionImpact{}, err
	}

	return model.TransactionImpact{
		Transaction: stored.Transaction,
		Impact:      impact,
	}, nil
}

// Metrics aggregates the stored transactions matching the filter.
func (s *LedgerService) Metrics(ctx context.Context, filter model.TransactionFilter, mode ledger.Mode) (model.MetricsResult, error) {
	stored, err := s.transactionRepo.GetTransactions(ctx, filter)
	if err != nil {
		return model.MetricsResult{}, err
	}
	return s.ComputeBatch(ctx, unwrapStored(stored), mode)
}

// ComputeBatch aggregates a batch of transactions without touching the store.
// Batches of parallelThreshold transactions or more are split across the configured shards;
// the result is identical to a sequential fold.
func (s *LedgerService) ComputeBatch(ctx context.Context, txs []ledger.Transaction, mode ledger.Mode) (model.MetricsResult, error) {
	var (
		metrics ledger.AggregateMetrics
		failed  []ledger.TransactionError
		err     error
	)

	if s.shards > 1 && len(txs) >= parallelThreshold {
		metrics, failed, err = s.aggregator.AggregateParallel(ctx, txs, mode, s.shards)
	} else {
		metrics, failed, err = s.aggregator.Aggregate(txs, mode)
	}
	if err != nil {
		return model.MetricsResult{}, err
	}

	if len(failed) > 0 {
		s.log.Warn().Int("skipped", len(failed)).Int("total", len(txs)).Msg("transactions skipped during aggregation")
	}

	if failed == nil {
		failed = []ledger.TransactionError{}
	}
	return model.MetricsResult{
		Mode:    mode,
		Metrics: metrics,
		Errors:  failed,
	}, nil
}

// Summary groups the stored transactions matching the filter by type.
func (s *LedgerService) Summary(ctx context.Context, filter model.TransactionFilter) (map[ledger.TransactionType]ledger.TypeSummary, error) {
	stored, err := s.transactionRepo.GetTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ledger.SummaryByType(unwrapStored(stored)), nil
}

// ImportTransactions validates and stores a batch of transactions in a single database transaction.
//
// In fail-fast mode the first invalid transaction aborts the import and nothing is stored.
// In collect-errors mode invalid transactions are skipped and reported, and the rest are stored.
// A transaction whose ID repeats an earlier record of the batch or a stored transaction is
// invalid with ErrDuplicateEntry. Transactions without an ID are assigned a new UUID.
func (s *LedgerService) ImportTransactions(ctx context.Context, txs []ledger.Transaction, mode ledger.Mode) (model.ImportResult, error) {
	if len(txs) == 0 {
		return model.ImportResult{}, apperrors.ErrEmptyBatch
	}
	if _, err := ledger.ParseMode(string(mode)); err != nil || mode == "" {
		return model.ImportResult{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidAggregationMode, string(mode))
	}

	pending := make([]ledger.Transaction, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		pending[i] = tx
	}

	failed, err := s.CheckImport(ctx, pending)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToImportTransactions, err)
	}
	if len(failed) > 0 && mode != ledger.ModeCollectErrors {
		return model.ImportResult{}, failed[0]
	}

	rejected := make(map[int]bool, len(failed))
	for _, f := range failed {
		rejected[f.Index] = true
	}
	valid := make([]ledger.Transaction, 0, len(pending)-len(failed))
	for i, tx := range pending {
		if !rejected[i] {
			valid = append(valid, tx)
		}
	}

	if err := s.transactionRepo.InsertTransactions(ctx, valid); err != nil {
		return model.ImportResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToImportTransactions, err)
	}

	s.log.Info().
		Int("imported", len(valid)).
		Int("skipped", len(failed)).
		Str("mode", string(mode)).
		Msg("transactions imported")

	return model.ImportResult{
		Imported: len(valid),
		Failed:   failed,
	}, nil
}

// CheckImport lists, in input order, the transactions of txs that ImportTransactions would
// reject: those the calculator rejects and those whose ID was already taken by an earlier
// accepted record or by a stored transaction. Records without an ID are only checked by the
// calculator.
func (s *LedgerService) CheckImport(ctx context.Context, txs []ledger.Transaction) ([]ledger.TransactionError, error) {
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		if tx.ID != "" {
			ids = append(ids, tx.ID)
		}
	}
	stored, err := s.transactionRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	calculator := s.aggregator.Calculator()
	seen := make(map[string]struct{}, len(txs))
	failed := []ledger.TransactionError{}

	for i, tx := range txs {
		_, err := calculator.Compute(tx)
		if err == nil && tx.ID != "" {
			_, inBatch := seen[tx.ID]
			_, inStore := stored[tx.ID]
			if inBatch || inStore {
				err = fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicateEntry, tx.ID)
			}
		}
		if err != nil {
			failed = append(failed, ledger.TransactionError{Index: i, TransactionID: tx.ID, Err: err})
			continue
		}
		if tx.ID != "" {
			seen[tx.ID] = struct{}{}
		}
	}

	return failed, nil
}

func unwrapStored(stored []model.StoredTransaction) []ledger.Transaction {
	txs := make([]ledger.Transaction, len(stored))
	for i, st := range stored {
		txs[i] = st.Transaction
	}
	return txs
}
