package apperrors

import "errors"

// Ledger classification errors are deterministic: the same transaction always produces
// the same error, so none of them are retryable.
var (
	// ErrUnknownTransactionType indicates a type tag that is absent from the transaction type registry.
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrInvalidTransactionKind indicates the impact calculator was asked to dispatch on a
	// transaction whose type it cannot handle. It is always returned together with
	// ErrUnknownTransactionType.
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")

	// ErrInvalidTransactionPayload indicates a required variant sub-object or field is missing.
	ErrInvalidTransactionPayload = errors.New("invalid transaction payload")

	// ErrInvalidAmount indicates a negative, non-finite or fractional minor-unit amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidAggregationMode indicates an aggregation mode other than fail-fast or collect-errors.
	ErrInvalidAggregationMode = errors.New("invalid aggregation mode")
)

// Domain entity errors represent missing records in the transaction store.
var (
	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSnapshotNotFound indicates that no metrics snapshot has been recorded yet.
	ErrSnapshotNotFound = errors.New("metrics snapshot not found")

	// ErrDuplicateEntry indicates that a transaction with the same ID already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Request validation errors.
var (
	// ErrInvalidDateRange indicates that the start date is after the end date.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidRequestBody indicates a request body that could not be decoded.
	ErrInvalidRequestBody = errors.New("invalid request body")

	// ErrEmptyBatch indicates that an import or compute request carried no transactions.
	ErrEmptyBatch = errors.New("transaction batch cannot be empty")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToDeleteTransaction    = errors.New("failed to delete transaction")
	ErrFailedToImportTransactions   = errors.New("failed to import transactions")
	ErrFailedToComputeMetrics       = errors.New("failed to compute metrics")
	ErrFailedToComputeImpact        = errors.New("failed to compute transaction impact")
	ErrFailedToRetrieveSnapshot     = errors.New("failed to retrieve metrics snapshot")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies or corruption in stored data.
var (
	// ErrDataInconsistency indicates a stored record could not be turned back into a transaction
	// (e.g., its encrypted details no longer decrypt with the configured key).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
