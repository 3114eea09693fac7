package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
)

// ParseTransactionFilter extracts and validates a transaction filter from query parameters.
//
// Validation rules:
//   - type: comma-separated list of registered transaction types
//   - start_date/end_date: YYYY-MM-DD or RFC3339, both inclusive
//   - start_date must not be after end_date
//
// All parameters are optional; an empty filter matches every stored transaction.
func ParseTransactionFilter(registry *ledger.Registry, typeParam, startDateParam, endDateParam string) (model.TransactionFilter, error) {
	var filter model.TransactionFilter

	// Parse types (comma-separated)
	if typeParam != "" {
		for _, raw := range strings.Split(typeParam, ",") {
			t := ledger.TransactionType(strings.TrimSpace(strings.ToLower(raw)))
			if t == "" {
				continue
			}
			if _, err := registry.Lookup(t); err != nil {
				return model.TransactionFilter{}, err
			}
			filter.Types = append(filter.Types, t)
		}
	}

	// Parse start_date
	if startDateParam != "" {
		startTime, err := parseFilterTime(startDateParam)
		if err != nil {
			return model.TransactionFilter{}, fmt.Errorf("invalid start_date format: %w", err)
		}
		filter.StartDate = startTime
	}

	// Parse end_date
	if endDateParam != "" {
		endTime, err := parseFilterTime(endDateParam)
		if err != nil {
			return model.TransactionFilter{}, fmt.Errorf("invalid end_date format: %w", err)
		}
		filter.EndDate = endTime
	}

	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() && filter.StartDate.After(filter.EndDate) {
		return model.TransactionFilter{}, fmt.Errorf("%w: start_date %s is after end_date %s",
			apperrors.ErrInvalidDateRange, startDateParam, endDateParam)
	}

	return filter, nil
}

// parseFilterTime parses date strings for filter parameters.
// Accepts YYYY-MM-DD and RFC3339; the result is in UTC.
func parseFilterTime(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
