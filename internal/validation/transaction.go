package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

const (
	maxDescriptionLength = 500
	maxCategoryLength    = 100
	maxAccountLength     = 100
)

// ValidateCreateTransaction validates a transaction submitted for storage.
// Ledger semantics (type, amount sign, variant payload) are checked by the impact calculator;
// this covers the request-level constraints around them.
//
// Rules:
//   - id: optional, must be a valid UUID if provided
//   - type: required
//   - paymentMethod.id: required except for transfers, at most 100 characters
//   - description: at most 500 characters
//   - category: at most 100 characters
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(tx ledger.Transaction) error {
	errors := make(map[string]string)

	if tx.ID != "" {
		if err := ValidateUUID(tx.ID); err != nil {
			errors["id"] = err.Error()
		}
	}

	if strings.TrimSpace(string(tx.Type)) == "" {
		errors["type"] = "type is required"
	}

	switch account := strings.TrimSpace(tx.PaymentMethod.ID); {
	case account == "" && tx.Type != ledger.Transfer:
		errors["paymentMethod.id"] = "payment method is required"
	case len(account) > maxAccountLength:
		errors["paymentMethod.id"] = fmt.Sprintf("payment method must be at most %d characters", maxAccountLength)
	}

	if len(tx.Description) > maxDescriptionLength {
		errors["description"] = fmt.Sprintf("description must be at most %d characters", maxDescriptionLength)
	}

	if len(tx.Category) > maxCategoryLength {
		errors["category"] = fmt.Sprintf("category must be at most %d characters", maxCategoryLength)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
