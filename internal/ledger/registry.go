package ledger

import (
	"fmt"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
)

// TypeDescriptor declares the accounting semantics of a transaction type.
// Form layers use RequiresTwoAccounts and RequiresCounterpartyRef to decide which
// optional inputs to render.
type TypeDescriptor struct {
	Type                    TransactionType `json:"type"`
	Label                   string          `json:"label"`
	AffectsIncome           bool            `json:"affectsIncome"`
	AffectsExpense          bool            `json:"affectsExpense"`
	CreatesAsset            bool            `json:"createsAsset"`
	CreatesLiability        bool            `json:"createsLiability"`
	ReducesAsset            bool            `json:"reducesAsset"`
	ReducesLiability        bool            `json:"reducesLiability"`
	RequiresTwoAccounts     bool            `json:"requiresTwoAccounts"`
	RequiresCounterpartyRef bool            `json:"requiresCounterpartyRef"`
}

// Registry is the immutable catalog of transaction types.
type Registry struct {
	order       []TransactionType
	descriptors map[TransactionType]TypeDescriptor
}

// NewRegistry builds the catalog of the seven built-in transaction types.
// Adding a type means extending this table and the Calculator dispatch together.
func NewRegistry() *Registry {
	descriptors := []TypeDescriptor{
		{Type: Income, Label: "Income", AffectsIncome: true},
		{Type: Expense, Label: "Expense", AffectsExpense: true},
		{Type: Transfer, Label: "Transfer", RequiresTwoAccounts: true},
		{Type: LoanGiven, Label: "Loan given", CreatesAsset: true, RequiresCounterpartyRef: true},
		{Type: LoanReceived, Label: "Loan received", CreatesLiability: true, RequiresCounterpartyRef: true},
		{Type: LoanPaymentReceived, Label: "Loan payment received", ReducesAsset: true, RequiresCounterpartyRef: true},
		{Type: LoanPaymentMade, Label: "Loan payment made", ReducesLiability: true, RequiresCounterpartyRef: true},
	}

	r := &Registry{
		order:       make([]TransactionType, 0, len(descriptors)),
		descriptors: make(map[TransactionType]TypeDescriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		r.order = append(r.order, d.Type)
		r.descriptors[d.Type] = d
	}
	return r
}

// Lookup returns the descriptor for t, or ErrUnknownTransactionType.
func (r *Registry) Lookup(t TransactionType) (TypeDescriptor, error) {
	d, ok := r.descriptors[t]
	if !ok {
		return TypeDescriptor{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownTransactionType, string(t))
	}
	return d, nil
}

// Types returns every registered type in declaration order.
func (r *Registry) Types() []TransactionType {
	out := make([]TransactionType, len(r.order))
	copy(out, r.order)
	return out
}

// Descriptors returns every descriptor in declaration order.
func (r *Registry) Descriptors() []TypeDescriptor {
	out := make([]TypeDescriptor, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.descriptors[t])
	}
	return out
}
