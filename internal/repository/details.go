package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

// encryptedPrefix marks a details column written as a fernet token.
const encryptedPrefix = "fernet:"

// storedDetails is the JSON layout of the transaction.details column.
type storedDetails struct {
	Transfer     *ledger.TransferDetails     `json:"transferDetails,omitempty"`
	LoanGiven    *ledger.LoanGivenDetails    `json:"loanGivenDetails,omitempty"`
	LoanReceived *ledger.LoanReceivedDetails `json:"loanReceivedDetails,omitempty"`
	LoanPayment  *ledger.LoanPaymentDetails  `json:"loanPaymentDetails,omitempty"`
}

// DetailsCodec converts the variant payload of a transaction to and from the details column.
//
// When keys are configured the column is written as a fernet token. The first key encrypts and
// every key is tried on read. Plain JSON rows written before a key was configured stay readable.
type DetailsCodec struct {
	keys []*fernet.Key
}

// NewDetailsCodec builds a codec from a comma-separated list of base64 fernet keys.
// An empty string disables encryption.
func NewDetailsCodec(encodedKeys string) (*DetailsCodec, error) {
	var raw []string
	for _, k := range strings.Split(encodedKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			raw = append(raw, k)
		}
	}
	if len(raw) == 0 {
		return &DetailsCodec{}, nil
	}

	keys, err := fernet.DecodeKeys(raw...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	return &DetailsCodec{keys: keys}, nil
}

// Encrypted reports whether new rows are written encrypted.
func (c *DetailsCodec) Encrypted() bool {
	return len(c.keys) > 0
}

// Encode returns the column value for tx. Transactions without a variant payload store NULL.
func (c *DetailsCodec) Encode(tx ledger.Transaction) (sql.NullString, error) {
	d := storedDetails{
		Transfer:     tx.Transfer,
		LoanGiven:    tx.LoanGiven,
		LoanReceived: tx.LoanReceived,
		LoanPayment:  tx.LoanPayment,
	}
	if d == (storedDetails{}) {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(d)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode transaction details: %w", err)
	}

	if !c.Encrypted() {
		return sql.NullString{String: string(data), Valid: true}, nil
	}

	tok, err := fernet.EncryptAndSign(data, c.keys[0])
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encrypt transaction details: %w", err)
	}
	return sql.NullString{String: encryptedPrefix + string(tok), Valid: true}, nil
}

// Decode fills the variant payload of tx from a column value.
func (c *DetailsCodec) Decode(value sql.NullString, tx *ledger.Transaction) error {
	if !value.Valid || value.String == "" {
		return nil
	}

	data := []byte(value.String)
	if tok, ok := strings.CutPrefix(value.String, encryptedPrefix); ok {
		if !c.Encrypted() {
			return fmt.Errorf("%w: transaction %s has encrypted details but no key is configured",
				apperrors.ErrDataInconsistency, tx.ID)
		}
		// ttl 0 disables the token age check; details never expire.
		data = fernet.VerifyAndDecrypt([]byte(tok), 0, c.keys)
		if data == nil {
			return fmt.Errorf("%w: transaction %s details do not decrypt with the configured keys",
				apperrors.ErrDataInconsistency, tx.ID)
		}
	}

	var d storedDetails
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("%w: transaction %s details: %w", apperrors.ErrDataInconsistency, tx.ID, err)
	}
	tx.Transfer = d.Transfer
	tx.LoanGiven = d.LoanGiven
	tx.LoanReceived = d.LoanReceived
	tx.LoanPayment = d.LoanPayment
	return nil
}
