package enums

import "fmt"

// TransactionType describes the allowed values for paypal_transactions.transaction_type.
type TransactionType string

const (
	TransactionTypeSubscriptionCreated   TransactionType = "subscription_created"
	TransactionTypeSubscriptionCancelled TransactionType = "subscription_cancelled"
	TransactionTypePaymentCompleted      TransactionType = "payment_completed"
	TransactionTypePaymentFailed         TransactionType = "payment_failed"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeSubscriptionCreated,
	TransactionTypeSubscriptionCancelled,
	TransactionTypePaymentCompleted,
	TransactionTypePaymentFailed,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts the raw string to TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
