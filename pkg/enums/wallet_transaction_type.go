package enums

import "fmt"

// WalletTransactionType labels an immutable wallet ledger entry.
type WalletTransactionType string

const (
	WalletTransactionCreditBooking   WalletTransactionType = "CREDITO_AGENDAMENTO"
	WalletTransactionDebitWithdrawal WalletTransactionType = "DEBITO_SAQUE"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionCreditBooking,
	WalletTransactionDebitWithdrawal,
}

// String implements fmt.Stringer.
func (t WalletTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (t WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
