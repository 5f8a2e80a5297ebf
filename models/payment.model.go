package models

import "strings"

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// ParsePaymentMethod accepts a case-insensitive method name; empty means cash on delivery.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return PaymentCOD, true
	case PaymentCOD, PaymentBankTransfer:
		return m, true
	}
	return "", false
}
