package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentMethod is how a payment was tendered
type PaymentMethod int

const (
	PaymentMethodCash         PaymentMethod = 0
	PaymentMethodCard         PaymentMethod = 1
	PaymentMethodUPI          PaymentMethod = 2
	PaymentMethodBankTransfer PaymentMethod = 3
)

var paymentMethodNames = [...]string{"cash", "card", "upi", "bank_transfer"}

func (m PaymentMethod) String() string {
	if m < 0 || int(m) >= len(paymentMethodNames) {
		return "unknown"
	}
	return paymentMethodNames[m]
}

// ParsePaymentMethod parses cash, card, upi or bank_transfer
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for i, name := range paymentMethodNames {
		if name == s {
			return PaymentMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payment method %q", s)
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := ParsePaymentMethod(v)
		if err != nil {
			return err
		}
		*m = parsed
	case []byte:
		return m.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PaymentMethod", value)
	}
	return nil
}
