package paymenttype

import "context"

// Repository manages payment type configurations
type Repository interface {
	Create(ctx context.Context, pt *PaymentType) error
	GetByName(ctx context.Context, name string) (*PaymentType, error)
	Update(ctx context.Context, pt *PaymentType) error
}

// ErrPaymentTypeNotFound indicates a missing payment type configuration
type ErrPaymentTypeNotFound struct {
	Name string
}

func (e ErrPaymentTypeNotFound) Error() string {
	return "payment type not found: " + e.Name
}

// Is implements the errors.Is interface for ErrPaymentTypeNotFound
func (e ErrPaymentTypeNotFound) Is(target error) bool {
	t, ok := target.(ErrPaymentTypeNotFound)
	if !ok {
		return false
	}
	if t.Name == "" {
		return true
	}
	return e.Name == t.Name
}
