package application

// PaymentCommand is a merchant's request to authorize a card payment.
// It is transient and never persisted as-is.
type PaymentCommand struct {
	CardNumber  string
	ExpiryMonth int
	ExpiryYear  int
	Cvv         string
	Currency    string
	Amount      int64
}
