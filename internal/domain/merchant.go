package domain

// Merchant is the authenticated caller that owns payments.
type Merchant struct {
	ID   string
	Name string
}
