package testdata

// Test cards understood by the acquiring bank simulator. The last digit
// decides the outcome: odd authorizes, even declines, zero makes the bank
// answer 503.
type TestCard struct {
	CardNumber  string
	Cvv         string
	ExpiryMonth int
	ExpiryYear  int
	Description string
}

var (
	AuthorizedCard = TestCard{
		CardNumber:  "2222405343248877",
		Cvv:         "123",
		ExpiryMonth: 4,
		ExpiryYear:  2030,
		Description: "Happy path card",
	}

	DeclinedCard = TestCard{
		CardNumber:  "2222405343248112",
		Cvv:         "456",
		ExpiryMonth: 1,
		ExpiryYear:  2031,
		Description: "Card the bank declines",
	}

	UnavailableCard = TestCard{
		CardNumber:  "2222405343248870",
		Cvv:         "789",
		ExpiryMonth: 9,
		ExpiryYear:  2030,
		Description: "Bank answers 503",
	}

	ExpiredCard = TestCard{
		CardNumber:  "5105105105105101",
		Cvv:         "321",
		ExpiryMonth: 3,
		ExpiryYear:  2020,
		Description: "Expired card, rejected before the bank",
	}
)
