package payment

// CustomerType classifies customers by the national document they carry.
type CustomerType string

const (
	// CustomerIndividual identifies a natural person (11-digit CPF document).
	CustomerIndividual CustomerType = "individual"
	// CustomerCorporate identifies a company (14-digit CNPJ document).
	CustomerCorporate CustomerType = "corporate"
)

// Valid reports whether the customer type is part of the closed enumeration.
func (t CustomerType) Valid() bool {
	return t == CustomerIndividual || t == CustomerCorporate
}

// TransactionMethod is the payment method requested for a transaction.
type TransactionMethod string

const (
	MethodCredit TransactionMethod = "credit_card"
	MethodDebit  TransactionMethod = "debit_card"
)

// TransactionStatus is the lifecycle state of a transaction.
//
// Transitions:
//
//	PENDING → PROCESSED | FAILED (terminal once non-pending)
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusProcessed TransactionStatus = "processed"
	StatusFailed    TransactionStatus = "failed"
)

// PayableStatus is the release state of a merchant receivable.
type PayableStatus string

const (
	// PayableWaitingFunds marks an amount held until its payment date.
	PayableWaitingFunds PayableStatus = "waiting_funds"
	// PayablePaid marks an amount already released to the available balance.
	PayablePaid PayableStatus = "paid"
)

// Currency is an ISO 4217 currency code accepted on transactions.
type Currency string

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyAUD Currency = "AUD"
	CurrencyCAD Currency = "CAD"
	CurrencyCHF Currency = "CHF"
	CurrencyCNY Currency = "CNY"
	CurrencySEK Currency = "SEK"
	CurrencyNZD Currency = "NZD"
)

// DefaultCurrency is applied when a transaction request omits the currency.
const DefaultCurrency = CurrencyBRL

var knownCurrencies = map[Currency]struct{}{
	CurrencyBRL: {}, CurrencyUSD: {}, CurrencyEUR: {}, CurrencyGBP: {},
	CurrencyJPY: {}, CurrencyAUD: {}, CurrencyCAD: {}, CurrencyCHF: {},
	CurrencyCNY: {}, CurrencySEK: {}, CurrencyNZD: {},
}

// Valid reports whether the currency code is accepted.
func (c Currency) Valid() bool {
	_, ok := knownCurrencies[c]
	return ok
}
