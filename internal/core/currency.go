package core

// CurrencyCode is a display-only label stored per user. No conversion
// happens anywhere in the system.
type CurrencyCode string

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	JPY CurrencyCode = "JPY"
	AUD CurrencyCode = "AUD"
	CAD CurrencyCode = "CAD"
	INR CurrencyCode = "INR"
)

// DefaultCurrency is used until the user picks one in settings.
const DefaultCurrency = USD

var currencySymbols = map[CurrencyCode]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	JPY: "¥",
	AUD: "A$",
	CAD: "C$",
	INR: "₹",
}

func (c CurrencyCode) Valid() bool {
	_, ok := currencySymbols[c]
	return ok
}

// Symbol returns the display symbol, falling back to the default
// currency's symbol for unknown codes.
func (c CurrencyCode) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return currencySymbols[DefaultCurrency]
}

// FormatAmount renders an amount with the currency symbol and en-US
// grouping, e.g. "€1,234.50".
func FormatAmount(m Money, c CurrencyCode) string {
	if m.Cents < 0 {
		return "-" + c.Symbol() + m.Abs().Grouped()
	}
	return c.Symbol() + m.Grouped()
}
