// README: Common money value object used across modules.
package types

import "math"

// CurrencyPHP is the only currency the shop settles in.
const CurrencyPHP = "PHP"

// Money holds an amount in minor units (centavos).
type Money struct {
	Amount   int64
	Currency string
}

// PesosToMoney converts a peso amount to centavos, rounding half away from zero.
func PesosToMoney(pesos float64) Money {
	return Money{Amount: int64(math.Round(pesos * 100)), Currency: CurrencyPHP}
}

// Pesos returns the amount in major units.
func (m Money) Pesos() float64 {
	return float64(m.Amount) / 100
}
