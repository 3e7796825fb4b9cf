package ports

import "github.com/shopspring/decimal"

// Money is the monetary type used across service inputs.
type Money = decimal.Decimal
