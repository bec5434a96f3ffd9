package ledger

import (
	"math/big"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Scale converts whole tokens to base units
func Scale(tokens *big.Int) *big.Int {
	return decimal.NewFromBigInt(tokens, Decimals).BigInt()
}

// FormatUnits renders base units as a decimal token amount, e.g. 1500000000000000000 as "1.5"
func FormatUnits(units *big.Int) string {
	return decimal.NewFromBigInt(units, -Decimals).String()
}

// ParseUnits converts a decimal token amount to base units
func ParseUnits(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "parse %q: %v", s, err)
	}

	if d.IsNegative() {
		return nil, errors.Wrapf(ErrMalformed, "negative amount %q", s)
	}

	units := d.Shift(Decimals)
	if !units.Equal(units.Truncate(0)) {
		return nil, errors.Wrapf(ErrPrecision, "%q", s)
	}

	return units.BigInt(), nil
}
