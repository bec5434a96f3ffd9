package ledger

import "github.com/sig-0/go-custody"

var (
	ErrBlacklisted = custody.NewError(custody.ErrUnauthorized, "ledger: account is blacklisted")

	ErrPaused                = custody.NewError(custody.ErrStateConflict, "ledger: paused")
	ErrNotPaused             = custody.NewError(custody.ErrStateConflict, "ledger: not paused")
	ErrAlreadyBlacklisted    = custody.NewError(custody.ErrStateConflict, "ledger: account already blacklisted")
	ErrNotBlacklisted        = custody.NewError(custody.ErrStateConflict, "ledger: account not blacklisted")
	ErrInsufficientBalance   = custody.NewError(custody.ErrStateConflict, "ledger: amount exceeds balance")
	ErrInsufficientAllowance = custody.NewError(custody.ErrStateConflict, "ledger: amount exceeds allowance")

	ErrZeroAddress = custody.NewError(custody.ErrValidation, "ledger: zero address")
	ErrOverflow    = custody.NewError(custody.ErrValidation, "ledger: amount out of uint256 range")
	ErrMalformed   = custody.NewError(custody.ErrValidation, "ledger: malformed token amount")
	ErrPrecision   = custody.NewError(custody.ErrValidation, "ledger: amount has more fractional digits than the token")
)
