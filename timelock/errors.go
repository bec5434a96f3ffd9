package timelock

import "github.com/sig-0/go-custody"

var (
	ErrNotSelf = custody.NewError(custody.ErrUnauthorized, "timelock: method is only reachable through timelock execution")

	ErrNotQueued = custody.NewError(custody.ErrNotFound, "timelock: transaction is not queued")

	ErrAlreadyQueued = custody.NewError(custody.ErrStateConflict, "timelock: transaction already queued")
	ErrReentrantCall = custody.NewError(custody.ErrStateConflict, "timelock: reentrant execution")

	ErrEtaTooEarly = custody.NewError(custody.ErrTiming, "timelock: estimated execution time must satisfy delay")
	ErrNotReady    = custody.NewError(custody.ErrTiming, "timelock: transaction has not surpassed time lock")
	ErrStale       = custody.NewError(custody.ErrTiming, "timelock: transaction is stale")

	ErrDelayOutOfRange = custody.NewError(custody.ErrValidation, "timelock: delay out of range")
	ErrEtaOutOfRange   = custody.NewError(custody.ErrValidation, "timelock: eta does not fit in 64 bits")
	ErrValueOverflow   = custody.NewError(custody.ErrValidation, "timelock: value out of uint256 range")
	ErrZeroAddress     = custody.NewError(custody.ErrValidation, "timelock: zero address")
)
