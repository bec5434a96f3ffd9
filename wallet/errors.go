package wallet

import "github.com/sig-0/go-custody"

var (
	ErrNotOwner    = custody.NewError(custody.ErrUnauthorized, "wallet: caller is not an owner")
	ErrNotSelf     = custody.NewError(custody.ErrUnauthorized, "wallet: method is only reachable through wallet execution")
	ErrTxNotFound  = custody.NewError(custody.ErrNotFound, "wallet: transaction does not exist")
	ErrOwnerAbsent = custody.NewError(custody.ErrNotFound, "wallet: owner does not exist")

	ErrAlreadyExecuted           = custody.NewError(custody.ErrStateConflict, "wallet: transaction already executed")
	ErrAlreadyConfirmed          = custody.NewError(custody.ErrStateConflict, "wallet: transaction already confirmed by caller")
	ErrNotConfirmed              = custody.NewError(custody.ErrStateConflict, "wallet: transaction not confirmed by caller")
	ErrInsufficientConfirmations = custody.NewError(custody.ErrStateConflict, "wallet: not enough confirmations")
	ErrRequirementViolation      = custody.NewError(custody.ErrStateConflict, "wallet: owner count would fall below requirement")
	ErrReentrantCall             = custody.NewError(custody.ErrStateConflict, "wallet: reentrant execution")

	ErrNoOwners           = custody.NewError(custody.ErrValidation, "wallet: owner list is empty")
	ErrZeroAddress        = custody.NewError(custody.ErrValidation, "wallet: zero address")
	ErrDuplicateOwner     = custody.NewError(custody.ErrValidation, "wallet: duplicate owner")
	ErrInvalidRequirement = custody.NewError(custody.ErrValidation, "wallet: requirement out of range")
	ErrValueOverflow      = custody.NewError(custody.ErrValidation, "wallet: value does not fit in 96 bits")
)
