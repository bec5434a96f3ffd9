package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/vm"
)

// Session applies wallet calls on behalf of a single account
type Session struct {
	contract vm.BoundContract
	From     common.Address
}

func NewSession(backend vm.Backend, wallet, from common.Address) *Session {
	return &Session{
		contract: vm.BoundContract{Backend: backend, Address: wallet, ABI: ABI},
		From:     from,
	}
}

// Submit proposes a call and returns its transaction index
func (s *Session) Submit(call custody.Call) (uint64, error) {
	return s.submit("submitTransaction", call)
}

// SubmitAndConfirm proposes a call and confirms it in the same transaction
func (s *Session) SubmitAndConfirm(call custody.Call) (uint64, error) {
	return s.submit("submitAndConfirmTransaction", call)
}

func (s *Session) Confirm(index uint64) error {
	_, _, err := s.contract.Transact(s.From, nil, "confirmTransaction", toBig(index))

	return err
}

// BatchConfirm confirms what it can of indexes and returns how many it confirmed
func (s *Session) BatchConfirm(indexes ...uint64) (uint64, error) {
	out, _, err := s.contract.Transact(s.From, nil, "batchConfirmTransactions", toBigs(indexes))
	if err != nil {
		return 0, err
	}

	return custody.Arg[*big.Int](out, 0).Uint64(), nil
}

func (s *Session) Revoke(index uint64) error {
	_, _, err := s.contract.Transact(s.From, nil, "revokeConfirmation", toBig(index))

	return err
}

// Execute runs an approved transaction and returns what the invoked call returned
func (s *Session) Execute(index uint64) ([]byte, error) {
	out, _, err := s.contract.Transact(s.From, nil, "executeTransaction", toBig(index))
	if err != nil {
		return nil, err
	}

	return custody.Arg[[]byte](out, 0), nil
}

// Deposit sends native value to the wallet
func (s *Session) Deposit(value *big.Int) error {
	_, err := s.contract.Backend.Transact(s.From, s.contract.Address, value, nil)

	return err
}

func (s *Session) Owners() ([]common.Address, error) {
	out, err := s.contract.Call(s.From, "getOwners")
	if err != nil {
		return nil, err
	}

	return custody.Arg[[]common.Address](out, 0), nil
}

func (s *Session) Required() (uint64, error) {
	out, err := s.contract.Call(s.From, "required")
	if err != nil {
		return 0, err
	}

	return custody.Arg[*big.Int](out, 0).Uint64(), nil
}

func (s *Session) TransactionCount() (uint64, error) {
	out, err := s.contract.Call(s.From, "getTransactionCount")
	if err != nil {
		return 0, err
	}

	return custody.Arg[*big.Int](out, 0).Uint64(), nil
}

func (s *Session) Transaction(index uint64) (Transaction, error) {
	out, err := s.contract.Call(s.From, "getTransaction", toBig(index))
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Target:        custody.Arg[common.Address](out, 0),
		Value:         custody.Arg[*big.Int](out, 1),
		Data:          custody.Arg[[]byte](out, 2),
		Executed:      custody.Arg[bool](out, 3),
		Confirmations: custody.Arg[*big.Int](out, 4).Uint64(),
	}, nil
}

func (s *Session) Status(index uint64) (Status, error) {
	out, err := s.contract.Call(s.From, "getTransactionStatus", toBig(index))
	if err != nil {
		return Status{}, err
	}

	return Status{
		Executed:      custody.Arg[bool](out, 0),
		Confirmations: custody.Arg[*big.Int](out, 1).Uint64(),
		Executable:    custody.Arg[bool](out, 2),
	}, nil
}

func (s *Session) IsConfirmed(index uint64, owner common.Address) (bool, error) {
	out, err := s.contract.Call(s.From, "isConfirmed", toBig(index), owner)
	if err != nil {
		return false, err
	}

	return custody.Arg[bool](out, 0), nil
}

// BatchStatus reports executed flags and confirmation counts; unknown indexes report false and zero
func (s *Session) BatchStatus(indexes ...uint64) ([]bool, []uint64, error) {
	out, err := s.contract.Call(s.From, "batchGetTransactionStatus", toBigs(indexes))
	if err != nil {
		return nil, nil, err
	}

	raw := custody.Arg[[]*big.Int](out, 1)
	confirmations := make([]uint64, len(raw))

	for i, n := range raw {
		confirmations[i] = n.Uint64()
	}

	return custody.Arg[[]bool](out, 0), confirmations, nil
}

func (s *Session) submit(method string, call custody.Call) (uint64, error) {
	out, _, err := s.contract.Transact(s.From, nil, method, call.Target, custody.CallValue(call.Value), call.Data)
	if err != nil {
		return 0, err
	}

	return custody.Arg[*big.Int](out, 0).Uint64(), nil
}

// AddOwnerCall encodes an owner addition for submission to the wallet at self
func AddOwnerCall(self, owner common.Address) custody.Call {
	return custody.Call{Target: self, Data: custody.MustPack(ABI, "addOwner", owner)}
}

// RemoveOwnerCall encodes an owner removal for submission to the wallet at self
func RemoveOwnerCall(self, owner common.Address) custody.Call {
	return custody.Call{Target: self, Data: custody.MustPack(ABI, "removeOwner", owner)}
}

// ReplaceOwnerCall encodes an owner replacement for submission to the wallet at self
func ReplaceOwnerCall(self, owner, newOwner common.Address) custody.Call {
	return custody.Call{Target: self, Data: custody.MustPack(ABI, "replaceOwner", owner, newOwner)}
}

// ChangeRequirementCall encodes a requirement change for submission to the wallet at self
func ChangeRequirementCall(self common.Address, required uint64) custody.Call {
	return custody.Call{Target: self, Data: custody.MustPack(ABI, "changeRequirement", toBig(required))}
}
