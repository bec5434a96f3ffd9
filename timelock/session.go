package timelock

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/vm"
)

// Session applies timelock calls on behalf of a single account
type Session struct {
	contract vm.BoundContract
	From     common.Address
}

func NewSession(backend vm.Backend, timelock, from common.Address) *Session {
	return &Session{
		contract: vm.BoundContract{Backend: backend, Address: timelock, ABI: ABI},
		From:     from,
	}
}

// Queue schedules op and returns its fingerprint
func (s *Session) Queue(op Operation) (common.Hash, error) {
	out, _, err := s.contract.Transact(s.From, nil, "queueTransaction", operationValues(op)...)
	if err != nil {
		return common.Hash{}, err
	}

	return common.Hash(custody.Arg[[32]byte](out, 0)), nil
}

func (s *Session) Cancel(op Operation) error {
	_, _, err := s.contract.Transact(s.From, nil, "cancelTransaction", operationValues(op)...)

	return err
}

// Execute runs a queued operation and returns what the target returned
func (s *Session) Execute(op Operation) ([]byte, error) {
	out, _, err := s.contract.Transact(s.From, nil, "executeTransaction", operationValues(op)...)
	if err != nil {
		return nil, err
	}

	return custody.Arg[[]byte](out, 0), nil
}

func (s *Session) Delay() (time.Duration, error) {
	out, err := s.contract.Call(s.From, "delay")
	if err != nil {
		return 0, err
	}

	return time.Duration(custody.Arg[*big.Int](out, 0).Int64()) * time.Second, nil
}

func (s *Session) IsQueued(fingerprint common.Hash) (bool, error) {
	out, err := s.contract.Call(s.From, "isQueued", fingerprint)
	if err != nil {
		return false, err
	}

	return custody.Arg[bool](out, 0), nil
}

func (s *Session) HasRole(role common.Hash, account common.Address) (bool, error) {
	out, err := s.contract.Call(s.From, "hasRole", role, account)
	if err != nil {
		return false, err
	}

	return custody.Arg[bool](out, 0), nil
}

// QueueCall encodes the queuing of op for submission through another contract
func QueueCall(timelock common.Address, op Operation) custody.Call {
	return custody.Call{Target: timelock, Data: custody.MustPack(ABI, "queueTransaction", operationValues(op)...)}
}

// CancelCall encodes the cancellation of op
func CancelCall(timelock common.Address, op Operation) custody.Call {
	return custody.Call{Target: timelock, Data: custody.MustPack(ABI, "cancelTransaction", operationValues(op)...)}
}

// ExecuteCall encodes the execution of op
func ExecuteCall(timelock common.Address, op Operation) custody.Call {
	return custody.Call{Target: timelock, Data: custody.MustPack(ABI, "executeTransaction", operationValues(op)...)}
}

// UpdateDelay returns an operation that sets the delay of the timelock at self
func UpdateDelay(self common.Address, delay time.Duration, eta uint64) Operation {
	return Operation{
		Target:    self,
		Signature: "updateDelay(uint256)",
		Data:      custody.MustPack(ABI, "updateDelay", seconds(delay))[4:],
		ETA:       eta,
	}
}

func operationValues(op Operation) []any {
	return []any{
		op.Target,
		custody.CallValue(op.Value),
		op.Signature,
		op.Data,
		new(big.Int).SetUint64(op.ETA),
	}
}
