// Package governance wires a quorum wallet, a delay controller and a managed
// ledger into one pipeline: wallet owners approve calls to the timelock,
// the timelock holds the ledger admin role and applies them after the delay.
package governance

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/ledger"
	"github.com/sig-0/go-custody/roles"
	"github.com/sig-0/go-custody/timelock"
	"github.com/sig-0/go-custody/vm"
	"github.com/sig-0/go-custody/wallet"
)

type Option func(*System)

func WithLogger(log *zap.Logger) Option {
	return func(s *System) {
		s.log = log
	}
}

// System is a deployed custody pipeline
type System struct {
	VM       *vm.VM
	Wallet   *wallet.Wallet
	Timelock *timelock.Timelock
	Ledger   *ledger.Ledger

	log *zap.Logger
}

// Deploy validates cfg and deploys the wallet, the timelock and the ledger
// from deployer. The wallet proposes and executes on the timelock, and the
// timelock administers the ledger
func Deploy(v *vm.VM, deployer common.Address, cfg Config, opts ...Option) (*System, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, err
	}

	s := &System{VM: v, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	var err error

	if s.Wallet, err = vm.Deploy(v, deployer, wallet.Builder(cfg.Owners, cfg.Required)); err != nil {
		return nil, errors.Wrap(err, "deploy wallet")
	}

	s.Timelock, err = vm.Deploy(v, deployer, timelock.Builder(timelock.Params{
		Delay:     cfg.Delay,
		Proposers: []common.Address{s.Wallet.Address()},
		Executors: []common.Address{s.Wallet.Address()},
		Admin:     cfg.Admin,
	}))
	if err != nil {
		return nil, errors.Wrap(err, "deploy timelock")
	}

	s.Ledger, err = vm.Deploy(v, deployer, ledger.Builder(ledger.Params{
		Name:          cfg.TokenName,
		Symbol:        cfg.TokenSymbol,
		InitialSupply: cfg.InitialSupply,
		Operator:      cfg.Operator,
		Governance:    s.Timelock.Address(),
	}))
	if err != nil {
		return nil, errors.Wrap(err, "deploy ledger")
	}

	s.log.Info("custody system deployed",
		zap.Stringer("wallet", s.Wallet.Address()),
		zap.Stringer("timelock", s.Timelock.Address()),
		zap.Stringer("ledger", s.Ledger.Address()),
		zap.Uint64("required", cfg.Required),
		zap.Int("owners", len(cfg.Owners)),
		zap.Duration("delay", cfg.Delay),
	)

	return s, nil
}

// LedgerOperation returns a timelock operation calling a ledger method at eta
func (s *System) LedgerOperation(method string, eta uint64, args ...any) timelock.Operation {
	return timelock.Operation{
		Target:    s.Ledger.Address(),
		Signature: ledger.Signature(method),
		Data:      ledger.Arguments(method, args...),
		ETA:       eta,
	}
}

// EarliestETA returns the earliest eta the timelock accepts for an operation queued now
func (s *System) EarliestETA() uint64 {
	return s.VM.Now() + uint64(s.Timelock.Delay().Seconds())
}

// QueueCall is the wallet call that queues op on the timelock
func (s *System) QueueCall(op timelock.Operation) custody.Call {
	return timelock.QueueCall(s.Timelock.Address(), op)
}

// ExecuteCall is the wallet call that executes op on the timelock
func (s *System) ExecuteCall(op timelock.Operation) custody.Call {
	return timelock.ExecuteCall(s.Timelock.Address(), op)
}

// CancelCall is the wallet call that cancels op on the timelock. The wallet
// only succeeds with it once granted the canceller role
func (s *System) CancelCall(op timelock.Operation) custody.Call {
	return timelock.CancelCall(s.Timelock.Address(), op)
}

// Decode resolves the contract and event that produced log
func (s *System) Decode(log *types.Log) (contract, name string, fields map[string]any, err error) {
	switch log.Address {
	case s.Wallet.Address():
		contract = "wallet"
		name, fields, err = custody.DecodeLog(wallet.ABI, log)
	case s.Timelock.Address():
		contract = "timelock"
		name, fields, err = custody.DecodeLog(timelock.ABI, log)
	case s.Ledger.Address():
		contract = "ledger"
		name, fields, err = custody.DecodeLog(ledger.ABI, log)
	default:
		return "", "", nil, errors.Errorf("log of unknown contract %s", log.Address)
	}

	return contract, name, fields, err
}

// GrantRoleOperation returns a timelock operation granting a ledger role at eta
func (s *System) GrantRoleOperation(role common.Hash, account common.Address, eta uint64) timelock.Operation {
	return timelock.Operation{
		Target: s.Ledger.Address(),
		Data:   custody.MustPack(roles.ABI, "grantRole", role, account),
		ETA:    eta,
	}
}
