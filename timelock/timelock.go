// Package timelock implements the delay controller: calls are queued under
// the fingerprint of their parameters and may only be executed inside the
// window that opens once their scheduled time has passed.
package timelock

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/roles"
)

const (
	MinDelay    = time.Hour
	MaxDelay    = 30 * 24 * time.Hour
	GracePeriod = 7 * 24 * time.Hour
)

var (
	ProposerRole  = roles.ID("PROPOSER_ROLE")
	ExecutorRole  = roles.ID("EXECUTOR_ROLE")
	CancellerRole = roles.ID("CANCELLER_ROLE")
)

var fingerprintArgs = func() abi.Arguments {
	types := []string{"address", "uint256", "string", "bytes", "uint256"}
	args := make(abi.Arguments, 0, len(types))

	for _, name := range types {
		typ, err := abi.NewType(name, "", nil)
		if err != nil {
			panic(err)
		}

		args = append(args, abi.Argument{Type: typ})
	}

	return args
}()

// Operation is a scheduled call. All five fields make up its fingerprint
type Operation struct {
	Target    common.Address
	Value     *big.Int
	Signature string
	Data      []byte
	// ETA is the earliest execution time, in unix seconds
	ETA uint64
}

// Fingerprint returns keccak256(abi.encode(target, value, signature, data, eta))
func Fingerprint(op Operation) common.Hash {
	packed, err := fingerprintArgs.Pack(
		op.Target,
		custody.CallValue(op.Value),
		op.Signature,
		op.Data,
		new(big.Int).SetUint64(op.ETA),
	)
	if err != nil {
		// only reachable with a negative value, which queue rejects first
		panic(err)
	}

	return crypto.Keccak256Hash(packed)
}

// Payload returns the calldata execution sends to the target: the data
// as given when no signature is set, the signature selector followed by the data otherwise
func Payload(op Operation) []byte {
	if op.Signature == "" {
		return append([]byte(nil), op.Data...)
	}

	return append(custody.Selector(op.Signature), op.Data...)
}

// Params bootstraps a Timelock
type Params struct {
	Delay     time.Duration
	Proposers []common.Address
	Executors []common.Address
	// Admin administers every role and may cancel
	Admin common.Address
}

// Timelock is the delay controller contract
type Timelock struct {
	host  custody.Host
	self  common.Address
	roles *roles.Registry

	delay  uint64
	queued map[common.Hash]struct{}

	executing bool
}

// Builder returns a vm.Deploy builder for a timelock bootstrapped with p
func Builder(p Params) func(custody.Host, common.Address) (*Timelock, error) {
	return func(host custody.Host, self common.Address) (*Timelock, error) {
		return New(host, self, p)
	}
}

func New(host custody.Host, self common.Address, p Params) (*Timelock, error) {
	if p.Delay < MinDelay || p.Delay > MaxDelay {
		return nil, ErrDelayOutOfRange
	}

	if p.Admin == (common.Address{}) {
		return nil, ErrZeroAddress
	}

	t := &Timelock{
		host:   host,
		self:   self,
		roles:  roles.New(host, self),
		delay:  uint64(p.Delay / time.Second),
		queued: make(map[common.Hash]struct{}),
	}

	grants := []struct {
		role     common.Hash
		accounts []common.Address
	}{
		{roles.DefaultAdminRole, []common.Address{self, p.Admin}},
		{CancellerRole, []common.Address{p.Admin}},
		{ProposerRole, p.Proposers},
		{ExecutorRole, p.Executors},
	}

	for _, g := range grants {
		for _, account := range g.accounts {
			if err := t.roles.Setup(g.role, account, self); err != nil {
				return nil, err
			}
		}
	}

	return t, nil
}

func (t *Timelock) Address() common.Address {
	return t.self
}

// Delay returns the minimum time between queuing and execution
func (t *Timelock) Delay() time.Duration {
	return time.Duration(t.delay) * time.Second
}

func (t *Timelock) IsQueued(fingerprint common.Hash) bool {
	_, ok := t.queued[fingerprint]

	return ok
}

// HasRole reports whether account holds role on this controller
func (t *Timelock) HasRole(role common.Hash, account common.Address) bool {
	return t.roles.HasRole(role, account)
}

func (t *Timelock) queue(caller common.Address, op Operation) (common.Hash, error) {
	if err := t.roles.Check(caller, ProposerRole); err != nil {
		return common.Hash{}, err
	}

	if err := validValue(op.Value); err != nil {
		return common.Hash{}, err
	}

	if op.ETA < t.host.Now()+t.delay {
		return common.Hash{}, ErrEtaTooEarly
	}

	fingerprint := Fingerprint(op)
	if t.IsQueued(fingerprint) {
		return common.Hash{}, ErrAlreadyQueued
	}

	t.setQueued(fingerprint, true)
	t.emit("QueueTransaction", fingerprint, op, caller)

	return fingerprint, nil
}

// cancel clears the operation whether or not it is queued
func (t *Timelock) cancel(caller common.Address, op Operation) error {
	if err := t.roles.Check(caller, CancellerRole); err != nil {
		return err
	}

	if err := validValue(op.Value); err != nil {
		return err
	}

	fingerprint := Fingerprint(op)
	if t.IsQueued(fingerprint) {
		t.setQueued(fingerprint, false)
	}

	t.emit("CancelTransaction", fingerprint, op, caller)

	return nil
}

// execute clears the queued flag before invoking the target. A failed
// invocation fails the whole call, and the VM restores the flag with it
func (t *Timelock) execute(caller common.Address, op Operation) ([]byte, error) {
	if t.executing {
		return nil, ErrReentrantCall
	}

	if err := t.roles.Check(caller, ExecutorRole); err != nil {
		return nil, err
	}

	if err := validValue(op.Value); err != nil {
		return nil, err
	}

	fingerprint := Fingerprint(op)
	if !t.IsQueued(fingerprint) {
		return nil, ErrNotQueued
	}

	now := t.host.Now()
	if now < op.ETA {
		return nil, ErrNotReady
	}

	if now-op.ETA > uint64(GracePeriod/time.Second) {
		return nil, ErrStale
	}

	t.setQueued(fingerprint, false)
	t.emit("ExecuteTransaction", fingerprint, op, caller)

	t.executing = true
	defer func() { t.executing = false }()

	ret, err := t.invoke(op)
	if err != nil {
		return nil, &custody.InvocationError{Target: op.Target, Err: err}
	}

	return ret, nil
}

// invoke performs the call of an executed operation. Calls addressed to
// the controller itself go through the privileged channel and move no value
func (t *Timelock) invoke(op Operation) ([]byte, error) {
	payload := Payload(op)

	if op.Target == t.self {
		return t.runSelf(payload)
	}

	return t.host.Call(t.self, op.Target, custody.CallValue(op.Value), payload)
}

func (t *Timelock) updateDelay(delay uint64) error {
	if delay < uint64(MinDelay/time.Second) || delay > uint64(MaxDelay/time.Second) {
		return ErrDelayOutOfRange
	}

	prev := t.delay
	t.delay = delay
	t.host.Record(func() { t.delay = prev })

	t.host.Emit(custody.NewLog(t.self, ABI, "NewDelay", new(big.Int).SetUint64(delay)))

	return nil
}

func (t *Timelock) setQueued(fingerprint common.Hash, queued bool) {
	if queued {
		t.queued[fingerprint] = struct{}{}
		t.host.Record(func() { delete(t.queued, fingerprint) })

		return
	}

	delete(t.queued, fingerprint)
	t.host.Record(func() { t.queued[fingerprint] = struct{}{} })
}

func (t *Timelock) emit(event string, fingerprint common.Hash, op Operation, sender common.Address) {
	t.host.Emit(custody.NewLog(t.self, ABI, event,
		fingerprint,
		op.Target,
		custody.CallValue(op.Value),
		op.Signature,
		op.Data,
		new(big.Int).SetUint64(op.ETA),
		sender,
	))
}

func validValue(value *big.Int) error {
	value = custody.CallValue(value)
	if _, overflow := uint256.FromBig(value); overflow || value.Sign() < 0 {
		return ErrValueOverflow
	}

	return nil
}
