// Package vm implements the sequential execution environment the custody
// contracts run in. Transactions are applied one at a time; each one either
// commits every effect of every nested call it made, or none of them.
package vm

import (
	"encoding/binary"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-faster/errors"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/sig-0/go-custody"
)

var (
	ErrCallDepth         = custody.NewError(custody.ErrInvocation, "vm: max call depth exceeded")
	ErrNoContract        = custody.NewError(custody.ErrNotFound, "vm: no contract at target address")
	ErrInsufficientFunds = custody.NewError(custody.ErrStateConflict, "vm: insufficient balance for value transfer")
	ErrValueOverflow     = custody.NewError(custody.ErrValidation, "vm: value out of uint256 range")
	ErrAddressInUse      = custody.NewError(custody.ErrStateConflict, "vm: address already in use")
)

// Receipt describes a committed transaction
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	Time        uint64
	From        common.Address
	To          common.Address
	ReturnData  []byte
	Logs        []*types.Log
}

// VM applies transactions against the deployed contracts
type VM struct {
	mu sync.Mutex

	contracts map[common.Address]custody.Contract
	balances  map[common.Address]*uint256.Int
	nonces    map[common.Address]uint64

	journal  []func()
	logs     []*types.Log
	depth    int
	maxDepth int

	now   uint64
	block uint64

	log     *zap.Logger
	sink    LogSink
	metrics *metrics
	cfg     Config
}

func New(opts ...Option) *VM {
	cfg := NewConfig(opts...)

	start := cfg.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	return &VM{
		contracts: make(map[common.Address]custody.Contract),
		balances:  make(map[common.Address]*uint256.Int),
		nonces:    make(map[common.Address]uint64),
		now:       uint64(start.Unix()),
		log:       cfg.Logger,
		sink:      cfg.Sink,
		metrics:   newMetrics(cfg.Registerer),
		cfg:       cfg,
	}
}

// Deploy runs build as a transaction from deployer and registers the returned
// contract at the address derived from the deployer and its nonce
func Deploy[C custody.Contract](
	v *VM,
	deployer common.Address,
	build func(host custody.Host, self common.Address) (C, error),
) (C, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var zero C

	self := crypto.CreateAddress(deployer, v.nonces[deployer])
	if _, ok := v.contracts[self]; ok {
		return zero, ErrAddressInUse
	}

	v.begin(deployer)

	c, err := build(host{v}, self)
	if err == nil && c.Address() != self {
		err = errors.Errorf("vm: contract reports address %s, deployed at %s", c.Address(), self)
	}

	if err != nil {
		v.abort()
		v.log.Debug("deployment reverted", zap.Stringer("deployer", deployer), zap.Error(err))

		return zero, err
	}

	v.contracts[self] = c
	v.commit(deployer, self, nil)
	v.log.Info("contract deployed", zap.Stringer("deployer", deployer), zap.Stringer("address", self))

	return c, nil
}

// Transact applies a call from an external account as a single atomic transaction
func (v *VM) Transact(from, to common.Address, value *big.Int, data []byte) (*Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.begin(from)

	ret, err := v.call(from, to, custody.CallValue(value), data)
	if err != nil {
		v.abort()
		v.log.Debug("transaction reverted",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Error(err),
		)

		return nil, err
	}

	return v.commit(from, to, ret), nil
}

// StaticCall executes a call and discards every effect it had
func (v *VM) StaticCall(from, to common.Address, data []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	journal, logs := len(v.journal), len(v.logs)
	defer v.revert(journal, logs)

	return v.call(from, to, new(big.Int), data)
}

// Fund credits addr with amount outside of any transaction
func (v *VM) Fund(addr common.Address, amount *big.Int) error {
	add, overflow := uint256.FromBig(amount)
	if overflow || amount.Sign() < 0 {
		return ErrValueOverflow
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	sum, overflow := new(uint256.Int).AddOverflow(v.balanceOf(addr), add)
	if overflow {
		return ErrValueOverflow
	}

	v.balances[addr] = sum

	return nil
}

// Balance returns the native balance of addr
func (v *VM) Balance(addr common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.balanceOf(addr).ToBig()
}

// Contract returns the contract deployed at addr
func (v *VM) Contract(addr common.Address) (custody.Contract, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.contracts[addr]

	return c, ok
}

// Now returns the timestamp the next transaction will observe
func (v *VM) Now() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.now
}

// SetTime moves the clock to ts (unix seconds)
func (v *VM) SetTime(ts uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.now = ts
}

// Advance moves the clock forward by d
func (v *VM) Advance(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.now += uint64(d / time.Second)
}

// BlockNumber returns the number of the last committed transaction
func (v *VM) BlockNumber() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.block
}

func (v *VM) begin(from common.Address) {
	v.journal = v.journal[:0]
	v.logs = v.logs[:0]
	v.depth, v.maxDepth = 0, 0
	v.nonces[from]++
}

func (v *VM) abort() {
	v.revert(0, 0)
	v.metrics.transactions.WithLabelValues(outcomeReverted).Inc()
}

func (v *VM) commit(from, to common.Address, ret []byte) *Receipt {
	v.block++

	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], v.nonces[from])

	r := &Receipt{
		TxHash:      crypto.Keccak256Hash(from.Bytes(), to.Bytes(), nonce[:], ret),
		BlockNumber: v.block,
		Time:        v.now,
		From:        from,
		To:          to,
		ReturnData:  ret,
		Logs:        make([]*types.Log, len(v.logs)),
	}

	for i, l := range v.logs {
		l.BlockNumber = r.BlockNumber
		l.TxHash = r.TxHash
		l.Index = uint(i)
		r.Logs[i] = l
	}

	v.journal = v.journal[:0]
	v.logs = v.logs[:0]

	v.metrics.transactions.WithLabelValues(outcomeCommitted).Inc()
	v.metrics.logs.Add(float64(len(r.Logs)))
	v.metrics.callDepth.Observe(float64(v.maxDepth))

	if v.sink != nil && len(r.Logs) > 0 {
		v.sink.Append(r.Logs)
	}

	v.log.Debug("transaction committed",
		zap.Uint64("block", r.BlockNumber),
		zap.Stringer("tx", r.TxHash),
		zap.Int("logs", len(r.Logs)),
	)

	return r
}

func (v *VM) call(from, to common.Address, value *big.Int, data []byte) ([]byte, error) {
	if v.depth >= v.cfg.MaxCallDepth {
		return nil, ErrCallDepth
	}

	journal, logs := len(v.journal), len(v.logs)

	if err := v.transfer(from, to, value); err != nil {
		return nil, err
	}

	c, ok := v.contracts[to]
	if !ok {
		if len(data) == 0 {
			// plain value transfer to an external account
			return nil, nil
		}

		v.revert(journal, logs)

		return nil, ErrNoContract
	}

	v.depth++
	if v.depth > v.maxDepth {
		v.maxDepth = v.depth
	}

	ret, err := c.Run(from, value, data)

	v.depth--

	if err != nil {
		v.revert(journal, logs)

		return nil, err
	}

	return ret, nil
}

func (v *VM) transfer(from, to common.Address, value *big.Int) error {
	if value.Sign() == 0 {
		return nil
	}

	amount, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return ErrValueOverflow
	}

	prevFrom, prevTo := v.balanceOf(from), v.balanceOf(to)
	if prevFrom.Lt(amount) {
		return ErrInsufficientFunds
	}

	v.balances[from] = new(uint256.Int).Sub(prevFrom, amount)
	// recipient balance is read after the debit so self transfers net to zero
	v.balances[to] = new(uint256.Int).Add(v.balanceOf(to), amount)

	v.record(func() {
		v.balances[from] = prevFrom
		v.balances[to] = prevTo
	})

	return nil
}

func (v *VM) balanceOf(addr common.Address) *uint256.Int {
	if b, ok := v.balances[addr]; ok {
		return b
	}

	return new(uint256.Int)
}

func (v *VM) record(undo func()) {
	v.journal = append(v.journal, undo)
}

// revert rolls the journal and the log back to the given lengths
func (v *VM) revert(journal, logs int) {
	for i := len(v.journal) - 1; i >= journal; i-- {
		v.journal[i]()
	}

	v.journal = v.journal[:journal]
	v.logs = v.logs[:logs]
}

// host is the capability handed to contracts. It is only used while the VM
// lock is held by Deploy or Transact
type host struct {
	vm *VM
}

func (h host) Now() uint64 {
	return h.vm.now
}

func (h host) Call(from, to common.Address, value *big.Int, data []byte) ([]byte, error) {
	return h.vm.call(from, to, custody.CallValue(value), data)
}

func (h host) Record(undo func()) {
	h.vm.record(undo)
}

func (h host) Emit(log *types.Log) {
	h.vm.logs = append(h.vm.logs, log)
}
