// Package wallet implements a quorum wallet: a fixed set of owners proposes
// calls, and a call is executed once at least the required number of owners
// confirmed it. Owner management is itself a wallet call, reachable only
// through the wallet's own execution path.
package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/sig-0/go-custody"
)

// ValueBits is the width transaction values are stored in
const ValueBits = 96

// MaxValue is the largest value a transaction may carry (2^96 - 1)
var MaxValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), ValueBits), big.NewInt(1))

// Transaction is a proposed call together with its approval state
type Transaction struct {
	Target        common.Address
	Value         *big.Int
	Data          []byte
	Executed      bool
	Confirmations uint64
}

// Status summarizes the approval state of a transaction
type Status struct {
	Executed      bool
	Confirmations uint64
	Executable    bool
}

type transaction struct {
	target        common.Address
	value         *uint256.Int
	data          []byte
	executed      bool
	confirmations uint64
}

// Wallet is the quorum wallet contract. View methods read committed state
// and must not be used concurrently with transactions applied by the VM;
// Session offers the same reads through the VM
type Wallet struct {
	host custody.Host
	self common.Address

	owners   []common.Address
	isOwner  map[common.Address]struct{}
	required uint64

	txs       []*transaction
	confirmed map[uint64]map[common.Address]struct{}

	executing bool
}

// Builder returns a vm.Deploy builder for a wallet with the given owners and requirement
func Builder(owners []common.Address, required uint64) func(custody.Host, common.Address) (*Wallet, error) {
	return func(host custody.Host, self common.Address) (*Wallet, error) {
		return New(host, self, owners, required)
	}
}

func New(host custody.Host, self common.Address, owners []common.Address, required uint64) (*Wallet, error) {
	if len(owners) == 0 {
		return nil, ErrNoOwners
	}

	w := &Wallet{
		host:      host,
		self:      self,
		owners:    make([]common.Address, 0, len(owners)),
		isOwner:   make(map[common.Address]struct{}, len(owners)),
		confirmed: make(map[uint64]map[common.Address]struct{}),
	}

	for _, owner := range owners {
		if owner == (common.Address{}) {
			return nil, ErrZeroAddress
		}

		if _, ok := w.isOwner[owner]; ok {
			return nil, ErrDuplicateOwner
		}

		w.owners = append(w.owners, owner)
		w.isOwner[owner] = struct{}{}
	}

	if required == 0 || required > uint64(len(w.owners)) {
		return nil, ErrInvalidRequirement
	}

	w.required = required

	return w, nil
}

func (w *Wallet) Address() common.Address {
	return w.self
}

/** Views **/

// Owners returns the owners in the order they were added
func (w *Wallet) Owners() []common.Address {
	return append([]common.Address(nil), w.owners...)
}

func (w *Wallet) IsOwner(account common.Address) bool {
	_, ok := w.isOwner[account]

	return ok
}

func (w *Wallet) Required() uint64 {
	return w.required
}

func (w *Wallet) TransactionCount() uint64 {
	return uint64(len(w.txs))
}

func (w *Wallet) Transaction(index uint64) (Transaction, error) {
	t, err := w.tx(index)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Target:        t.target,
		Value:         t.value.ToBig(),
		Data:          append([]byte(nil), t.data...),
		Executed:      t.executed,
		Confirmations: t.confirmations,
	}, nil
}

func (w *Wallet) Status(index uint64) (Status, error) {
	t, err := w.tx(index)
	if err != nil {
		return Status{}, err
	}

	return w.status(t), nil
}

// IsConfirmed reports whether owner confirmed the transaction. Unknown indexes report false
func (w *Wallet) IsConfirmed(index uint64, owner common.Address) bool {
	_, ok := w.confirmed[index][owner]

	return ok
}

// Confirmations returns the owners that confirmed the transaction, in owner order
func (w *Wallet) Confirmations(index uint64) ([]common.Address, error) {
	if _, err := w.tx(index); err != nil {
		return nil, err
	}

	confirmed := make([]common.Address, 0)

	for _, owner := range w.owners {
		if w.IsConfirmed(index, owner) {
			confirmed = append(confirmed, owner)
		}
	}

	return confirmed, nil
}

// TransactionIDs returns the indexes in [from, to) that are pending and/or executed
func (w *Wallet) TransactionIDs(from, to uint64, pending, executed bool) []uint64 {
	if to > w.TransactionCount() {
		to = w.TransactionCount()
	}

	ids := make([]uint64, 0)

	for i := from; i < to; i++ {
		t := w.txs[i]
		if (pending && !t.executed) || (executed && t.executed) {
			ids = append(ids, i)
		}
	}

	return ids
}

// BatchStatus reports the executed flag and confirmation count of every index.
// Unknown indexes report false and zero
func (w *Wallet) BatchStatus(indexes []uint64) ([]bool, []uint64) {
	var (
		executed      = make([]bool, len(indexes))
		confirmations = make([]uint64, len(indexes))
	)

	for i, index := range indexes {
		t, err := w.tx(index)
		if err != nil {
			continue
		}

		executed[i], confirmations[i] = t.executed, t.confirmations
	}

	return executed, confirmations
}

/** Transaction lifecycle **/

func (w *Wallet) submit(caller, target common.Address, value *big.Int, data []byte) (uint64, error) {
	if err := w.onlyOwner(caller); err != nil {
		return 0, err
	}

	if target == (common.Address{}) {
		return 0, ErrZeroAddress
	}

	v, err := narrow(value)
	if err != nil {
		return 0, err
	}

	index := uint64(len(w.txs))

	w.txs = append(w.txs, &transaction{
		target: target,
		value:  v,
		data:   append([]byte(nil), data...),
	})
	w.confirmed[index] = make(map[common.Address]struct{})

	w.host.Record(func() {
		w.txs = w.txs[:index]
		delete(w.confirmed, index)
	})

	w.emit("Submission", index, caller)

	return index, nil
}

func (w *Wallet) submitAndConfirm(caller, target common.Address, value *big.Int, data []byte) (uint64, error) {
	index, err := w.submit(caller, target, value, data)
	if err != nil {
		return 0, err
	}

	if err := w.confirm(caller, index); err != nil {
		return 0, err
	}

	return index, nil
}

func (w *Wallet) confirm(caller common.Address, index uint64) error {
	if err := w.onlyOwner(caller); err != nil {
		return err
	}

	t, err := w.tx(index)
	if err != nil {
		return err
	}

	if t.executed {
		return ErrAlreadyExecuted
	}

	if w.IsConfirmed(index, caller) {
		return ErrAlreadyConfirmed
	}

	w.setConfirmed(index, caller, true)
	w.emit("Confirmation", caller, index)

	return nil
}

// batchConfirm confirms every index it can and skips the rest: unknown
// indexes, executed transactions and transactions the caller already confirmed
func (w *Wallet) batchConfirm(caller common.Address, indexes []uint64) (uint64, error) {
	if err := w.onlyOwner(caller); err != nil {
		return 0, err
	}

	var confirmed uint64

	for _, index := range indexes {
		t, err := w.tx(index)
		if err != nil || t.executed || w.IsConfirmed(index, caller) {
			continue
		}

		w.setConfirmed(index, caller, true)
		w.emit("Confirmation", caller, index)

		confirmed++
	}

	return confirmed, nil
}

func (w *Wallet) revoke(caller common.Address, index uint64) error {
	if err := w.onlyOwner(caller); err != nil {
		return err
	}

	t, err := w.tx(index)
	if err != nil {
		return err
	}

	if t.executed {
		return ErrAlreadyExecuted
	}

	if !w.IsConfirmed(index, caller) {
		return ErrNotConfirmed
	}

	w.setConfirmed(index, caller, false)
	w.emit("Revocation", caller, index)

	return nil
}

// execute marks the transaction executed before invoking it. A failed
// invocation fails the whole call, and the VM rolls the mark back with it
func (w *Wallet) execute(caller common.Address, index uint64) ([]byte, error) {
	if w.executing {
		return nil, ErrReentrantCall
	}

	if err := w.onlyOwner(caller); err != nil {
		return nil, err
	}

	t, err := w.tx(index)
	if err != nil {
		return nil, err
	}

	if t.executed {
		return nil, ErrAlreadyExecuted
	}

	if t.confirmations < w.required {
		return nil, ErrInsufficientConfirmations
	}

	t.executed = true
	w.host.Record(func() { t.executed = false })

	w.emit("Execution", index, caller)

	w.executing = true
	defer func() { w.executing = false }()

	ret, err := w.invoke(t)
	if err != nil {
		return nil, &custody.InvocationError{Target: t.target, Err: err}
	}

	return ret, nil
}

// invoke performs the call of an approved transaction. Calls addressed to
// the wallet itself go through the privileged channel and move no value
func (w *Wallet) invoke(t *transaction) ([]byte, error) {
	if t.target == w.self {
		return w.runSelf(t.data)
	}

	return w.host.Call(w.self, t.target, t.value.ToBig(), t.data)
}

/** Owner management, privileged **/

func (w *Wallet) addOwner(owner common.Address) error {
	if owner == (common.Address{}) {
		return ErrZeroAddress
	}

	if w.IsOwner(owner) {
		return ErrDuplicateOwner
	}

	prev := w.owners
	w.owners = append(append(make([]common.Address, 0, len(prev)+1), prev...), owner)
	w.isOwner[owner] = struct{}{}

	w.host.Record(func() {
		w.owners = prev
		delete(w.isOwner, owner)
	})

	w.emit("OwnerAddition", owner)

	return nil
}

func (w *Wallet) removeOwner(owner common.Address) error {
	if !w.IsOwner(owner) {
		return ErrOwnerAbsent
	}

	if uint64(len(w.owners)-1) < w.required {
		return ErrRequirementViolation
	}

	w.dropOwner(owner, nil)
	w.emit("OwnerRemoval", owner)

	return nil
}

func (w *Wallet) replaceOwner(owner, newOwner common.Address) error {
	if !w.IsOwner(owner) {
		return ErrOwnerAbsent
	}

	if newOwner == (common.Address{}) {
		return ErrZeroAddress
	}

	if w.IsOwner(newOwner) {
		return ErrDuplicateOwner
	}

	w.dropOwner(owner, &newOwner)
	w.emit("OwnerRemoval", owner)
	w.emit("OwnerAddition", newOwner)

	return nil
}

func (w *Wallet) changeRequirement(required uint64) error {
	if required == 0 || required > uint64(len(w.owners)) {
		return ErrInvalidRequirement
	}

	prev := w.required
	w.required = required
	w.host.Record(func() { w.required = prev })

	w.emit("RequirementChange", required)

	return nil
}

// dropOwner removes owner from the set, putting replacement in its slot if given.
// The owner's confirmations on pending transactions are withdrawn so that counts
// only ever reflect current owners
func (w *Wallet) dropOwner(owner common.Address, replacement *common.Address) {
	prev := w.owners
	owners := make([]common.Address, 0, len(prev))

	for _, o := range prev {
		switch {
		case o != owner:
			owners = append(owners, o)
		case replacement != nil:
			owners = append(owners, *replacement)
		}
	}

	w.owners = owners
	delete(w.isOwner, owner)

	if replacement != nil {
		w.isOwner[*replacement] = struct{}{}
	}

	w.host.Record(func() {
		w.owners = prev
		w.isOwner[owner] = struct{}{}

		if replacement != nil {
			delete(w.isOwner, *replacement)
		}
	})

	for index, t := range w.txs {
		if !t.executed && w.IsConfirmed(uint64(index), owner) {
			w.setConfirmed(uint64(index), owner, false)
		}
	}
}

/** Helpers **/

func (w *Wallet) onlyOwner(caller common.Address) error {
	if !w.IsOwner(caller) {
		return ErrNotOwner
	}

	return nil
}

func (w *Wallet) tx(index uint64) (*transaction, error) {
	if index >= uint64(len(w.txs)) {
		return nil, ErrTxNotFound
	}

	return w.txs[index], nil
}

func (w *Wallet) status(t *transaction) Status {
	return Status{
		Executed:      t.executed,
		Confirmations: t.confirmations,
		Executable:    !t.executed && t.confirmations >= w.required,
	}
}

// setConfirmed flips the confirmation of owner and keeps the count in step with it
func (w *Wallet) setConfirmed(index uint64, owner common.Address, confirmed bool) {
	var (
		t   = w.txs[index]
		set = w.confirmed[index]
	)

	if confirmed {
		set[owner] = struct{}{}
		t.confirmations++

		w.host.Record(func() {
			delete(set, owner)
			t.confirmations--
		})

		return
	}

	delete(set, owner)
	t.confirmations--

	w.host.Record(func() {
		set[owner] = struct{}{}
		t.confirmations++
	})
}

func (w *Wallet) emit(event string, args ...any) {
	for i, arg := range args {
		if n, ok := arg.(uint64); ok {
			args[i] = new(big.Int).SetUint64(n)
		}
	}

	w.host.Emit(custody.NewLog(w.self, ABI, event, args...))
}

// narrow converts value to its stored width, rejecting what does not fit
func narrow(value *big.Int) (*uint256.Int, error) {
	value = custody.CallValue(value)
	if value.Sign() < 0 || value.Cmp(MaxValue) > 0 {
		return nil, ErrValueOverflow
	}

	v, _ := uint256.FromBig(value)

	return v, nil
}
