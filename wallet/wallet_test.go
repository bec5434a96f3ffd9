package wallet

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/test"
	"github.com/sig-0/go-custody/test/mock"
	"github.com/sig-0/go-custody/vm"
)

var errProbe = errors.New("probe failure")

type fixture struct {
	vm       *vm.VM
	wallet   *Wallet
	probe    *mock.Probe
	owners   []common.Address
	sessions []*Session
}

func newFixture(t *testing.T, owners int, required uint64) *fixture {
	t.Helper()

	var (
		v        = vm.New()
		deployer = test.NewECDSAKey().Address()
		addrs    = test.Addresses(owners)
	)

	w, err := vm.Deploy(v, deployer, Builder(addrs, required))
	require.NoError(t, err)

	p, err := vm.Deploy(v, deployer, mock.NewProbe)
	require.NoError(t, err)

	f := &fixture{
		vm:     v,
		wallet: w,
		probe:  p,
		owners: addrs,
	}

	for _, owner := range addrs {
		f.sessions = append(f.sessions, NewSession(v, w.Address(), owner))
	}

	return f
}

// ping is a call to the probe
func (f *fixture) ping() custody.Call {
	return custody.Call{Target: f.probe.Address(), Data: []byte("ping")}
}

// approve submits call from the first owner and confirms it by the first n owners
func (f *fixture) approve(t *testing.T, call custody.Call, n int) uint64 {
	t.Helper()

	index, err := f.sessions[0].SubmitAndConfirm(call)
	require.NoError(t, err)

	for _, s := range f.sessions[1:n] {
		require.NoError(t, s.Confirm(index))
	}

	return index
}

func Test_Wallet_New(t *testing.T) {
	t.Parallel()

	var (
		addrs = test.Addresses(3)
		self  = test.NewECDSAKey().Address()
	)

	table := []struct {
		name     string
		owners   []common.Address
		required uint64
		expected error
	}{
		{
			name:     "valid",
			owners:   addrs,
			required: 2,
		},

		{
			name:     "required equals owner count",
			owners:   addrs,
			required: 3,
		},

		{
			name:     "no owners",
			required: 1,
			expected: ErrNoOwners,
		},

		{
			name:     "zero requirement",
			owners:   addrs,
			expected: ErrInvalidRequirement,
		},

		{
			name:     "requirement above owner count",
			owners:   addrs,
			required: 4,
			expected: ErrInvalidRequirement,
		},

		{
			name:     "duplicate owner",
			owners:   []common.Address{addrs[0], addrs[1], addrs[0]},
			required: 1,
			expected: ErrDuplicateOwner,
		},

		{
			name:     "zero address owner",
			owners:   []common.Address{addrs[0], {}},
			required: 1,
			expected: ErrZeroAddress,
		},
	}

	for _, tt := range table {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, err := New(nil, self, tt.owners, tt.required)
			assert.ErrorIs(t, err, tt.expected)

			if tt.expected != nil {
				assert.ErrorIs(t, err, custody.ErrValidation)

				return
			}

			assert.Equal(t, tt.owners, w.Owners())
			assert.Equal(t, tt.required, w.Required())
		})
	}
}

func Test_Wallet_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 3, 2)
	first, second := f.sessions[0], f.sessions[1]

	index, err := first.Submit(f.ping())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), index)

	status, err := first.Status(index)
	require.NoError(t, err)
	assert.Equal(t, Status{}, status)

	require.NoError(t, first.Confirm(index))

	_, err = first.Execute(index)
	assert.ErrorIs(t, err, ErrInsufficientConfirmations)

	require.NoError(t, second.Confirm(index))

	status, err = first.Status(index)
	require.NoError(t, err)
	assert.Equal(t, Status{Confirmations: 2, Executable: true}, status)

	f.probe.Return = []byte("pong")

	ret, err := second.Execute(index)
	require.NoError(t, err)

	assert.Equal(t, []byte("pong"), ret)
	assert.Equal(t, 1, f.probe.Calls)
	assert.Equal(t, f.wallet.Address(), f.probe.LastCaller)
	assert.Equal(t, []byte("ping"), f.probe.LastData)

	tx, err := first.Transaction(index)
	require.NoError(t, err)
	assert.True(t, tx.Executed)
	assert.Equal(t, uint64(2), tx.Confirmations)
	assert.Equal(t, f.probe.Address(), tx.Target)
}

func Test_Wallet_ConfirmationRules(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 3, 2)
	owner := f.sessions[0]
	stranger := NewSession(f.vm, f.wallet.Address(), test.NewECDSAKey().Address())

	index, err := owner.Submit(f.ping())
	require.NoError(t, err)

	_, err = stranger.Submit(f.ping())
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, err, custody.ErrUnauthorized)

	assert.ErrorIs(t, stranger.Confirm(index), ErrNotOwner)
	assert.ErrorIs(t, owner.Confirm(7), ErrTxNotFound)
	assert.ErrorIs(t, owner.Revoke(index), ErrNotConfirmed)

	require.NoError(t, owner.Confirm(index))
	assert.ErrorIs(t, owner.Confirm(index), ErrAlreadyConfirmed)

	require.NoError(t, owner.Revoke(index))
	assert.False(t, f.wallet.IsConfirmed(index, f.owners[0]))

	// revoked owners may confirm again
	require.NoError(t, owner.Confirm(index))

	status, err := owner.Status(index)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), status.Confirmations)

	confirmed, err := f.wallet.Confirmations(index)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{f.owners[0]}, confirmed)
}

func Test_Wallet_NoDoubleExecution(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 3, 2)
	index := f.approve(t, f.ping(), 2)

	_, err := f.sessions[0].Execute(index)
	require.NoError(t, err)

	for _, s := range f.sessions {
		_, err = s.Execute(index)
		assert.ErrorIs(t, err, ErrAlreadyExecuted)
	}

	assert.ErrorIs(t, f.sessions[2].Confirm(index), ErrAlreadyExecuted)
	assert.ErrorIs(t, f.sessions[0].Revoke(index), ErrAlreadyExecuted)
	assert.Equal(t, 1, f.probe.Calls)
}

func Test_Wallet_Threshold(t *testing.T) {
	t.Parallel()

	for owners := 1; owners <= 4; owners++ {
		for required := 1; required <= owners; required++ {
			owners, required := owners, required

			t.Run(fmt.Sprintf("%d of %d", required, owners), func(t *testing.T) {
				t.Parallel()

				f := newFixture(t, owners, uint64(required))

				index, err := f.sessions[0].Submit(f.ping())
				require.NoError(t, err)

				for confirmed := 0; confirmed < owners; confirmed++ {
					_, err = f.sessions[0].Execute(index)
					if confirmed >= required {
						require.NoError(t, err)

						break
					}

					assert.ErrorIs(t, err, ErrInsufficientConfirmations)
					require.NoError(t, f.sessions[confirmed].Confirm(index))
				}

				if !f.wallet.txs[index].executed {
					_, err = f.sessions[0].Execute(index)
					require.NoError(t, err)
				}

				assert.Equal(t, 1, f.probe.Calls)
			})
		}
	}
}

func Test_Wallet_SubmitAndConfirm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2, 2)
	owner := f.sessions[0]

	combined, err := owner.SubmitAndConfirm(f.ping())
	require.NoError(t, err)

	separate, err := owner.Submit(f.ping())
	require.NoError(t, err)
	require.NoError(t, owner.Confirm(separate))

	a, err := owner.Status(combined)
	require.NoError(t, err)

	b, err := owner.Status(separate)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, f.wallet.IsConfirmed(combined, f.owners[0]))

	// a rejected submission leaves nothing behind
	_, err = owner.SubmitAndConfirm(custody.Call{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrZeroAddress)
	assert.Equal(t, uint64(2), f.wallet.TransactionCount())
}

func Test_Wallet_BatchConfirm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 3, 2)

	pending, err := f.sessions[0].Submit(f.ping())
	require.NoError(t, err)

	executed := f.approve(t, f.ping(), 2)
	_, err = f.sessions[0].Execute(executed)
	require.NoError(t, err)

	confirmed, err := f.sessions[2].BatchConfirm(pending, executed, 99, pending)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), confirmed)
	assert.True(t, f.wallet.IsConfirmed(pending, f.owners[2]))
	assert.False(t, f.wallet.IsConfirmed(executed, f.owners[2]))

	// everything is already confirmed or executed
	confirmed, err = f.sessions[2].BatchConfirm(pending, executed)
	require.NoError(t, err)
	assert.Zero(t, confirmed)

	stranger := NewSession(f.vm, f.wallet.Address(), test.NewECDSAKey().Address())
	_, err = stranger.BatchConfirm(pending)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func Test_Wallet_BatchStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2, 1)

	pending, err := f.sessions[0].Submit(f.ping())
	require.NoError(t, err)

	executed := f.approve(t, f.ping(), 1)
	_, err = f.sessions[0].Execute(executed)
	require.NoError(t, err)

	flags, confirmations, err := f.sessions[0].BatchStatus(pending, executed, 5)
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true, false}, flags)
	assert.Equal(t, []uint64{0, 1, 0}, confirmations)

	// indexes beyond 64 bits are reported as unknown
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	ret, err := f.vm.StaticCall(
		f.owners[0],
		f.wallet.Address(),
		custody.MustPack(ABI, "batchGetTransactionStatus", []*big.Int{huge}),
	)
	require.NoError(t, err)

	out, err := ABI.Unpack("batchGetTransactionStatus", ret)
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, out[0])
}

func Test_Wallet_TransactionIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1, 1)

	for i := 0; i < 4; i++ {
		_, err := f.sessions[0].SubmitAndConfirm(f.ping())
		require.NoError(t, err)
	}

	for _, index := range []uint64{1, 3} {
		_, err := f.sessions[0].Execute(index)
		require.NoError(t, err)
	}

	assert.Equal(t, []uint64{0, 2}, f.wallet.TransactionIDs(0, 10, true, false))
	assert.Equal(t, []uint64{1, 3}, f.wallet.TransactionIDs(0, 10, false, true))
	assert.Equal(t, []uint64{1, 2}, f.wallet.TransactionIDs(1, 3, true, true))
	assert.Empty(t, f.wallet.TransactionIDs(0, 4, false, false))
}

func Test_Wallet_PrivilegedRequiresSelf(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2, 1)
	newcomer := test.NewECDSAKey().Address()

	calls := []custody.Call{
		AddOwnerCall(f.wallet.Address(), newcomer),
		RemoveOwnerCall(f.wallet.Address(), f.owners[1]),
		ReplaceOwnerCall(f.wallet.Address(), f.owners[1], newcomer),
		ChangeRequirementCall(f.wallet.Address(), 2),
	}

	for _, call := range calls {
		// owners cannot call owner management directly
		_, err := f.vm.Transact(f.owners[0], f.wallet.Address(), nil, call.Data)
		assert.ErrorIs(t, err, ErrNotSelf)

		// nor can other contracts
		f.probe.Reenter = &custody.Call{Target: f.wallet.Address(), Data: call.Data}
		f.probe.Reentries = nil

		_, err = f.vm.Transact(f.owners[0], f.probe.Address(), nil, []byte("go"))
		require.NoError(t, err)
		require.Len(t, f.probe.Reentries, 1)
		assert.ErrorIs(t, f.probe.Reentries[0], ErrNotSelf)
	}

	assert.Equal(t, f.owners, f.wallet.Owners())
	assert.Equal(t, uint64(1), f.wallet.Required())
}

func Test_Wallet_OwnerManagement(t *testing.T) {
	t.Parallel()

	var (
		f        = newFixture(t, 3, 2)
		self     = f.wallet.Address()
		newcomer = test.NewECDSAKey().Address()
		replaced = test.NewECDSAKey().Address()
	)

	run := func(call custody.Call) error {
		index := f.approve(t, call, 2)
		_, err := f.sessions[0].Execute(index)

		return err
	}

	require.NoError(t, run(AddOwnerCall(self, newcomer)))
	assert.True(t, f.wallet.IsOwner(newcomer))
	assert.Equal(t, append(append([]common.Address(nil), f.owners...), newcomer), f.wallet.Owners())

	err := run(AddOwnerCall(self, newcomer))
	assert.ErrorIs(t, err, ErrDuplicateOwner)
	assert.ErrorIs(t, err, custody.ErrInvocation)

	require.NoError(t, run(ReplaceOwnerCall(self, f.owners[2], replaced)))
	assert.Equal(t, []common.Address{f.owners[0], f.owners[1], replaced, newcomer}, f.wallet.Owners())
	assert.False(t, f.wallet.IsOwner(f.owners[2]))

	require.NoError(t, run(RemoveOwnerCall(self, newcomer)))
	assert.False(t, f.wallet.IsOwner(newcomer))

	assert.ErrorIs(t, run(RemoveOwnerCall(self, newcomer)), ErrOwnerAbsent)

	assert.ErrorIs(t, run(ChangeRequirementCall(self, 0)), ErrInvalidRequirement)
	assert.ErrorIs(t, run(ChangeRequirementCall(self, 4)), ErrInvalidRequirement)
	assert.Equal(t, uint64(2), f.wallet.Required())

	require.NoError(t, run(ChangeRequirementCall(self, 3)))
	assert.Equal(t, uint64(3), f.wallet.Required())
}

func Test_Wallet_RemoveOwnerBelowRequirement(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2, 2)
	index := f.approve(t, RemoveOwnerCall(f.wallet.Address(), f.owners[1]), 2)

	_, err := f.sessions[0].Execute(index)
	assert.ErrorIs(t, err, ErrRequirementViolation)

	// the failed invocation rolls the executed mark back
	status, err := f.sessions[0].Status(index)
	require.NoError(t, err)
	assert.False(t, status.Executed)
	assert.Len(t, f.wallet.Owners(), 2)
}

func Test_Wallet_RemovedOwnerConfirmationsWithdrawn(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 3, 2)

	pending, err := f.sessions[2].SubmitAndConfirm(f.ping())
	require.NoError(t, err)
	require.NoError(t, f.sessions[0].Confirm(pending))

	removal := f.approve(t, RemoveOwnerCall(f.wallet.Address(), f.owners[2]), 2)
	_, err = f.sessions[0].Execute(removal)
	require.NoError(t, err)

	status, err := f.sessions[0].Status(pending)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), status.Confirmations)
	assert.False(t, f.wallet.IsConfirmed(pending, f.owners[2]))

	confirmed, err := f.wallet.Confirmations(pending)
	require.NoError(t, err)
	assert.Len(t, confirmed, int(status.Confirmations))
}

func Test_Wallet_Value(t *testing.T) {
	t.Parallel()

	var (
		f         = newFixture(t, 2, 1)
		recipient = test.NewECDSAKey().Address()
	)

	require.NoError(t, f.vm.Fund(f.owners[0], test.Ether(3)))
	require.NoError(t, f.sessions[0].Deposit(test.Ether(2)))
	assert.Equal(t, test.Ether(2).String(), f.vm.Balance(f.wallet.Address()).String())

	index := f.approve(t, custody.Call{Target: recipient, Value: test.Ether(1)}, 1)
	_, err := f.sessions[0].Execute(index)
	require.NoError(t, err)

	assert.Equal(t, test.Ether(1).String(), f.vm.Balance(recipient).String())
	assert.Equal(t, test.Ether(1).String(), f.vm.Balance(f.wallet.Address()).String())

	// more than the wallet holds
	index = f.approve(t, custody.Call{Target: recipient, Value: test.Ether(5)}, 1)
	_, err = f.sessions[0].Execute(index)
	assert.ErrorIs(t, err, vm.ErrInsufficientFunds)

	_, err = f.sessions[0].Submit(custody.Call{Target: recipient, Value: MaxValue})
	assert.NoError(t, err)

	_, err = f.sessions[0].Submit(custody.Call{Target: recipient, Value: new(big.Int).Add(MaxValue, big.NewInt(1))})
	assert.ErrorIs(t, err, ErrValueOverflow)

	_, err = narrow(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrValueOverflow)

	// value cannot ride along with a method call
	_, err = f.vm.Transact(f.owners[0], f.wallet.Address(), big.NewInt(1), custody.MustPack(ABI, "required"))
	assert.ErrorIs(t, err, custody.ErrNotPayable)
}

func Test_Wallet_Reentrancy(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2, 1)

	other := f.approve(t, f.ping(), 1)
	index := f.approve(t, f.ping(), 1)

	for _, target := range []uint64{index, other} {
		f.probe.Reenter = &custody.Call{
			Target: f.wallet.Address(),
			Data:   custody.MustPack(ABI, "executeTransaction", new(big.Int).SetUint64(target)),
		}
		f.probe.Reentries = nil

		_, err := f.sessions[1].Execute(target)
		require.NoError(t, err)

		require.Len(t, f.probe.Reentries, 1)
		assert.ErrorIs(t, f.probe.Reentries[0], ErrReentrantCall)
		assert.Equal(t, custody.ErrStateConflict, custody.KindOf(f.probe.Reentries[0]))
	}

	assert.Equal(t, 2, f.probe.Calls)
	assert.Equal(t, []uint64{other, index}, f.wallet.TransactionIDs(0, 2, false, true))
}

func Test_Wallet_InvocationFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2, 1)
	index := f.approve(t, f.ping(), 1)

	f.probe.Fail = errProbe

	_, err := f.sessions[0].Execute(index)
	assert.ErrorIs(t, err, errProbe)
	assert.Equal(t, custody.ErrInvocation, custody.KindOf(err))

	var invocation *custody.InvocationError
	require.ErrorAs(t, err, &invocation)
	assert.Equal(t, f.probe.Address(), invocation.Target)

	assert.False(t, f.wallet.txs[index].executed)
	assert.Equal(t, 0, f.probe.Calls)

	// retry after the target recovers
	f.probe.Fail = nil

	_, err = f.sessions[0].Execute(index)
	require.NoError(t, err)
	assert.Equal(t, 1, f.probe.Calls)
}

func Test_Wallet_Events(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2, 1)

	r, err := f.vm.Transact(
		f.owners[0],
		f.wallet.Address(),
		nil,
		custody.MustPack(ABI, "submitAndConfirmTransaction", f.probe.Address(), big.NewInt(0), []byte("ping")),
	)
	require.NoError(t, err)

	names := func(r *vm.Receipt) []string {
		out := make([]string, 0, len(r.Logs))

		for _, l := range r.Logs {
			name, _, err := custody.DecodeLog(ABI, l)
			require.NoError(t, err)

			out = append(out, name)
		}

		return out
	}

	assert.Equal(t, []string{"Submission", "Confirmation"}, names(r))

	_, fields, err := custody.DecodeLog(ABI, r.Logs[1])
	require.NoError(t, err)
	assert.Equal(t, f.owners[0], fields["sender"])
	assert.Equal(t, "0", fields["transactionId"].(*big.Int).String())

	r, err = f.vm.Transact(f.owners[1], f.wallet.Address(), nil, custody.MustPack(ABI, "executeTransaction", big.NewInt(0)))
	require.NoError(t, err)
	assert.Equal(t, []string{"Execution"}, names(r))

	r, err = f.vm.Transact(f.owners[0], f.wallet.Address(), big.NewInt(0), nil)
	require.NoError(t, err)
	assert.Empty(t, r.Logs, "zero value deposits emit nothing")
}
