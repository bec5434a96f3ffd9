package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sig-0/go-custody"
)

// Run dispatches an external call. Owner management methods are rejected
// here regardless of the caller; see runSelf
func (w *Wallet) Run(caller common.Address, value *big.Int, data []byte) ([]byte, error) {
	value = custody.CallValue(value)

	if len(data) == 0 {
		if value.Sign() > 0 {
			w.emit("Deposit", caller, new(big.Int).Set(value))
		}

		return nil, nil
	}

	if value.Sign() != 0 {
		return nil, custody.ErrNotPayable
	}

	m, args, err := custody.DecodeCall(ABI, data)
	if err != nil {
		return nil, err
	}

	if _, ok := privileged[m.Name]; ok {
		return nil, ErrNotSelf
	}

	return w.dispatch(caller, m, args)
}

// runSelf is the privileged channel: it is reached only from execute, for
// approved transactions addressed to the wallet itself
func (w *Wallet) runSelf(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	m, args, err := custody.DecodeCall(ABI, data)
	if err != nil {
		return nil, err
	}

	switch m.Name {
	case "addOwner":
		return nil, w.addOwner(custody.Arg[common.Address](args, 0))
	case "removeOwner":
		return nil, w.removeOwner(custody.Arg[common.Address](args, 0))
	case "replaceOwner":
		return nil, w.replaceOwner(custody.Arg[common.Address](args, 0), custody.Arg[common.Address](args, 1))
	case "changeRequirement":
		required, ok := uint64Arg(args, 0)
		if !ok {
			return nil, ErrInvalidRequirement
		}

		return nil, w.changeRequirement(required)
	default:
		return w.dispatch(w.self, m, args)
	}
}

//nolint:gocyclo // flat method switch
func (w *Wallet) dispatch(caller common.Address, m *abi.Method, args []any) ([]byte, error) {
	switch m.Name {
	case "submitTransaction", "submitAndConfirmTransaction":
		submit := w.submit
		if m.Name == "submitAndConfirmTransaction" {
			submit = w.submitAndConfirm
		}

		index, err := submit(
			caller,
			custody.Arg[common.Address](args, 0),
			custody.Arg[*big.Int](args, 1),
			custody.Arg[[]byte](args, 2),
		)
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(toBig(index))

	case "confirmTransaction":
		index, ok := uint64Arg(args, 0)
		if !ok {
			return nil, ErrTxNotFound
		}

		return nil, w.confirm(caller, index)

	case "batchConfirmTransactions":
		confirmed, err := w.batchConfirm(caller, indexesArg(args, 0))
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(toBig(confirmed))

	case "revokeConfirmation":
		index, ok := uint64Arg(args, 0)
		if !ok {
			return nil, ErrTxNotFound
		}

		return nil, w.revoke(caller, index)

	case "executeTransaction":
		index, ok := uint64Arg(args, 0)
		if !ok {
			return nil, ErrTxNotFound
		}

		ret, err := w.execute(caller, index)
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(ret)

	case "getOwners":
		return m.Outputs.Pack(w.Owners())

	case "isOwner":
		return m.Outputs.Pack(w.IsOwner(custody.Arg[common.Address](args, 0)))

	case "required":
		return m.Outputs.Pack(toBig(w.required))

	case "getTransactionCount":
		return m.Outputs.Pack(toBig(w.TransactionCount()))

	case "getTransaction":
		index, ok := uint64Arg(args, 0)
		if !ok {
			return nil, ErrTxNotFound
		}

		t, err := w.Transaction(index)
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(t.Target, t.Value, t.Data, t.Executed, toBig(t.Confirmations))

	case "getTransactionStatus":
		index, ok := uint64Arg(args, 0)
		if !ok {
			return nil, ErrTxNotFound
		}

		s, err := w.Status(index)
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(s.Executed, toBig(s.Confirmations), s.Executable)

	case "isConfirmed":
		index, ok := uint64Arg(args, 0)

		return m.Outputs.Pack(ok && w.IsConfirmed(index, custody.Arg[common.Address](args, 1)))

	case "getConfirmations":
		index, ok := uint64Arg(args, 0)
		if !ok {
			return nil, ErrTxNotFound
		}

		confirmed, err := w.Confirmations(index)
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(confirmed)

	case "getTransactionIds":
		from, _ := uint64Arg(args, 0)

		to, ok := uint64Arg(args, 1)
		if !ok {
			to = w.TransactionCount()
		}

		ids := w.TransactionIDs(from, to, custody.Arg[bool](args, 2), custody.Arg[bool](args, 3))

		return m.Outputs.Pack(toBigs(ids))

	case "batchGetTransactionStatus":
		executed, confirmations := w.BatchStatus(indexesArg(args, 0))

		return m.Outputs.Pack(executed, toBigs(confirmations))
	}

	return nil, custody.ErrUnknownMethod
}

func uint64Arg(args []any, i int) (uint64, bool) {
	n := custody.Arg[*big.Int](args, i)
	if !n.IsUint64() {
		return 0, false
	}

	return n.Uint64(), true
}

// indexesArg converts uint256 indexes, mapping unrepresentable ones past every valid index
func indexesArg(args []any, i int) []uint64 {
	raw := custody.Arg[[]*big.Int](args, i)
	indexes := make([]uint64, len(raw))

	for j, n := range raw {
		if !n.IsUint64() {
			indexes[j] = ^uint64(0)

			continue
		}

		indexes[j] = n.Uint64()
	}

	return indexes
}

func toBig(n uint64) *big.Int {
	return new(big.Int).SetUint64(n)
}

func toBigs(ns []uint64) []*big.Int {
	out := make([]*big.Int, len(ns))
	for i, n := range ns {
		out[i] = toBig(n)
	}

	return out
}
