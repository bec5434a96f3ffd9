package timelock

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sig-0/go-custody"
)

// Run dispatches an external call. updateDelay is rejected here regardless
// of the caller; see runSelf
func (t *Timelock) Run(caller common.Address, value *big.Int, data []byte) ([]byte, error) {
	value = custody.CallValue(value)

	if len(data) == 0 {
		if value.Sign() > 0 {
			t.host.Emit(custody.NewLog(t.self, ABI, "Deposit", caller, new(big.Int).Set(value)))
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

	return t.dispatch(caller, m, args)
}

// runSelf is the privileged channel, reached only from execute for
// operations targeting the controller itself
func (t *Timelock) runSelf(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	m, args, err := custody.DecodeCall(ABI, data)
	if err != nil {
		return nil, err
	}

	if m.Name == "updateDelay" {
		delay := custody.Arg[*big.Int](args, 0)
		if !delay.IsUint64() {
			return nil, ErrDelayOutOfRange
		}

		return nil, t.updateDelay(delay.Uint64())
	}

	return t.dispatch(t.self, m, args)
}

func (t *Timelock) dispatch(caller common.Address, m *abi.Method, args []any) ([]byte, error) {
	switch m.Name {
	case "queueTransaction":
		op, err := operationArgs(args)
		if err != nil {
			return nil, err
		}

		fingerprint, err := t.queue(caller, op)
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(fingerprint)

	case "cancelTransaction":
		op, err := operationArgs(args)
		if err != nil {
			return nil, err
		}

		return nil, t.cancel(caller, op)

	case "executeTransaction":
		// the guard is checked before any argument is looked at
		if t.executing {
			return nil, ErrReentrantCall
		}

		op, err := operationArgs(args)
		if err != nil {
			return nil, err
		}

		ret, err := t.execute(caller, op)
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(ret)

	case "delay":
		return m.Outputs.Pack(new(big.Int).SetUint64(t.delay))

	case "isQueued":
		return m.Outputs.Pack(t.IsQueued(common.Hash(custody.Arg[[32]byte](args, 0))))

	case "getFingerprint":
		op, err := operationArgs(args)
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(Fingerprint(op))

	case "GRACE_PERIOD":
		return m.Outputs.Pack(seconds(GracePeriod))

	case "MINIMUM_DELAY":
		return m.Outputs.Pack(seconds(MinDelay))

	case "MAXIMUM_DELAY":
		return m.Outputs.Pack(seconds(MaxDelay))
	}

	ret, handled, err := t.roles.Dispatch(caller, m, args)
	if !handled {
		return nil, custody.ErrUnknownMethod
	}

	return ret, err
}

func operationArgs(args []any) (Operation, error) {
	eta := custody.Arg[*big.Int](args, 4)
	if !eta.IsUint64() {
		return Operation{}, ErrEtaOutOfRange
	}

	return Operation{
		Target:    custody.Arg[common.Address](args, 0),
		Value:     custody.Arg[*big.Int](args, 1),
		Signature: custody.Arg[string](args, 2),
		Data:      custody.Arg[[]byte](args, 3),
		ETA:       eta.Uint64(),
	}, nil
}

func seconds(d time.Duration) *big.Int {
	return big.NewInt(int64(d / time.Second))
}
