package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sig-0/go-custody"
)

// Run dispatches a call. The ledger holds no native value
func (l *Ledger) Run(caller common.Address, value *big.Int, data []byte) ([]byte, error) {
	if custody.CallValue(value).Sign() != 0 {
		return nil, custody.ErrNotPayable
	}

	m, args, err := custody.DecodeCall(ABI, data)
	if err != nil {
		return nil, err
	}

	return l.dispatch(caller, m, args)
}

//nolint:gocyclo // flat method switch
func (l *Ledger) dispatch(caller common.Address, m *abi.Method, args []any) ([]byte, error) {
	switch m.Name {
	case "name":
		return m.Outputs.Pack(l.name)

	case "symbol":
		return m.Outputs.Pack(l.symbol)

	case "decimals":
		return m.Outputs.Pack(uint8(Decimals))

	case "totalSupply":
		return m.Outputs.Pack(l.TotalSupply())

	case "balanceOf":
		return m.Outputs.Pack(l.BalanceOf(custody.Arg[common.Address](args, 0)))

	case "allowance":
		return m.Outputs.Pack(l.Allowance(custody.Arg[common.Address](args, 0), custody.Arg[common.Address](args, 1)))

	case "paused":
		return m.Outputs.Pack(l.paused)

	case "isBlacklisted":
		return m.Outputs.Pack(l.IsBlacklisted(custody.Arg[common.Address](args, 0)))

	case "transfer":
		value, err := amount(custody.Arg[*big.Int](args, 1))
		if err != nil {
			return nil, err
		}

		if err := l.transfer(caller, custody.Arg[common.Address](args, 0), value); err != nil {
			return nil, err
		}

		return m.Outputs.Pack(true)

	case "approve":
		value, err := amount(custody.Arg[*big.Int](args, 1))
		if err != nil {
			return nil, err
		}

		if err := l.approve(caller, custody.Arg[common.Address](args, 0), value); err != nil {
			return nil, err
		}

		return m.Outputs.Pack(true)

	case "transferFrom":
		value, err := amount(custody.Arg[*big.Int](args, 2))
		if err != nil {
			return nil, err
		}

		from, to := custody.Arg[common.Address](args, 0), custody.Arg[common.Address](args, 1)
		if err := l.transferFrom(caller, from, to, value); err != nil {
			return nil, err
		}

		return m.Outputs.Pack(true)

	case "burn":
		value, err := amount(custody.Arg[*big.Int](args, 0))
		if err != nil {
			return nil, err
		}

		return nil, l.burn(caller, value)

	case "mint":
		value, err := amount(custody.Arg[*big.Int](args, 1))
		if err != nil {
			return nil, err
		}

		return nil, l.mint(caller, custody.Arg[common.Address](args, 0), value)

	case "pause":
		return nil, l.pause(caller)

	case "unpause":
		return nil, l.unpause(caller)

	case "blacklist":
		return nil, l.blacklist(caller, custody.Arg[common.Address](args, 0))

	case "unBlacklist":
		return nil, l.unBlacklist(caller, custody.Arg[common.Address](args, 0))

	case "batchBlacklist", "batchUnBlacklist":
		affected, err := l.batchBlacklist(caller, custody.Arg[[]common.Address](args, 0), m.Name == "batchBlacklist")
		if err != nil {
			return nil, err
		}

		return m.Outputs.Pack(new(big.Int).SetUint64(affected))
	}

	ret, handled, err := l.roles.Dispatch(caller, m, args)
	if !handled {
		return nil, custody.ErrUnknownMethod
	}

	return ret, err
}
