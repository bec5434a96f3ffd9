package vm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-faster/errors"
)

// Backend applies and simulates calls. *VM is the only implementation
type Backend interface {
	Transact(from, to common.Address, value *big.Int, data []byte) (*Receipt, error)
	StaticCall(from, to common.Address, data []byte) ([]byte, error)
}

// BoundContract packs calls against a contract ABI and applies them through a Backend
type BoundContract struct {
	Backend Backend
	Address common.Address
	ABI     abi.ABI
}

// Transact applies a call to method as a transaction from `from` and unpacks its outputs
func (c BoundContract) Transact(from common.Address, value *big.Int, method string, args ...any) ([]any, *Receipt, error) {
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "pack %s", method)
	}

	r, err := c.Backend.Transact(from, c.Address, value, data)
	if err != nil {
		return nil, nil, err
	}

	out, err := c.ABI.Unpack(method, r.ReturnData)
	if err != nil {
		return nil, r, errors.Wrapf(err, "unpack %s", method)
	}

	return out, r, nil
}

// Call simulates a call to method from `from` and unpacks its outputs
func (c BoundContract) Call(from common.Address, method string, args ...any) ([]any, error) {
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}

	ret, err := c.Backend.StaticCall(from, c.Address, data)
	if err != nil {
		return nil, err
	}

	out, err := c.ABI.Unpack(method, ret)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}

	return out, nil
}
