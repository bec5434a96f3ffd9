// Package test provides identities and fixtures shared by the package tests
package test

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type ECDSAKey struct {
	*ecdsa.PrivateKey
}

func NewECDSAKey() ECDSAKey {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(fmt.Errorf("failed to generate ecdsa key: %w", err).Error())
	}

	return ECDSAKey{key}
}

func (k ECDSAKey) Address() common.Address {
	return crypto.PubkeyToAddress(k.PublicKey)
}

// Addresses returns n addresses backed by freshly generated keys
func Addresses(n int) []common.Address {
	addrs := make([]common.Address, 0, n)
	for i := 0; i < n; i++ {
		addrs = append(addrs, NewECDSAKey().Address())
	}

	return addrs
}

// Ether returns n * 10^18
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}
