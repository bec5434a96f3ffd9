// Package custody holds the contracts shared by the quorum wallet, the delay
// controller and the managed ledger: the execution capability each component
// is handed, the call surface each component exposes and the error taxonomy
// every rejection belongs to.
package custody

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Contract is a component deployed at an address that handles calls routed to it
type Contract interface {
	// Address returns the address this contract is deployed at
	Address() common.Address

	// Run handles a call from caller carrying value and ABI encoded data.
	// Any returned error rejects the call and everything it mutated
	Run(caller common.Address, value *big.Int, data []byte) ([]byte, error)
}

/** Capabilities the execution environment hands to deployed contracts **/

type (
	// Clock reports the timestamp (unix seconds) of the transaction being applied
	Clock interface {
		Now() uint64
	}

	// Invoker performs a nested call. A failed call has all of its effects reverted
	// before the error is returned
	Invoker interface {
		Call(from, to common.Address, value *big.Int, data []byte) ([]byte, error)
	}

	// Journal records the inverse of a state mutation so the environment can roll it back
	Journal interface {
		Record(undo func())
	}

	// Emitter appends an event to the log of the current transaction
	Emitter interface {
		Emit(log *types.Log)
	}

	// Host bundles every capability a contract needs from its execution environment
	Host interface {
		Clock
		Invoker
		Journal
		Emitter
	}
)

// Call is an encoded invocation: the target, the native value and the payload
type Call struct {
	Target common.Address
	Value  *big.Int
	Data   []byte
}

// CallValue returns v, or zero if v is nil
func CallValue(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
