package event

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Filter selects logs by emitter and topics. Empty criteria match everything.
// Topics[i] lists the accepted values of the i-th topic; an empty position
// accepts any value
type Filter struct {
	Addresses []common.Address
	Topics    [][]common.Hash
	FromBlock uint64
}

// Match reports whether log satisfies every criterion of f
func (f Filter) Match(log *types.Log) bool {
	if log.BlockNumber < f.FromBlock {
		return false
	}

	if len(f.Addresses) > 0 && !includes(f.Addresses, log.Address) {
		return false
	}

	if len(f.Topics) > len(log.Topics) {
		return false
	}

	for i, accepted := range f.Topics {
		if len(accepted) > 0 && !includes(accepted, log.Topics[i]) {
			return false
		}
	}

	return true
}

func includes[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}

	return false
}
