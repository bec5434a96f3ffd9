package custody

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-faster/errors"
)

var (
	ErrUnknownMethod = NewError(ErrValidation, "unknown method")
	ErrMalformedCall = NewError(ErrValidation, "malformed call data")
	ErrNotPayable    = NewError(ErrValidation, "method does not accept value")
)

// MustParseABI parses a JSON ABI definition and panics if it is invalid
func MustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(errors.Wrap(err, "parse abi").Error())
	}

	return parsed
}

// MergeABI combines the methods and events of several definitions into one.
// Later definitions win on name collisions
func MergeABI(defs ...abi.ABI) abi.ABI {
	merged := abi.ABI{
		Methods: make(map[string]abi.Method),
		Events:  make(map[string]abi.Event),
		Errors:  make(map[string]abi.Error),
	}

	for _, def := range defs {
		for name, m := range def.Methods {
			merged.Methods[name] = m
		}

		for name, ev := range def.Events {
			merged.Events[name] = ev
		}

		for name, e := range def.Errors {
			merged.Errors[name] = e
		}
	}

	return merged
}

// Selector returns the 4-byte function selector of a canonical signature such as "mint(address,uint256)"
func Selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

// DecodeCall resolves the method addressed by data and unpacks its arguments
func DecodeCall(contractABI abi.ABI, data []byte) (*abi.Method, []any, error) {
	if len(data) < 4 {
		return nil, nil, ErrMalformedCall
	}

	m, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, ErrUnknownMethod
	}

	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, errors.Wrapf(ErrMalformedCall, "%s: %v", m.Name, err)
	}

	return m, args, nil
}

// Arg returns the i-th unpacked argument as T
func Arg[T any](args []any, i int) T {
	return args[i].(T) //nolint:forcetypeassert // guaranteed by the abi definition
}

// MustPack encodes a call to the named method and panics on an encoding error
func MustPack(contractABI abi.ABI, method string, args ...any) []byte {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		panic(errors.Wrapf(err, "pack %s", method).Error())
	}

	return data
}

// NewLog builds the log of the named event emitted by addr. Indexed inputs
// become topics, the remaining inputs are ABI packed into the log data.
// It panics if args do not match the event definition
func NewLog(addr common.Address, contractABI abi.ABI, name string, args ...any) *types.Log {
	ev, ok := contractABI.Events[name]
	if !ok {
		panic("unknown event " + name)
	}

	if len(args) != len(ev.Inputs) {
		panic("argument count mismatch for event " + name)
	}

	var (
		topics = []common.Hash{ev.ID}
		data   = make([]any, 0, len(args))
	)

	for i, input := range ev.Inputs {
		if !input.Indexed {
			data = append(data, args[i])

			continue
		}

		topic, err := abi.MakeTopics([]any{args[i]})
		if err != nil {
			panic(errors.Wrapf(err, "topic %s.%s", name, input.Name).Error())
		}

		topics = append(topics, topic[0][0])
	}

	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		panic(errors.Wrapf(err, "pack event %s", name).Error())
	}

	return &types.Log{
		Address: addr,
		Topics:  topics,
		Data:    packed,
	}
}

// DecodeLog unpacks every input of the event that produced log into a map keyed by input name
func DecodeLog(contractABI abi.ABI, log *types.Log) (string, map[string]any, error) {
	if len(log.Topics) == 0 {
		return "", nil, errors.New("anonymous log")
	}

	ev, err := contractABI.EventByID(log.Topics[0])
	if err != nil {
		return "", nil, err
	}

	fields := make(map[string]any)
	if err := ev.Inputs.UnpackIntoMap(fields, log.Data); err != nil {
		return "", nil, errors.Wrapf(err, "unpack %s", ev.Name)
	}

	var indexed abi.Arguments

	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}

	if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
		return "", nil, errors.Wrapf(err, "topics %s", ev.Name)
	}

	return ev.Name, fields, nil
}
