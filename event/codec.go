package event

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/go-faster/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Log field numbers of the wire format
const (
	fieldAddress     protowire.Number = 1
	fieldTopics      protowire.Number = 2
	fieldData        protowire.Number = 3
	fieldBlockNumber protowire.Number = 4
	fieldTxHash      protowire.Number = 5
	fieldTxIndex     protowire.Number = 6
	fieldBlockHash   protowire.Number = 7
	fieldIndex       protowire.Number = 8
	fieldRemoved     protowire.Number = 9
)

// Export stream field number: every log is one length-delimited record
const fieldLog protowire.Number = 1

var ErrMalformedLog = errors.New("event: malformed log encoding")

// MarshalLog encodes log as a protobuf message
func MarshalLog(log *types.Log) []byte {
	var b []byte

	b = protowire.AppendTag(b, fieldAddress, protowire.BytesType)
	b = protowire.AppendBytes(b, log.Address.Bytes())

	for _, topic := range log.Topics {
		b = protowire.AppendTag(b, fieldTopics, protowire.BytesType)
		b = protowire.AppendBytes(b, topic.Bytes())
	}

	if len(log.Data) > 0 {
		b = protowire.AppendTag(b, fieldData, protowire.BytesType)
		b = protowire.AppendBytes(b, log.Data)
	}

	b = protowire.AppendTag(b, fieldBlockNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, log.BlockNumber)

	b = protowire.AppendTag(b, fieldTxHash, protowire.BytesType)
	b = protowire.AppendBytes(b, log.TxHash.Bytes())

	b = protowire.AppendTag(b, fieldTxIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(log.TxIndex))

	b = protowire.AppendTag(b, fieldBlockHash, protowire.BytesType)
	b = protowire.AppendBytes(b, log.BlockHash.Bytes())

	b = protowire.AppendTag(b, fieldIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(log.Index))

	if log.Removed {
		b = protowire.AppendTag(b, fieldRemoved, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}

	return b
}

// UnmarshalLog decodes a log encoded by MarshalLog. Unknown fields are skipped
func UnmarshalLog(b []byte) (*types.Log, error) {
	log := &types.Log{Topics: make([]common.Hash, 0)}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.Wrapf(ErrMalformedLog, "tag: %v", protowire.ParseError(n))
		}

		b = b[n:]

		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, errors.Wrapf(ErrMalformedLog, "field %d: %v", num, protowire.ParseError(n))
			}

			b = b[n:]

			if err := setBytes(log, num, v); err != nil {
				return nil, err
			}

		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, errors.Wrapf(ErrMalformedLog, "field %d: %v", num, protowire.ParseError(n))
			}

			b = b[n:]

			setVarint(log, num, v)

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, errors.Wrapf(ErrMalformedLog, "field %d: %v", num, protowire.ParseError(n))
			}

			b = b[n:]
		}
	}

	return log, nil
}

func setBytes(log *types.Log, num protowire.Number, v []byte) error {
	switch num {
	case fieldAddress:
		if len(v) != common.AddressLength {
			return errors.Wrapf(ErrMalformedLog, "address of %d bytes", len(v))
		}

		log.Address = common.BytesToAddress(v)
	case fieldTopics, fieldTxHash, fieldBlockHash:
		if len(v) != common.HashLength {
			return errors.Wrapf(ErrMalformedLog, "hash of %d bytes in field %d", len(v), num)
		}

		h := common.BytesToHash(v)

		switch num {
		case fieldTopics:
			log.Topics = append(log.Topics, h)
		case fieldTxHash:
			log.TxHash = h
		default:
			log.BlockHash = h
		}
	case fieldData:
		log.Data = append([]byte(nil), v...)
	}

	return nil
}

func setVarint(log *types.Log, num protowire.Number, v uint64) {
	switch num {
	case fieldBlockNumber:
		log.BlockNumber = v
	case fieldTxIndex:
		log.TxIndex = uint(v)
	case fieldIndex:
		log.Index = uint(v)
	case fieldRemoved:
		log.Removed = protowire.DecodeBool(v)
	}
}

// Export writes logs to w as a stream of length-delimited log records
func Export(w io.Writer, logs []*types.Log) error {
	var b []byte

	for _, log := range logs {
		b = protowire.AppendTag(b, fieldLog, protowire.BytesType)
		b = protowire.AppendBytes(b, MarshalLog(log))
	}

	if _, err := w.Write(b); err != nil {
		return errors.Wrap(err, "write logs")
	}

	return nil
}

// Import reads a stream written by Export
func Import(r io.Reader) ([]*types.Log, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read logs")
	}

	logs := make([]*types.Log, 0)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 || num != fieldLog || typ != protowire.BytesType {
			return nil, errors.Wrapf(ErrMalformedLog, "record %d", len(logs))
		}

		b = b[n:]

		record, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, errors.Wrapf(ErrMalformedLog, "record %d: %v", len(logs), protowire.ParseError(n))
		}

		b = b[n:]

		log, err := UnmarshalLog(record)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", len(logs))
		}

		logs = append(logs, log)
	}

	return logs, nil
}
