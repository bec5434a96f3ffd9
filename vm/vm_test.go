package vm

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/test"
	"github.com/sig-0/go-custody/test/mock"
)

var errProbe = errors.New("probe failure")

type sink struct {
	logs []*types.Log
}

func (s *sink) Append(logs []*types.Log) {
	s.logs = append(s.logs, logs...)
}

// emitter is a contract that emits one log per call and journals a counter
type emitter struct {
	host  custody.Host
	self  common.Address
	count int
	fail  bool
}

func (e *emitter) Address() common.Address { return e.self }

func (e *emitter) Run(_ common.Address, _ *big.Int, data []byte) ([]byte, error) {
	prev := e.count
	e.host.Record(func() { e.count = prev })
	e.count++
	e.host.Emit(&types.Log{Address: e.self, Data: data})

	if e.fail {
		return nil, errProbe
	}

	return data, nil
}

func deployProbe(t *testing.T, v *VM, deployer common.Address) *mock.Probe {
	t.Helper()

	p, err := Deploy(v, deployer, mock.NewProbe)
	require.NoError(t, err)

	return p
}

func Test_VM_DeployAddresses(t *testing.T) {
	t.Parallel()

	var (
		v        = New()
		deployer = test.NewECDSAKey().Address()
	)

	first := deployProbe(t, v, deployer)
	second := deployProbe(t, v, deployer)

	assert.NotEqual(t, first.Address(), second.Address())

	_, ok := v.Contract(first.Address())
	assert.True(t, ok)
}

func Test_VM_TransactCommits(t *testing.T) {
	t.Parallel()

	var (
		s    = &sink{}
		v    = New(WithSink(s))
		from = test.NewECDSAKey().Address()
	)

	e, err := Deploy(v, from, func(h custody.Host, self common.Address) (*emitter, error) {
		return &emitter{host: h, self: self}, nil
	})
	require.NoError(t, err)

	r, err := v.Transact(from, e.Address(), nil, []byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, []byte("hello"), r.ReturnData)
	assert.Equal(t, 1, e.count)
	require.Len(t, r.Logs, 1)
	assert.Equal(t, r.BlockNumber, r.Logs[0].BlockNumber)
	assert.Equal(t, r.TxHash, r.Logs[0].TxHash)
	assert.Len(t, s.logs, 1)
}

func Test_VM_TransactRevertsEverything(t *testing.T) {
	t.Parallel()

	var (
		s    = &sink{}
		v    = New(WithSink(s))
		from = test.NewECDSAKey().Address()
	)

	e, err := Deploy(v, from, func(h custody.Host, self common.Address) (*emitter, error) {
		return &emitter{host: h, self: self, fail: true}, nil
	})
	require.NoError(t, err)
	require.NoError(t, v.Fund(from, big.NewInt(10)))

	_, err = v.Transact(from, e.Address(), big.NewInt(4), []byte("x"))
	assert.ErrorIs(t, err, errProbe)

	assert.Equal(t, 0, e.count)
	assert.Empty(t, s.logs)
	assert.Equal(t, "10", v.Balance(from).String())
	assert.Zero(t, v.Balance(e.Address()).Sign())
}

func Test_VM_NestedFailureIsContained(t *testing.T) {
	t.Parallel()

	var (
		v    = New()
		from = test.NewECDSAKey().Address()
	)

	inner := deployProbe(t, v, from)
	inner.Fail = errProbe

	outer := deployProbe(t, v, from)
	outer.Reenter = &custody.Call{Target: inner.Address(), Data: []byte("inner")}

	_, err := v.Transact(from, outer.Address(), nil, []byte("outer"))
	require.NoError(t, err)

	assert.Equal(t, 1, outer.Calls)
	assert.Equal(t, 0, inner.Calls, "failed nested call must be rolled back")
	require.Len(t, outer.Reentries, 1)
	assert.ErrorIs(t, outer.Reentries[0], errProbe)
}

func Test_VM_ValueTransfer(t *testing.T) {
	t.Parallel()

	table := []struct {
		name     string
		fund     int64
		value    int64
		expected error
	}{
		{
			name:  "funded transfer",
			fund:  10,
			value: 10,
		},

		{
			name:     "insufficient balance",
			fund:     1,
			value:    2,
			expected: ErrInsufficientFunds,
		},

		{
			name:     "negative value",
			fund:     1,
			value:    -1,
			expected: ErrValueOverflow,
		},
	}

	for _, tt := range table {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				v    = New()
				from = test.NewECDSAKey().Address()
				to   = test.NewECDSAKey().Address()
			)

			require.NoError(t, v.Fund(from, big.NewInt(tt.fund)))

			_, err := v.Transact(from, to, big.NewInt(tt.value), nil)
			assert.ErrorIs(t, err, tt.expected)

			if tt.expected == nil {
				assert.Zero(t, big.NewInt(tt.value).Cmp(v.Balance(to)))
			}
		})
	}
}

func Test_VM_CallWithDataToExternalAccount(t *testing.T) {
	t.Parallel()

	v := New()

	_, err := v.Transact(test.NewECDSAKey().Address(), test.NewECDSAKey().Address(), nil, []byte{1})
	assert.ErrorIs(t, err, ErrNoContract)
	assert.ErrorIs(t, err, custody.ErrNotFound)
}

func Test_VM_MaxCallDepth(t *testing.T) {
	t.Parallel()

	var (
		v    = New(WithMaxCallDepth(2))
		from = test.NewECDSAKey().Address()
	)

	p := deployProbe(t, v, from)
	// the probe calls itself until the depth cap rejects the innermost call
	p.Reenter = &custody.Call{Target: p.Address(), Data: []byte("again")}

	_, err := v.Transact(from, p.Address(), nil, []byte("start"))
	require.NoError(t, err)

	// innermost attempt is recorded first
	require.Len(t, p.Reentries, 2)
	assert.ErrorIs(t, p.Reentries[0], ErrCallDepth)
	assert.NoError(t, p.Reentries[1])
	assert.Equal(t, 2, p.Calls)
}

func Test_VM_StaticCallDiscardsEffects(t *testing.T) {
	t.Parallel()

	var (
		v    = New()
		from = test.NewECDSAKey().Address()
	)

	p := deployProbe(t, v, from)
	p.Return = []byte("view")

	ret, err := v.StaticCall(from, p.Address(), []byte("read"))
	require.NoError(t, err)

	assert.Equal(t, []byte("view"), ret)
	assert.Equal(t, 0, p.Calls)
}

func Test_VM_Clock(t *testing.T) {
	t.Parallel()

	start := time.Unix(1_700_000_000, 0)
	v := New(WithStartTime(start))

	assert.Equal(t, uint64(start.Unix()), v.Now())

	v.Advance(time.Hour)
	assert.Equal(t, uint64(start.Unix())+3600, v.Now())

	v.SetTime(42)
	assert.Equal(t, uint64(42), v.Now())
}

func Test_VM_Metrics(t *testing.T) {
	t.Parallel()

	var (
		reg  = prometheus.NewRegistry()
		v    = New(WithMetrics(reg))
		from = test.NewECDSAKey().Address()
	)

	p := deployProbe(t, v, from)

	_, err := v.Transact(from, p.Address(), nil, []byte("ok"))
	require.NoError(t, err)

	p.Fail = errProbe
	_, err = v.Transact(from, p.Address(), nil, []byte("fail"))
	require.Error(t, err)

	// the deployment counts as a committed transaction
	assert.Equal(t, float64(2), testutil.ToFloat64(v.metrics.transactions.WithLabelValues(outcomeCommitted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(v.metrics.transactions.WithLabelValues(outcomeReverted)))
}
