package roles

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/test"
)

var minterRole = ID("MINTER_ROLE")

type journal struct {
	undo []func()
	logs []*types.Log
}

func (j *journal) Record(undo func()) { j.undo = append(j.undo, undo) }

func (j *journal) Emit(log *types.Log) { j.logs = append(j.logs, log) }

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}

	j.undo = nil
}

func newRegistry(t *testing.T, admin common.Address) (*Registry, *journal) {
	t.Helper()

	j := &journal{}
	r := New(j, test.NewECDSAKey().Address())
	require.NoError(t, r.Setup(DefaultAdminRole, admin, admin))

	return r, j
}

func Test_Registry_Grant(t *testing.T) {
	t.Parallel()

	addrs := test.Addresses(3)
	admin, stranger, account := addrs[0], addrs[1], addrs[2]

	table := []struct {
		name     string
		caller   common.Address
		account  common.Address
		expected error
	}{
		{
			name:    "admin grants",
			caller:  admin,
			account: account,
		},

		{
			name:     "stranger cannot grant",
			caller:   stranger,
			account:  account,
			expected: ErrMissingRole,
		},

		{
			name:     "zero account",
			caller:   admin,
			account:  common.Address{},
			expected: ErrZeroAddress,
		},
	}

	for _, tt := range table {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, _ := newRegistry(t, admin)

			err := r.Grant(tt.caller, minterRole, tt.account)
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, tt.expected == nil, r.HasRole(minterRole, tt.account))
		})
	}
}

func Test_Registry_MissingRoleKind(t *testing.T) {
	t.Parallel()

	addrs := test.Addresses(2)
	r, _ := newRegistry(t, addrs[0])

	err := r.Grant(addrs[1], minterRole, addrs[1])
	assert.ErrorIs(t, err, custody.ErrUnauthorized)
}

func Test_Registry_RevokeAndRenounce(t *testing.T) {
	t.Parallel()

	addrs := test.Addresses(3)
	admin, holder, other := addrs[0], addrs[1], addrs[2]

	r, _ := newRegistry(t, admin)
	require.NoError(t, r.Grant(admin, minterRole, holder))
	require.NoError(t, r.Grant(admin, minterRole, other))

	assert.ErrorIs(t, r.Revoke(holder, minterRole, other), ErrMissingRole)

	require.NoError(t, r.Revoke(admin, minterRole, other))
	assert.False(t, r.HasRole(minterRole, other))

	// revoking a role that is not held is a no-op
	require.NoError(t, r.Revoke(admin, minterRole, other))

	assert.ErrorIs(t, r.Renounce(holder, minterRole, other), ErrBadConfirmation)
	require.NoError(t, r.Renounce(holder, minterRole, holder))
	assert.False(t, r.HasRole(minterRole, holder))
}

func Test_Registry_RoleAdmin(t *testing.T) {
	t.Parallel()

	var (
		addrs       = test.Addresses(3)
		admin       = addrs[0]
		manager     = addrs[1]
		account     = addrs[2]
		managerRole = ID("MANAGER_ROLE")
	)

	r, _ := newRegistry(t, admin)
	r.SetRoleAdmin(minterRole, managerRole)
	require.NoError(t, r.Grant(admin, managerRole, manager))

	assert.Equal(t, managerRole, r.RoleAdmin(minterRole))
	assert.ErrorIs(t, r.Grant(admin, minterRole, account), ErrMissingRole)
	assert.NoError(t, r.Grant(manager, minterRole, account))
}

func Test_Registry_MembersSorted(t *testing.T) {
	t.Parallel()

	addrs := test.Addresses(4)
	r, _ := newRegistry(t, addrs[0])

	for _, a := range addrs[1:] {
		require.NoError(t, r.Grant(addrs[0], minterRole, a))
	}

	members := r.Members(minterRole)
	require.Len(t, members, 3)

	for i := 1; i < len(members); i++ {
		assert.Less(t, members[i-1].Hex(), members[i].Hex())
	}

	assert.Empty(t, r.Members(ID("UNKNOWN")))
}

func Test_Registry_Rollback(t *testing.T) {
	t.Parallel()

	addrs := test.Addresses(2)
	r, j := newRegistry(t, addrs[0])
	j.undo = nil

	require.NoError(t, r.Grant(addrs[0], minterRole, addrs[1]))
	require.True(t, r.HasRole(minterRole, addrs[1]))

	j.rollback()

	assert.False(t, r.HasRole(minterRole, addrs[1]))
	assert.True(t, r.HasRole(DefaultAdminRole, addrs[0]))
}

func Test_Registry_Events(t *testing.T) {
	t.Parallel()

	addrs := test.Addresses(2)
	r, j := newRegistry(t, addrs[0])

	require.NoError(t, r.Grant(addrs[0], minterRole, addrs[1]))

	require.Len(t, j.logs, 2)

	name, fields, err := custody.DecodeLog(ABI, j.logs[1])
	require.NoError(t, err)

	assert.Equal(t, "RoleGranted", name)
	assert.Equal(t, [32]byte(minterRole), fields["role"])
	assert.Equal(t, addrs[1], fields["account"])
	assert.Equal(t, addrs[0], fields["sender"])
}

func Test_Registry_Dispatch(t *testing.T) {
	t.Parallel()

	addrs := test.Addresses(2)
	r, _ := newRegistry(t, addrs[0])

	data := custody.MustPack(ABI, "grantRole", minterRole, addrs[1])
	m, args, err := custody.DecodeCall(ABI, data)
	require.NoError(t, err)

	_, handled, err := r.Dispatch(addrs[0], m, args)
	require.NoError(t, err)
	assert.True(t, handled)

	data = custody.MustPack(ABI, "hasRole", minterRole, addrs[1])
	m, args, err = custody.DecodeCall(ABI, data)
	require.NoError(t, err)

	ret, handled, err := r.Dispatch(addrs[1], m, args)
	require.NoError(t, err)
	require.True(t, handled)

	out, err := m.Outputs.Unpack(ret)
	require.NoError(t, err)
	assert.Equal(t, true, out[0])
}
