// Package roles implements a registry of named permissions per identity.
// Every role has an admin role whose holders may grant and revoke it;
// DefaultAdminRole administers every role unless configured otherwise
package roles

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-faster/errors"

	"github.com/sig-0/go-custody"
)

// DefaultAdminRole is the zero role, admin of every role by default
var DefaultAdminRole = common.Hash{}

var (
	ErrMissingRole     = custody.NewError(custody.ErrUnauthorized, "roles: account is missing role")
	ErrBadConfirmation = custody.NewError(custody.ErrUnauthorized, "roles: can only renounce roles for self")
	ErrZeroAddress     = custody.NewError(custody.ErrValidation, "roles: zero address")
)

// ID returns the identifier of a named role
func ID(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// Host is the part of the execution environment the registry needs
type Host interface {
	custody.Journal
	custody.Emitter
}

type role struct {
	members map[common.Address]struct{}
	admin   common.Hash
}

// Registry tracks role assignments on behalf of the contract deployed at self
type Registry struct {
	host  Host
	self  common.Address
	roles map[common.Hash]*role
}

func New(host Host, self common.Address) *Registry {
	return &Registry{
		host:  host,
		self:  self,
		roles: make(map[common.Hash]*role),
	}
}

func (r *Registry) HasRole(id common.Hash, account common.Address) bool {
	ro, ok := r.roles[id]
	if !ok {
		return false
	}

	_, ok = ro.members[account]

	return ok
}

// RoleAdmin returns the role whose holders administer id
func (r *Registry) RoleAdmin(id common.Hash) common.Hash {
	if ro, ok := r.roles[id]; ok {
		return ro.admin
	}

	return DefaultAdminRole
}

// Members returns the holders of id sorted by address
func (r *Registry) Members(id common.Hash) []common.Address {
	ro, ok := r.roles[id]
	if !ok {
		return []common.Address{}
	}

	members := make([]common.Address, 0, len(ro.members))
	for m := range ro.members {
		members = append(members, m)
	}

	sort.Slice(members, func(i, j int) bool {
		return bytes.Compare(members[i].Bytes(), members[j].Bytes()) < 0
	})

	return members
}

// Check returns ErrMissingRole unless account holds at least one of ids
func (r *Registry) Check(account common.Address, ids ...common.Hash) error {
	for _, id := range ids {
		if r.HasRole(id, account) {
			return nil
		}
	}

	return errors.Wrapf(ErrMissingRole, "%s", account.Hex())
}

// Grant gives account the role id. The caller must hold the admin role of id
func (r *Registry) Grant(caller common.Address, id common.Hash, account common.Address) error {
	if err := r.Check(caller, r.RoleAdmin(id)); err != nil {
		return err
	}

	return r.Setup(id, account, caller)
}

// Revoke takes the role id from account. The caller must hold the admin role of id
func (r *Registry) Revoke(caller common.Address, id common.Hash, account common.Address) error {
	if err := r.Check(caller, r.RoleAdmin(id)); err != nil {
		return err
	}

	r.revoke(id, account, caller)

	return nil
}

// Renounce drops a role held by the caller. confirmation must equal the caller
func (r *Registry) Renounce(caller common.Address, id common.Hash, confirmation common.Address) error {
	if caller != confirmation {
		return ErrBadConfirmation
	}

	r.revoke(id, caller, caller)

	return nil
}

// Setup grants id to account without an authorization check.
// Contracts use it to bootstrap roles at construction
func (r *Registry) Setup(id common.Hash, account, sender common.Address) error {
	if account == (common.Address{}) {
		return ErrZeroAddress
	}

	if r.HasRole(id, account) {
		return nil
	}

	ro := r.role(id)
	ro.members[account] = struct{}{}
	r.host.Record(func() { delete(ro.members, account) })

	r.host.Emit(custody.NewLog(r.self, ABI, "RoleGranted", id, account, sender))

	return nil
}

// SetRoleAdmin makes admin the administering role of id
func (r *Registry) SetRoleAdmin(id, admin common.Hash) {
	ro := r.role(id)
	prev := ro.admin
	ro.admin = admin
	r.host.Record(func() { ro.admin = prev })

	r.host.Emit(custody.NewLog(r.self, ABI, "RoleAdminChanged", id, prev, admin))
}

func (r *Registry) revoke(id common.Hash, account, sender common.Address) {
	if !r.HasRole(id, account) {
		return
	}

	ro := r.roles[id]
	delete(ro.members, account)
	r.host.Record(func() { ro.members[account] = struct{}{} })

	r.host.Emit(custody.NewLog(r.self, ABI, "RoleRevoked", id, account, sender))
}

func (r *Registry) role(id common.Hash) *role {
	ro, ok := r.roles[id]
	if !ok {
		ro = &role{members: make(map[common.Address]struct{}), admin: DefaultAdminRole}
		r.roles[id] = ro
		r.host.Record(func() { delete(r.roles, id) })
	}

	return ro
}

// Dispatch handles m if it belongs to the role administration surface.
// handled is false for any other method
func (r *Registry) Dispatch(caller common.Address, m *abi.Method, args []any) (ret []byte, handled bool, err error) {
	switch m.Name {
	case "grantRole":
		err = r.Grant(caller, roleArg(args, 0), custody.Arg[common.Address](args, 1))
	case "revokeRole":
		err = r.Revoke(caller, roleArg(args, 0), custody.Arg[common.Address](args, 1))
	case "renounceRole":
		err = r.Renounce(caller, roleArg(args, 0), custody.Arg[common.Address](args, 1))
	case "hasRole":
		ret, err = m.Outputs.Pack(r.HasRole(roleArg(args, 0), custody.Arg[common.Address](args, 1)))
	case "getRoleAdmin":
		ret, err = m.Outputs.Pack(r.RoleAdmin(roleArg(args, 0)))
	case "getRoleMembers":
		ret, err = m.Outputs.Pack(r.Members(roleArg(args, 0)))
	default:
		return nil, false, nil
	}

	return ret, true, err
}

func roleArg(args []any, i int) common.Hash {
	return common.Hash(custody.Arg[[32]byte](args, i))
}
