// Package ledger implements the managed token ledger administered by the
// governance pipeline. Minting, pausing and blacklisting are gated by role;
// the governance address holds the admin role over all of them.
package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/roles"
)

// Decimals is the number of fractional digits of a token unit
const Decimals = 18

var (
	MinterRole      = roles.ID("MINTER_ROLE")
	PauserRole      = roles.ID("PAUSER_ROLE")
	BlacklisterRole = roles.ID("BLACKLISTER_ROLE")
)

// Params bootstraps a Ledger
type Params struct {
	Name   string
	Symbol string
	// InitialSupply is in whole tokens and is minted to Operator
	InitialSupply *big.Int
	// Operator receives the minter, pauser and blacklister roles
	Operator common.Address
	// Governance receives the admin role
	Governance common.Address
}

// Ledger is the managed token contract
type Ledger struct {
	host  custody.Host
	self  common.Address
	roles *roles.Registry

	name   string
	symbol string

	supply      *uint256.Int
	balances    map[common.Address]*uint256.Int
	allowances  map[common.Address]map[common.Address]*uint256.Int
	paused      bool
	blacklisted map[common.Address]struct{}
}

// Builder returns a vm.Deploy builder for a ledger bootstrapped with p
func Builder(p Params) func(custody.Host, common.Address) (*Ledger, error) {
	return func(host custody.Host, self common.Address) (*Ledger, error) {
		return New(host, self, p)
	}
}

func New(host custody.Host, self common.Address, p Params) (*Ledger, error) {
	if p.Operator == (common.Address{}) || p.Governance == (common.Address{}) {
		return nil, ErrZeroAddress
	}

	l := &Ledger{
		host:        host,
		self:        self,
		roles:       roles.New(host, self),
		name:        p.Name,
		symbol:      p.Symbol,
		supply:      new(uint256.Int),
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[common.Address]map[common.Address]*uint256.Int),
		blacklisted: make(map[common.Address]struct{}),
	}

	if err := l.roles.Setup(roles.DefaultAdminRole, p.Governance, self); err != nil {
		return nil, err
	}

	for _, role := range []common.Hash{MinterRole, PauserRole, BlacklisterRole} {
		if err := l.roles.Setup(role, p.Operator, self); err != nil {
			return nil, err
		}
	}

	if p.InitialSupply != nil && p.InitialSupply.Sign() != 0 {
		supply, err := amount(Scale(p.InitialSupply))
		if err != nil {
			return nil, err
		}

		if err := l.mintTo(p.Operator, supply); err != nil {
			return nil, err
		}
	}

	return l, nil
}

func (l *Ledger) Address() common.Address {
	return l.self
}

/** Views **/

func (l *Ledger) Name() string {
	return l.name
}

func (l *Ledger) Symbol() string {
	return l.symbol
}

func (l *Ledger) TotalSupply() *big.Int {
	return l.supply.ToBig()
}

func (l *Ledger) BalanceOf(account common.Address) *big.Int {
	return l.balanceOf(account).ToBig()
}

func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	return l.allowanceOf(owner, spender).ToBig()
}

func (l *Ledger) Paused() bool {
	return l.paused
}

func (l *Ledger) IsBlacklisted(account common.Address) bool {
	_, ok := l.blacklisted[account]

	return ok
}

func (l *Ledger) HasRole(role common.Hash, account common.Address) bool {
	return l.roles.HasRole(role, account)
}

/** Accounting **/

func (l *Ledger) transfer(caller, to common.Address, value *uint256.Int) error {
	if err := l.unrestricted(caller, to); err != nil {
		return err
	}

	return l.move(caller, to, value)
}

func (l *Ledger) approve(caller, spender common.Address, value *uint256.Int) error {
	if err := l.unrestricted(caller, spender); err != nil {
		return err
	}

	if spender == (common.Address{}) {
		return ErrZeroAddress
	}

	l.setAllowance(caller, spender, value)

	return nil
}

// transferFrom spends allowance of from granted to caller. The maximum
// allowance is never decreased
func (l *Ledger) transferFrom(caller, from, to common.Address, value *uint256.Int) error {
	if err := l.unrestricted(caller, from, to); err != nil {
		return err
	}

	allowance := l.allowanceOf(from, caller)
	if allowance.Lt(value) {
		return ErrInsufficientAllowance
	}

	if !allowance.Eq(maxUint256) {
		l.setAllowance(from, caller, new(uint256.Int).Sub(allowance, value))
	}

	return l.move(from, to, value)
}

func (l *Ledger) burn(caller common.Address, value *uint256.Int) error {
	if err := l.unrestricted(caller); err != nil {
		return err
	}

	balance := l.balanceOf(caller)
	if balance.Lt(value) {
		return ErrInsufficientBalance
	}

	l.setBalance(caller, new(uint256.Int).Sub(balance, value))
	l.setSupply(new(uint256.Int).Sub(l.supply, value))

	l.emit("Transfer", caller, common.Address{}, value.ToBig())

	return nil
}

/** Administration **/

// mint is not affected by pausing
func (l *Ledger) mint(caller, to common.Address, value *uint256.Int) error {
	if err := l.roles.Check(caller, MinterRole, roles.DefaultAdminRole); err != nil {
		return err
	}

	if l.IsBlacklisted(to) {
		return ErrBlacklisted
	}

	return l.mintTo(to, value)
}

func (l *Ledger) pause(caller common.Address) error {
	if err := l.roles.Check(caller, PauserRole, roles.DefaultAdminRole); err != nil {
		return err
	}

	if l.paused {
		return ErrPaused
	}

	l.setPaused(true)
	l.emit("Paused", caller)

	return nil
}

func (l *Ledger) unpause(caller common.Address) error {
	if err := l.roles.Check(caller, PauserRole, roles.DefaultAdminRole); err != nil {
		return err
	}

	if !l.paused {
		return ErrNotPaused
	}

	l.setPaused(false)
	l.emit("Unpaused", caller)

	return nil
}

func (l *Ledger) blacklist(caller, account common.Address) error {
	if err := l.roles.Check(caller, BlacklisterRole, roles.DefaultAdminRole); err != nil {
		return err
	}

	if account == (common.Address{}) {
		return ErrZeroAddress
	}

	if l.IsBlacklisted(account) {
		return ErrAlreadyBlacklisted
	}

	l.setBlacklisted(account, true)
	l.emit("Blacklisted", account, caller)

	return nil
}

func (l *Ledger) unBlacklist(caller, account common.Address) error {
	if err := l.roles.Check(caller, BlacklisterRole, roles.DefaultAdminRole); err != nil {
		return err
	}

	if !l.IsBlacklisted(account) {
		return ErrNotBlacklisted
	}

	l.setBlacklisted(account, false)
	l.emit("UnBlacklisted", account, caller)

	return nil
}

// batchBlacklist sets the blacklist state of every account it can, skipping
// zero addresses and accounts already in that state
func (l *Ledger) batchBlacklist(caller common.Address, accounts []common.Address, blacklisted bool) (uint64, error) {
	if err := l.roles.Check(caller, BlacklisterRole, roles.DefaultAdminRole); err != nil {
		return 0, err
	}

	event := "Blacklisted"
	if !blacklisted {
		event = "UnBlacklisted"
	}

	var affected uint64

	for _, account := range accounts {
		if account == (common.Address{}) || l.IsBlacklisted(account) == blacklisted {
			continue
		}

		l.setBlacklisted(account, blacklisted)
		l.emit(event, account, caller)

		affected++
	}

	return affected, nil
}

/** Helpers **/

var maxUint256 = new(uint256.Int).SetAllOne()

// unrestricted rejects when the ledger is paused or any party is blacklisted
func (l *Ledger) unrestricted(parties ...common.Address) error {
	if l.paused {
		return ErrPaused
	}

	for _, p := range parties {
		if l.IsBlacklisted(p) {
			return ErrBlacklisted
		}
	}

	return nil
}

func (l *Ledger) mintTo(to common.Address, value *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}

	supply, overflow := new(uint256.Int).AddOverflow(l.supply, value)
	if overflow {
		return ErrOverflow
	}

	l.setSupply(supply)
	l.setBalance(to, new(uint256.Int).Add(l.balanceOf(to), value))

	l.emit("Transfer", common.Address{}, to, value.ToBig())

	return nil
}

// move transfers value between balances. Balances never exceed the supply,
// so crediting cannot overflow
func (l *Ledger) move(from, to common.Address, value *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}

	balance := l.balanceOf(from)
	if balance.Lt(value) {
		return ErrInsufficientBalance
	}

	l.setBalance(from, new(uint256.Int).Sub(balance, value))
	l.setBalance(to, new(uint256.Int).Add(l.balanceOf(to), value))

	l.emit("Transfer", from, to, value.ToBig())

	return nil
}

func (l *Ledger) balanceOf(account common.Address) *uint256.Int {
	if b, ok := l.balances[account]; ok {
		return b
	}

	return new(uint256.Int)
}

func (l *Ledger) allowanceOf(owner, spender common.Address) *uint256.Int {
	if a, ok := l.allowances[owner][spender]; ok {
		return a
	}

	return new(uint256.Int)
}

func (l *Ledger) setBalance(account common.Address, value *uint256.Int) {
	prev, had := l.balances[account]
	l.balances[account] = value

	l.host.Record(func() {
		if had {
			l.balances[account] = prev
		} else {
			delete(l.balances, account)
		}
	})
}

func (l *Ledger) setSupply(value *uint256.Int) {
	prev := l.supply
	l.supply = value
	l.host.Record(func() { l.supply = prev })
}

func (l *Ledger) setAllowance(owner, spender common.Address, value *uint256.Int) {
	spenders, ok := l.allowances[owner]
	if !ok {
		spenders = make(map[common.Address]*uint256.Int)
		l.allowances[owner] = spenders
	}

	prev, had := spenders[spender]
	spenders[spender] = value

	l.host.Record(func() {
		if had {
			spenders[spender] = prev
		} else {
			delete(spenders, spender)
		}
	})

	l.emit("Approval", owner, spender, value.ToBig())
}

func (l *Ledger) setPaused(paused bool) {
	prev := l.paused
	l.paused = paused
	l.host.Record(func() { l.paused = prev })
}

func (l *Ledger) setBlacklisted(account common.Address, blacklisted bool) {
	if blacklisted {
		l.blacklisted[account] = struct{}{}
		l.host.Record(func() { delete(l.blacklisted, account) })

		return
	}

	delete(l.blacklisted, account)
	l.host.Record(func() { l.blacklisted[account] = struct{}{} })
}

func (l *Ledger) emit(event string, args ...any) {
	l.host.Emit(custody.NewLog(l.self, ABI, event, args...))
}

// amount converts a decoded uint256 argument
func amount(v *big.Int) (*uint256.Int, error) {
	u, overflow := uint256.FromBig(v)
	if overflow || v.Sign() < 0 {
		return nil, ErrOverflow
	}

	return u, nil
}
