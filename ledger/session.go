package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/vm"
)

// Session applies ledger calls on behalf of a single account
type Session struct {
	contract vm.BoundContract
	From     common.Address
}

func NewSession(backend vm.Backend, ledger, from common.Address) *Session {
	return &Session{
		contract: vm.BoundContract{Backend: backend, Address: ledger, ABI: ABI},
		From:     from,
	}
}

func (s *Session) Transfer(to common.Address, amount *big.Int) error {
	return s.transact("transfer", to, amount)
}

func (s *Session) Approve(spender common.Address, amount *big.Int) error {
	return s.transact("approve", spender, amount)
}

func (s *Session) TransferFrom(from, to common.Address, amount *big.Int) error {
	return s.transact("transferFrom", from, to, amount)
}

func (s *Session) Burn(amount *big.Int) error {
	return s.transact("burn", amount)
}

func (s *Session) Mint(to common.Address, amount *big.Int) error {
	return s.transact("mint", to, amount)
}

func (s *Session) Pause() error {
	return s.transact("pause")
}

func (s *Session) Unpause() error {
	return s.transact("unpause")
}

func (s *Session) Blacklist(account common.Address) error {
	return s.transact("blacklist", account)
}

func (s *Session) UnBlacklist(account common.Address) error {
	return s.transact("unBlacklist", account)
}

// BatchBlacklist returns how many accounts were newly blacklisted
func (s *Session) BatchBlacklist(accounts ...common.Address) (uint64, error) {
	return s.batch("batchBlacklist", accounts)
}

// BatchUnBlacklist returns how many accounts were removed from the blacklist
func (s *Session) BatchUnBlacklist(accounts ...common.Address) (uint64, error) {
	return s.batch("batchUnBlacklist", accounts)
}

func (s *Session) GrantRole(role common.Hash, account common.Address) error {
	return s.transact("grantRole", role, account)
}

func (s *Session) RevokeRole(role common.Hash, account common.Address) error {
	return s.transact("revokeRole", role, account)
}

func (s *Session) BalanceOf(account common.Address) (*big.Int, error) {
	return s.number("balanceOf", account)
}

func (s *Session) TotalSupply() (*big.Int, error) {
	return s.number("totalSupply")
}

func (s *Session) Allowance(owner, spender common.Address) (*big.Int, error) {
	return s.number("allowance", owner, spender)
}

func (s *Session) Paused() (bool, error) {
	return s.flag("paused")
}

func (s *Session) IsBlacklisted(account common.Address) (bool, error) {
	return s.flag("isBlacklisted", account)
}

func (s *Session) HasRole(role common.Hash, account common.Address) (bool, error) {
	return s.flag("hasRole", role, account)
}

func (s *Session) transact(method string, args ...any) error {
	_, _, err := s.contract.Transact(s.From, nil, method, args...)

	return err
}

func (s *Session) batch(method string, accounts []common.Address) (uint64, error) {
	out, _, err := s.contract.Transact(s.From, nil, method, accounts)
	if err != nil {
		return 0, err
	}

	return custody.Arg[*big.Int](out, 0).Uint64(), nil
}

func (s *Session) number(method string, args ...any) (*big.Int, error) {
	out, err := s.contract.Call(s.From, method, args...)
	if err != nil {
		return nil, err
	}

	return custody.Arg[*big.Int](out, 0), nil
}

func (s *Session) flag(method string, args ...any) (bool, error) {
	out, err := s.contract.Call(s.From, method, args...)
	if err != nil {
		return false, err
	}

	return custody.Arg[bool](out, 0), nil
}

// Signature returns the canonical signature of a ledger method, e.g. "mint(address,uint256)"
func Signature(method string) string {
	return ABI.Methods[method].Sig
}

// Arguments encodes the arguments of a ledger method without its selector,
// for delay controller operations that carry the signature separately
func Arguments(method string, args ...any) []byte {
	return custody.MustPack(ABI, method, args...)[4:]
}
