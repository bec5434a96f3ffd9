// Package mock provides probe contracts for exercising callers of arbitrary targets
package mock

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sig-0/go-custody"
)

// Probe is a contract that counts the calls it handles. It optionally fails
// after mutating its state, and optionally makes a nested call first
type Probe struct {
	host custody.Host
	self common.Address

	// Calls is the number of committed calls handled by this probe
	Calls int
	// LastCaller and LastData describe the most recent committed call
	LastCaller common.Address
	LastData   []byte
	LastValue  *big.Int

	// Fail, if set, is returned by Run after the probe recorded the call
	Fail error
	// Return is returned by Run on success
	Return []byte

	// Reenter, if set, is called from within Run before it returns.
	// The outcome of every attempt is appended to Reentries and never fails Run
	Reenter   *custody.Call
	Reentries []error
}

// NewProbe is a deployment builder for vm.Deploy
func NewProbe(host custody.Host, self common.Address) (*Probe, error) {
	return &Probe{host: host, self: self}, nil
}

func (p *Probe) Address() common.Address {
	return p.self
}

func (p *Probe) Run(caller common.Address, value *big.Int, data []byte) ([]byte, error) {
	prevCalls, prevCaller, prevData, prevValue := p.Calls, p.LastCaller, p.LastData, p.LastValue
	p.host.Record(func() {
		p.Calls, p.LastCaller, p.LastData, p.LastValue = prevCalls, prevCaller, prevData, prevValue
	})

	p.Calls++
	p.LastCaller = caller
	p.LastData = append([]byte(nil), data...)
	p.LastValue = new(big.Int).Set(value)

	if p.Reenter != nil {
		_, err := p.host.Call(p.self, p.Reenter.Target, p.Reenter.Value, p.Reenter.Data)
		p.Reentries = append(p.Reentries, err)
	}

	if p.Fail != nil {
		return nil, p.Fail
	}

	return p.Return, nil
}
