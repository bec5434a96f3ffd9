package governance

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/timelock"
	"github.com/sig-0/go-custody/wallet"
)

// Session drives the wallet on behalf of one owner
type Session struct {
	*wallet.Session

	sys *System
	log *zap.Logger
}

func (s *System) Session(owner common.Address) *Session {
	return &Session{
		Session: wallet.NewSession(s.VM, s.Wallet.Address(), owner),
		sys:     s,
		log:     s.log.With(zap.Stringer("owner", owner)),
	}
}

// Propose submits call to the wallet and confirms it
func (s *Session) Propose(call custody.Call) (uint64, error) {
	index, err := s.SubmitAndConfirm(call)
	if err != nil {
		return 0, err
	}

	s.log.Info("proposed", zap.Uint64("index", index), zap.Stringer("target", call.Target))

	return index, nil
}

// Approve confirms a pending wallet transaction
func (s *Session) Approve(index uint64) error {
	if err := s.Confirm(index); err != nil {
		return err
	}

	s.log.Info("approved", zap.Uint64("index", index))

	return nil
}

// Run executes an approved wallet transaction
func (s *Session) Run(index uint64) ([]byte, error) {
	ret, err := s.Execute(index)
	if err != nil {
		s.log.Warn("execution rejected", zap.Uint64("index", index), zap.Error(err))

		return nil, err
	}

	s.log.Info("executed", zap.Uint64("index", index))

	return ret, nil
}

// ProposeQueue proposes the queuing of op through the wallet
func (s *Session) ProposeQueue(op timelock.Operation) (uint64, error) {
	return s.Propose(s.sys.QueueCall(op))
}

// ProposeExecute proposes the execution of a queued op through the wallet
func (s *Session) ProposeExecute(op timelock.Operation) (uint64, error) {
	return s.Propose(s.sys.ExecuteCall(op))
}
