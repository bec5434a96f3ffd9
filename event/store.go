// Package event stores the logs of committed transactions and notifies
// subscribers of the ones matching their filter.
package event

import (
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
)

// Store is a thread-safe append-only log store. It implements vm.LogSink
type Store struct {
	logs   []*types.Log
	logMux sync.RWMutex

	subscriptions subscriptions
	subMux        sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		logs:          make([]*types.Log, 0),
		subscriptions: make(subscriptions),
	}
}

// Append adds the logs of a committed transaction and notifies every
// subscription that at least one of them matches
func (s *Store) Append(logs []*types.Log) {
	s.logMux.Lock()
	s.logs = append(s.logs, logs...)
	s.logMux.Unlock()

	s.subMux.RLock()
	defer s.subMux.RUnlock()

	for _, sub := range s.subscriptions {
		if !matchesAny(sub.filter, logs) {
			continue
		}

		sub.notify(s.receiver(sub.filter))
	}
}

// Logs returns the stored logs matching filter in commit order
func (s *Store) Logs(filter Filter) []*types.Log {
	s.logMux.RLock()
	defer s.logMux.RUnlock()

	matched := make([]*types.Log, 0)

	for _, l := range s.logs {
		if filter.Match(l) {
			matched = append(matched, l)
		}
	}

	return matched
}

// Len returns the number of stored logs
func (s *Store) Len() int {
	s.logMux.RLock()
	defer s.logMux.RUnlock()

	return len(s.logs)
}

// Subscribe registers filter and returns the notification channel and a
// function that cancels the subscription. A subscriber that does not keep up
// only misses intermediate notifications: every notification yields all
// matching logs. If matching logs are already stored the first notification
// is sent immediately
func (s *Store) Subscribe(filter Filter) (<-chan Notification, func()) {
	sub := newSubscription(filter)

	s.subMux.Lock()
	id := s.subscriptions.add(sub)
	s.subMux.Unlock()

	if len(s.Logs(filter)) > 0 {
		sub.notify(s.receiver(filter))
	}

	return sub.sub, func() {
		s.subMux.Lock()
		defer s.subMux.Unlock()

		s.subscriptions.remove(id)
	}
}

func (s *Store) receiver(filter Filter) Notification {
	return func() []*types.Log {
		return s.Logs(filter)
	}
}

func matchesAny(filter Filter, logs []*types.Log) bool {
	for _, l := range logs {
		if filter.Match(l) {
			return true
		}
	}

	return false
}
