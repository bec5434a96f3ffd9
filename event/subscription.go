package event

import (
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/xid"
)

// Notification yields the logs matching a subscription at the time it is unwrapped
type Notification func() []*types.Log

func (n Notification) Unwrap() []*types.Log {
	return n()
}

type subscription struct {
	filter Filter
	sub    chan Notification
}

func newSubscription(filter Filter) subscription {
	return subscription{
		filter: filter,
		sub:    make(chan Notification, 1),
	}
}

func (s subscription) notify(receiver Notification) {
	select {
	case s.sub <- receiver:
	default: // subscriber hasn't consumed the last notification
	}
}

type subscriptions map[string]subscription

func (s subscriptions) add(sub subscription) string {
	id := xid.New().String()
	s[id] = sub

	return id
}

func (s subscriptions) remove(id string) {
	sub, ok := s[id]
	if !ok {
		return
	}

	close(sub.sub)
	delete(s, id)
}
