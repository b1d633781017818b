package syncache

import "sync"

// Subscription is the handle returned by Subscribe. Unsubscribe is safe to
// call more than once.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// NewSubscription wraps an arbitrary cancel function.
func NewSubscription(cancel func()) *Subscription {
	return newSubscription(cancel)
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
