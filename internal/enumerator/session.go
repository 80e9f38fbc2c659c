// Package enumerator streams every address of a set of networks without
// materialising them, striping across the networks in round-robin order.
package enumerator

import (
	"context"
	"iter"
	"runtime"
	"slices"
	"sync"

	"github.com/zinrai/netenum-go/internal/domain"
)

// Session is one enumeration run over a fixed list of networks.
// It is not restartable; build a new Session to enumerate again.
type Session struct {
	mu   sync.Mutex
	ring []*cursor
	head int
}

// New parses ranges and builds a session over them. Any invalid range
// aborts construction with a *domain.ParseError.
func New(ranges []string) (*Session, error) {
	networks, err := domain.ParseNetworks(ranges)
	if err != nil {
		return nil, err
	}
	return NewFromNetworks(networks), nil
}

// NewFromNetworks builds a session over already parsed networks.
func NewFromNetworks(networks []domain.Network) *Session {
	ring := make([]*cursor, 0, len(networks))
	for _, n := range networks {
		ring = append(ring, newCursor(n))
	}
	return &Session{ring: ring}
}

// Next returns the next address, taking one address from each live network
// in turn. It returns false once every network is exhausted.
func (s *Session) Next() (domain.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.ring) > 0 {
		c := s.ring[s.head]
		if addr, ok := c.next(); ok {
			s.head = (s.head + 1) % len(s.ring)
			return addr, true
		}
		s.ring = slices.Delete(s.ring, s.head, s.head+1)
		if s.head == len(s.ring) {
			s.head = 0
		}
	}
	return domain.Address{}, false
}

// Live returns the number of networks still in the rotation. A network
// whose last address was just emitted counts until the following pull.
func (s *Session) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ring)
}

// All returns the remaining addresses as a range function.
func (s *Session) All() iter.Seq[domain.Address] {
	return func(yield func(domain.Address) bool) {
		for {
			addr, ok := s.Next()
			if !ok || !yield(addr) {
				return
			}
		}
	}
}

// Cooperative is All, but hands the processor to other goroutines after
// every address.
func (s *Session) Cooperative() iter.Seq[domain.Address] {
	return func(yield func(domain.Address) bool) {
		for {
			addr, ok := s.Next()
			if !ok || !yield(addr) {
				return
			}
			runtime.Gosched()
		}
	}
}

// Stream enumerates in a separate goroutine and sends the addresses on the
// returned channel, which is closed when the session is exhausted or ctx
// is done.
func (s *Session) Stream(ctx context.Context, buffer int) <-chan domain.Address {
	ch := make(chan domain.Address, buffer)
	go func() {
		defer close(ch)
		for addr := range s.Cooperative() {
			select {
			case ch <- addr:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Collect enumerates ranges completely and returns every address.
func Collect(ranges []string) ([]domain.Address, error) {
	s, err := New(ranges)
	if err != nil {
		return nil, err
	}
	var addrs []domain.Address
	for addr := range s.All() {
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
