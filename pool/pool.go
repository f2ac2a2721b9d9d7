package pool

import (
	"context"
	"fmt"
	"sync"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/lib"
)

type Kind int

const (
	// Interactive sessions serve single message requests from the user
	Interactive Kind = iota
	// Background sessions serve listings and bulk fetches
	Background
)

func (k Kind) String() string {
	if k == Interactive {
		return "interactive"
	}
	return "background"
}

// Session is a live connection that can be probed and closed
type Session interface {
	Noop() error
	Logout() error
}

// Factory opens a new authenticated session for the account
type Factory[S Session] func(ctx context.Context, account cfg.Account) (S, error)

// Pool keeps at most one idle session per account in each of its two stores.
// A session in use is out of the store, so only one caller works with it at a time.
type Pool[S Session] struct {
	factory Factory[S]
	stores  [2]*store[S]
	log     lib.Logger
}

type store[S Session] struct {
	mu       sync.Mutex
	sessions map[string]S
}

func New[S Session](factory Factory[S]) *Pool[S] {
	return NewWithLogger(factory, nil)
}

func NewWithLogger[S Session](factory Factory[S], logger lib.Logger) *Pool[S] {
	return &Pool[S]{
		factory: factory,
		stores: [2]*store[S]{
			{sessions: make(map[string]S)},
			{sessions: make(map[string]S)},
		},
		log: lib.OrNoLog(logger),
	}
}

func (p *Pool[S]) store(kind Kind) *store[S] {
	if kind == Interactive {
		return p.stores[0]
	}
	return p.stores[1]
}

func (s *store[S]) take(key string) (S, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, found := s.sessions[key]
	if found {
		delete(s.sessions, key)
	}
	return session, found
}

func (s *store[S]) put(key string, session S) (S, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	displaced, found := s.sessions[key]
	s.sessions[key] = session
	return displaced, found
}

func (s *store[S]) drain() []S {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := make([]S, 0, len(s.sessions))
	for key, session := range s.sessions {
		sessions = append(sessions, session)
		delete(s.sessions, key)
	}
	return sessions
}

// Acquire returns a healthy session for the account: the idle one if it answers
// a NOOP, a new one otherwise.
func (p *Pool[S]) Acquire(ctx context.Context, kind Kind, account cfg.Account) (S, error) {
	key := account.Key()
	if session, found := p.store(kind).take(key); found {
		err := session.Noop()
		if err == nil {
			p.log.Printf("reusing %s session for %s", kind, key)
			return session, nil
		}
		p.log.Printf("discarding stale %s session for %s: %s", kind, key, err)
		p.Discard(session)
	}
	if err := ctx.Err(); err != nil {
		var empty S
		return empty, err
	}
	p.log.Printf("opening %s session for %s", kind, key)
	session, err := p.factory(ctx, account)
	if err != nil {
		var empty S
		return empty, fmt.Errorf("%s: %w", account.Address, err)
	}
	return session, nil
}

// Release puts the session back as the idle session of the account.
// A session already sitting in the slot is logged out.
func (p *Pool[S]) Release(kind Kind, account cfg.Account, session S) {
	key := account.Key()
	if displaced, found := p.store(kind).put(key, session); found {
		p.log.Printf("replacing idle %s session for %s", kind, key)
		p.Discard(displaced)
	}
}

// Discard logs out a session that must not be reused
func (p *Pool[S]) Discard(session S) {
	_ = session.Logout()
}

// Evict closes the idle sessions of the account in both stores
func (p *Pool[S]) Evict(account cfg.Account) {
	key := account.Key()
	for _, kind := range []Kind{Interactive, Background} {
		if session, found := p.store(kind).take(key); found {
			p.log.Printf("evicting %s session for %s", kind, key)
			p.Discard(session)
		}
	}
}

// EvictAll closes every idle session
func (p *Pool[S]) EvictAll() {
	for _, kind := range []Kind{Interactive, Background} {
		for _, session := range p.store(kind).drain() {
			p.Discard(session)
		}
	}
}

// Idle returns the number of idle sessions in the store
func (p *Pool[S]) Idle(kind Kind) int {
	s := p.store(kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
