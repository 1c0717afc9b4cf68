package http

import (
	"context"
	"sync"
	"time"

	"github.com/marceleta/cardapio-checkout/internal/domain"
	"github.com/marceleta/cardapio-checkout/internal/service"
)

const (
	// sessionIdleTTL bounds the flows map: every anonymous visitor mints a
	// session, so idle entries must go. The cart survives in its repository
	// and an evicted session rebuilds on next contact.
	sessionIdleTTL = 30 * time.Minute
	sweepInterval  = time.Minute
)

// FlowFactory builds the checkout flow for a new session, loading any
// persisted cart for it.
type FlowFactory func(ctx context.Context, sessionID string, customer domain.Customer) (*service.Flow, error)

type sessionEntry struct {
	flow     *service.Flow
	lastSeen time.Time
}

// SessionManager hands out one Flow per shopper session. Flows are created
// lazily on first use and evicted after sitting idle past the TTL.
type SessionManager struct {
	mu        sync.Mutex
	flows     map[string]*sessionEntry
	factory   FlowFactory
	idleTTL   time.Duration
	lastSweep time.Time
}

func NewSessionManager(factory FlowFactory) *SessionManager {
	return &SessionManager{
		flows:   make(map[string]*sessionEntry),
		factory: factory,
		idleTTL: sessionIdleTTL,
	}
}

func (s *SessionManager) Flow(ctx context.Context, sessionID string, customer domain.Customer) (*service.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sweep(now)

	if entry, ok := s.flows[sessionID]; ok {
		entry.lastSeen = now
		return entry.flow, nil
	}

	flow, err := s.factory(ctx, sessionID, customer)
	if err != nil {
		return nil, err
	}
	s.flows[sessionID] = &sessionEntry{flow: flow, lastSeen: now}
	return flow, nil
}

// sweep drops idle entries; the caller holds mu. Runs at most once per
// sweepInterval so lookups stay cheap.
func (s *SessionManager) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now

	for id, entry := range s.flows {
		if now.Sub(entry.lastSeen) > s.idleTTL {
			delete(s.flows, id)
		}
	}
}
