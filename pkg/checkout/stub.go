package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StubProvider is an in-memory provider for development and tests. Sessions
// start unpaid; tests flip them with MarkPaid/MarkExpired.
type StubProvider struct {
	mu       sync.Mutex
	sessions map[string]*SessionStatus
	seq      int
}

func NewStubProvider() *StubProvider {
	return &StubProvider{sessions: make(map[string]*SessionStatus)}
}

func (s *StubProvider) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("cs_stub_%d_%d", time.Now().UnixNano(), s.seq)
	s.sessions[id] = &SessionStatus{
		SessionID:     id,
		PaymentStatus: SessionUnpaid,
		AmountCents:   req.AmountCents,
		Metadata:      req.Metadata,
	}
	return &Session{SessionID: id, RedirectURL: "https://checkout.example.com/pay/" + id}, nil
}

func (s *StubProvider) GetSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("checkout session %s not found", sessionID)
	}
	cp := *st
	return &cp, nil
}

func (s *StubProvider) MarkPaid(sessionID, intentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[sessionID]; ok {
		st.PaymentStatus = SessionPaid
		st.PaymentIntentID = intentID
	}
}

func (s *StubProvider) MarkExpired(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[sessionID]; ok {
		st.PaymentStatus = SessionExpired
	}
}
