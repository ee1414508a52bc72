// Package checkout wraps the hosted-checkout payment provider. The provider
// reports completion through two channels: the session-status query here and
// a signed webhook handled by the server. Both may fire for the same session.
package checkout

import "context"

// Session payment statuses as reported by the provider.
const (
	SessionPaid    = "paid"
	SessionUnpaid  = "unpaid"
	SessionExpired = "expired"
)

type CreateSessionRequest struct {
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string // carries ride_id and user_id
}

type Session struct {
	SessionID   string
	RedirectURL string
}

type SessionStatus struct {
	SessionID       string
	PaymentStatus   string // paid, unpaid, expired
	PaymentIntentID string
	AmountCents     int64
	Metadata        map[string]string
}

type Provider interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}
