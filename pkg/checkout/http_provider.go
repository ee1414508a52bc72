package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider talks to the hosted-checkout REST API with an API key.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type createSessionReq struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

type sessionResp struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	PaymentIntent string            `json:"payment_intent"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

func (p *HTTPProvider) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	body, _ := json.Marshal(createSessionReq{
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Metadata:    req.Metadata,
	})
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, fmt.Errorf("checkout create session: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[CHECKOUT] create session failed status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("checkout create session: %d", resp.StatusCode)
	}
	var out sessionResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &Session{SessionID: out.ID, RedirectURL: out.URL}, nil
}

func (p *HTTPProvider) GetSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, fmt.Errorf("checkout get session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("checkout session %s not found", sessionID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checkout get session: %d", resp.StatusCode)
	}
	var out sessionResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &SessionStatus{
		SessionID:       out.ID,
		PaymentStatus:   out.PaymentStatus,
		PaymentIntentID: out.PaymentIntent,
		AmountCents:     out.AmountTotal,
		Metadata:        out.Metadata,
	}, nil
}
