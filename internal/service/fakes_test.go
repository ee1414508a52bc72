package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ridepool/internal/domain"
	"ridepool/internal/models"
	"ridepool/internal/repository"
)

// fakeStore implements the service store interfaces in memory. Its mutex
// stands in for the database's transactional guarantees: AllocateSeat and
// SettleBySession hold it for their whole read-modify-write, matching the
// conditional update and row lock the gorm repositories use.
type fakeStore struct {
	mu            sync.Mutex
	rides         map[uint]*models.Ride
	participants  map[uint]*models.Participant
	payments      map[string]*models.Payment
	rideCodes     map[uint]*models.RideCode
	notifications []*models.Notification
	history       []*models.HistoryEntry

	nextRideID        uint
	nextParticipantID uint
	nextPaymentID     uint

	failNotifications bool
	failHistory       bool

	codeGenCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rides:        make(map[uint]*models.Ride),
		participants: make(map[uint]*models.Participant),
		payments:     make(map[string]*models.Payment),
		rideCodes:    make(map[uint]*models.RideCode),
	}
}

func (f *fakeStore) addRide(ownerID uint, seats int, priceCents int64) *models.Ride {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextRideID++
	r := &models.Ride{
		ID:            f.nextRideID,
		OwnerID:       ownerID,
		Origin:        "Union Square",
		Destination:   "Airport",
		DepartureTime: time.Now().Add(24 * time.Hour),
		TotalSeats:    seats,
		SeatsLeft:     seats,
		PriceCents:    priceCents,
		DisplayCode:   "R1DE01",
		Status:        domain.RideStatusActive,
	}
	f.rides[r.ID] = r
	return r
}

// RideStore

func (f *fakeStore) Create(ride *models.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextRideID++
	ride.ID = f.nextRideID
	f.rides[ride.ID] = ride
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[id]
	if !ok {
		return nil, repository.ErrRideNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) DisplayCodeExists(code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rides {
		if r.DisplayCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AllocateSeat(_ context.Context, rideID uint, p *models.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[rideID]
	if !ok {
		return repository.ErrRideNotFound
	}
	if r.Status != domain.RideStatusActive || r.SeatsLeft <= 0 {
		// The conditional decrement matched nothing; classify the refusal
		// the way the repository does on zero affected rows.
		if r.Status != domain.RideStatusActive {
			return repository.ErrRideNotActive
		}
		if f.hasParticipantLocked(rideID, p.UserID) {
			return repository.ErrAlreadyJoined
		}
		return repository.ErrSeatsExhausted
	}
	if f.hasParticipantLocked(rideID, p.UserID) {
		return repository.ErrAlreadyJoined
	}
	r.SeatsLeft--
	f.nextParticipantID++
	p.ID = f.nextParticipantID
	cp := *p
	f.participants[p.ID] = &cp
	return nil
}

func (f *fakeStore) hasParticipantLocked(rideID, userID uint) bool {
	for _, existing := range f.participants {
		if existing.RideID == rideID && existing.UserID == userID {
			return true
		}
	}
	return false
}

func (f *fakeStore) ReleaseSeat(_ context.Context, rideID, participantID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.participants[participantID]; !ok {
		return nil
	}
	delete(f.participants, participantID)
	if r, ok := f.rides[rideID]; ok && r.SeatsLeft < r.TotalSeats {
		r.SeatsLeft++
	}
	return nil
}

// PaymentStore

func (f *fakeStore) CreatePayment(p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.payments[p.SessionID]; exists {
		return errors.New("duplicate session id")
	}
	f.nextPaymentID++
	p.ID = f.nextPaymentID
	cp := *p
	f.payments[p.SessionID] = &cp
	return nil
}

func (f *fakeStore) GetBySessionID(_ context.Context, sessionID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[sessionID]
	if !ok {
		return nil, repository.ErrUnknownSession
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) SettleBySession(_ context.Context, sessionID, paymentIntentID string, newCode func() (string, error)) (*repository.SettleOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[sessionID]
	if !ok {
		return nil, repository.ErrUnknownSession
	}
	if p.Status == domain.PaymentStatusCompleted {
		cp := *p
		return &repository.SettleOutcome{Payment: &cp, AlreadySettled: true}, nil
	}
	now := time.Now()
	p.Status = domain.PaymentStatusCompleted
	if paymentIntentID != "" {
		p.PaymentIntentID = paymentIntentID
	}
	p.CompletedAt = &now
	out := &repository.SettleOutcome{}
	cp := *p
	out.Payment = &cp

	var part *models.Participant
	for _, candidate := range f.participants {
		if candidate.RideID == p.RideID && candidate.UserID == p.UserID {
			part = candidate
			break
		}
	}
	if part == nil {
		out.ParticipantMissing = true
		return out, nil
	}
	part.Paid = true
	part.AmountPaidCents = part.AmountDueCents
	if paymentIntentID != "" {
		part.PaymentIntentID = paymentIntentID
	}
	pc := *part
	out.Participant = &pc

	f.codeGenCalls++
	accessCode, err := newCode()
	if err != nil {
		return nil, err
	}
	out.AccessCode = accessCode
	if rc, ok := f.rideCodes[p.RideID]; ok {
		rc.Code = accessCode
	} else {
		f.rideCodes[p.RideID] = &models.RideCode{RideID: p.RideID, Code: accessCode}
	}
	return out, nil
}

func (f *fakeStore) ExpireBySession(_ context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[sessionID]
	if !ok {
		return false, repository.ErrUnknownSession
	}
	if p.Status != domain.PaymentStatusPending {
		return false, nil
	}
	p.Status = domain.PaymentStatusFailed
	return true, nil
}

// ParticipantStore

func (f *fakeStore) SetCheckoutSession(_ context.Context, participantID uint, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.participants[participantID]; ok {
		p.CheckoutSessionID = sessionID
	}
	return nil
}

// AccessCodeStore

func (f *fakeStore) GetByRideID(rideID uint) (*models.RideCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rc, ok := f.rideCodes[rideID]
	if !ok {
		return nil, nil
	}
	cp := *rc
	return &cp, nil
}

// NotificationStore / HistoryStore

func (f *fakeStore) CreateNotification(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNotifications {
		return errors.New("notification store down")
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) CreateHistory(e *models.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failHistory {
		return errors.New("history store down")
	}
	f.history = append(f.history, e)
	return nil
}

func (f *fakeStore) participantFor(rideID, userID uint) *models.Participant {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants {
		if p.RideID == rideID && p.UserID == userID {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (f *fakeStore) participantCount(rideID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.participants {
		if p.RideID == rideID {
			n++
		}
	}
	return n
}

func (f *fakeStore) notificationCount(notifType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, notif := range f.notifications {
		if notif.Type == notifType {
			n++
		}
	}
	return n
}

// Adapters so one fakeStore serves the single-method store interfaces whose
// method names collide with PaymentStore.Create / RideStore.Create.

type fakePaymentStore struct{ *fakeStore }

func (f fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	return f.CreatePayment(p)
}

type fakeNotificationStore struct{ *fakeStore }

func (f fakeNotificationStore) Create(n *models.Notification) error {
	return f.CreateNotification(n)
}

type fakeHistoryStore struct{ *fakeStore }

func (f fakeHistoryStore) Create(e *models.HistoryEntry) error {
	return f.CreateHistory(e)
}

func newEmitter(f *fakeStore) *NotificationService {
	return NewNotificationService(fakeNotificationStore{f}, fakeHistoryStore{f})
}
