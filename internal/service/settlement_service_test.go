package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
	"ridepool/pkg/checkout"
)

func newSettlementFixture(t *testing.T) (*fakeStore, *SettlementService, *JoinResult) {
	t.Helper()
	f := newFakeStore()
	booking := newBookingService(f, checkout.NewStubProvider())
	ride := f.addRide(1, 2, 500)
	join, err := booking.Join(context.Background(), ride.ID, 2, 0)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	settle := NewSettlementService(fakePaymentStore{f}, f, newEmitter(f))
	return f, settle, join
}

func TestSettleHappyPath(t *testing.T) {
	f, settle, join := newSettlementFixture(t)

	res, err := settle.Settle(context.Background(), join.SessionID, "pi_123", 500)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if res.AlreadySettled {
		t.Fatal("first settle reported AlreadySettled")
	}
	if res.Status != domain.PaymentStatusCompleted {
		t.Fatalf("status = %q, want COMPLETED", res.Status)
	}
	if len(res.AccessCode) != domain.AccessCodeLength {
		t.Fatalf("access code %q, want length %d", res.AccessCode, domain.AccessCodeLength)
	}
	if res.AmountPaidCents != 500 {
		t.Fatalf("amount_paid = %d, want 500", res.AmountPaidCents)
	}

	p := f.participantFor(res.RideID, res.UserID)
	if p == nil || !p.Paid || p.AmountPaidCents != 500 {
		t.Fatalf("participant = %+v, want paid with amount 500", p)
	}
	if p.PaymentIntentID != "pi_123" {
		t.Fatalf("participant intent = %q, want pi_123", p.PaymentIntentID)
	}
	rc, _ := f.GetByRideID(res.RideID)
	if rc == nil || rc.Code != res.AccessCode {
		t.Fatalf("ride code = %+v, want %q", rc, res.AccessCode)
	}
	if f.notificationCount(domain.NotifPaymentReceived) != 1 {
		t.Fatal("expected one payment_received notification")
	}
}

func TestSettleTwiceIsNoOp(t *testing.T) {
	f, settle, join := newSettlementFixture(t)

	first, err := settle.Settle(context.Background(), join.SessionID, "pi_123", 500)
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	second, err := settle.Settle(context.Background(), join.SessionID, "pi_123", 500)
	if err != nil {
		t.Fatalf("second settle must succeed, got %v", err)
	}
	if !second.AlreadySettled {
		t.Fatal("second settle did not report AlreadySettled")
	}
	if second.AccessCode != first.AccessCode {
		t.Fatalf("second settle code %q differs from first %q", second.AccessCode, first.AccessCode)
	}
	if f.notificationCount(domain.NotifPaymentReceived) != 1 {
		t.Fatal("duplicate settle emitted another notification")
	}
	if f.codeGenCalls != 1 {
		t.Fatalf("code generator ran %d times, want 1 (losing deliveries must not draw codes)", f.codeGenCalls)
	}
}

// Webhook and poll racing for one session: exactly one racer performs the
// transition, everyone observes the same completed state and the same code.
func TestSettleConcurrentDuplicates(t *testing.T) {
	const racers = 8
	f, settle, join := newSettlementFixture(t)

	var wg sync.WaitGroup
	results := make([]*SettlementResult, racers)
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = settle.Settle(context.Background(), join.SessionID, "pi_123", 500)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < racers; i++ {
		if errs[i] != nil {
			t.Fatalf("racer %d: %v", i, errs[i])
		}
		if !results[i].AlreadySettled {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
	rc, _ := f.GetByRideID(results[0].RideID)
	if rc == nil {
		t.Fatal("no ride code after settlement")
	}
	for i := 0; i < racers; i++ {
		if results[i].AccessCode != rc.Code {
			t.Fatalf("racer %d saw code %q, store has %q", i, results[i].AccessCode, rc.Code)
		}
	}
	if f.notificationCount(domain.NotifPaymentReceived) != 1 {
		t.Fatal("racing settles emitted duplicate notifications")
	}
	if f.codeGenCalls != 1 {
		t.Fatalf("code generator ran %d times, want 1", f.codeGenCalls)
	}
}

func TestSettleUnknownSession(t *testing.T) {
	f, settle, _ := newSettlementFixture(t)

	before := len(f.payments)
	_, err := settle.Settle(context.Background(), "cs_no_such_session", "pi_x", 100)
	if !errors.Is(err, repository.ErrUnknownSession) {
		t.Fatalf("got %v, want ErrUnknownSession", err)
	}
	if len(f.payments) != before {
		t.Fatal("unknown session fabricated a payment row")
	}
	if len(f.rideCodes) != 0 {
		t.Fatal("unknown session fabricated a ride code")
	}
}

func TestSettleParticipantMissing(t *testing.T) {
	f, settle, join := newSettlementFixture(t)

	// Simulate the consistency fault: payment exists, participant gone.
	f.mu.Lock()
	for id := range f.participants {
		delete(f.participants, id)
	}
	f.mu.Unlock()

	res, err := settle.Settle(context.Background(), join.SessionID, "pi_123", 500)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if res.Status != domain.PaymentStatusCompleted {
		t.Fatalf("payment status = %q, want COMPLETED so provider retries stop", res.Status)
	}
	if res.AccessCode != "" {
		t.Fatal("access code granted with no participant")
	}
	if len(f.rideCodes) != 0 {
		t.Fatal("ride code upserted with no participant")
	}
	if f.notificationCount(domain.NotifPaymentReceived) != 0 {
		t.Fatal("notification emitted with no participant")
	}
}

func TestExpire(t *testing.T) {
	f, settle, join := newSettlementFixture(t)

	if err := settle.Expire(context.Background(), join.SessionID); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	p, _ := f.GetBySessionID(context.Background(), join.SessionID)
	if p.Status != domain.PaymentStatusFailed {
		t.Fatalf("status = %q, want FAILED", p.Status)
	}
	// Seat intentionally not released on expiry.
	r, _ := f.GetByID(context.Background(), p.RideID)
	if r.SeatsLeft != 1 {
		t.Fatalf("seats_left = %d, want 1 (no release on expiry)", r.SeatsLeft)
	}
	// Re-delivered expiry is a no-op.
	if err := settle.Expire(context.Background(), join.SessionID); err != nil {
		t.Fatalf("second Expire: %v", err)
	}
}

func TestExpireAfterSettleIsNoOp(t *testing.T) {
	f, settle, join := newSettlementFixture(t)

	if _, err := settle.Settle(context.Background(), join.SessionID, "pi_123", 500); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if err := settle.Expire(context.Background(), join.SessionID); err != nil {
		t.Fatalf("Expire after settle: %v", err)
	}
	p, _ := f.GetBySessionID(context.Background(), join.SessionID)
	if p.Status != domain.PaymentStatusCompleted {
		t.Fatalf("status = %q, completed payment must not be expired", p.Status)
	}
}

func TestExpireUnknownSession(t *testing.T) {
	_, settle, _ := newSettlementFixture(t)
	if err := settle.Expire(context.Background(), "cs_missing"); !errors.Is(err, repository.ErrUnknownSession) {
		t.Fatalf("got %v, want ErrUnknownSession", err)
	}
}

func TestSettleSurvivesEmitterFailure(t *testing.T) {
	f, settle, join := newSettlementFixture(t)
	f.failNotifications = true
	f.failHistory = true

	res, err := settle.Settle(context.Background(), join.SessionID, "pi_123", 500)
	if err != nil {
		t.Fatalf("Settle failed because of emitter: %v", err)
	}
	if res.Status != domain.PaymentStatusCompleted {
		t.Fatalf("status = %q, want COMPLETED", res.Status)
	}
}

// Full booking lifecycle: 2-seat ride, A and B join, C loses,
// A settles, A re-settles.
func TestBookingSettlementScenario(t *testing.T) {
	f := newFakeStore()
	booking := newBookingService(f, checkout.NewStubProvider())
	settle := NewSettlementService(fakePaymentStore{f}, f, newEmitter(f))
	ride := f.addRide(1, 2, 500)

	joinA, err := booking.Join(context.Background(), ride.ID, 10, 0)
	if err != nil {
		t.Fatalf("A join: %v", err)
	}
	r, _ := f.GetByID(context.Background(), ride.ID)
	if r.SeatsLeft != 1 {
		t.Fatalf("after A: seats_left = %d, want 1", r.SeatsLeft)
	}
	if _, err := booking.Join(context.Background(), ride.ID, 11, 0); err != nil {
		t.Fatalf("B join: %v", err)
	}
	r, _ = f.GetByID(context.Background(), ride.ID)
	if r.SeatsLeft != 0 {
		t.Fatalf("after B: seats_left = %d, want 0", r.SeatsLeft)
	}
	if _, err := booking.Join(context.Background(), ride.ID, 12, 0); !errors.Is(err, repository.ErrSeatsExhausted) {
		t.Fatalf("C join: got %v, want ErrSeatsExhausted", err)
	}

	res, err := settle.Settle(context.Background(), joinA.SessionID, "pi_a", 500)
	if err != nil {
		t.Fatalf("settle A: %v", err)
	}
	pA := f.participantFor(ride.ID, 10)
	if !pA.Paid || pA.AmountPaidCents != 500 {
		t.Fatalf("A after settle: %+v", pA)
	}
	rc, _ := f.GetByRideID(ride.ID)
	if rc == nil || rc.Code != res.AccessCode {
		t.Fatalf("ride code %+v, want %q", rc, res.AccessCode)
	}
	if f.notificationCount(domain.NotifPaymentReceived) != 1 {
		t.Fatal("want exactly one payment_received notification for A")
	}

	again, err := settle.Settle(context.Background(), joinA.SessionID, "pi_a", 500)
	if err != nil {
		t.Fatalf("re-settle A: %v", err)
	}
	if !again.AlreadySettled || again.AccessCode != res.AccessCode {
		t.Fatalf("re-settle result %+v, want same outcome", again)
	}
	if f.notificationCount(domain.NotifPaymentReceived) != 1 {
		t.Fatal("re-settle duplicated the notification")
	}
}
