package repository

import (
	"context"
	"errors"
	"time"

	"ridepool/internal/domain"
	"ridepool/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownSession
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByUserID(userID uint, limit, offset int) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// SettleOutcome reports what the settlement transaction did.
type SettleOutcome struct {
	Payment            *models.Payment
	Participant        *models.Participant // nil when missing or already settled
	AccessCode         string              // set only when this call performed the transition
	AlreadySettled     bool
	ParticipantMissing bool
}

// SettleBySession performs the idempotent settle transaction. The payment
// row is locked for the duration (SELECT ... FOR UPDATE), so of two racing
// deliveries exactly one flips PENDING to COMPLETED; the other observes
// COMPLETED after the lock releases and short-circuits. In one commit it
// marks the participant paid and upserts the ride's access code; newCode is
// invoked only when this call actually performs the transition. A missing
// participant row is a consistency fault: the payment is still completed
// so the provider stops retrying, but downstream effects are skipped.
func (r *PaymentRepository) SettleBySession(ctx context.Context, sessionID, paymentIntentID string, newCode func() (string, error)) (*SettleOutcome, error) {
	out := &SettleOutcome{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", sessionID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownSession
			}
			return err
		}
		if p.Status == domain.PaymentStatusCompleted {
			out.Payment = &p
			out.AlreadySettled = true
			return nil
		}
		now := time.Now()
		p.Status = domain.PaymentStatusCompleted
		if paymentIntentID != "" {
			p.PaymentIntentID = paymentIntentID
		}
		p.CompletedAt = &now
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		out.Payment = &p

		var part models.Participant
		err := tx.Where("ride_id = ? AND user_id = ?", p.RideID, p.UserID).First(&part).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				out.ParticipantMissing = true
				return nil
			}
			return err
		}
		part.Paid = true
		part.AmountPaidCents = part.AmountDueCents
		if paymentIntentID != "" {
			part.PaymentIntentID = paymentIntentID
		}
		if err := tx.Save(&part).Error; err != nil {
			return err
		}
		out.Participant = &part

		accessCode, err := newCode()
		if err != nil {
			return err
		}
		out.AccessCode = accessCode
		rc := models.RideCode{RideID: p.RideID, Code: accessCode}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ride_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "updated_at"}),
		}).Create(&rc).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireBySession transitions a still-pending payment to FAILED. Terminal
// payments are left untouched; re-delivered expiry events are a no-op.
func (r *PaymentRepository) ExpireBySession(ctx context.Context, sessionID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("session_id = ? AND status = ?", sessionID, domain.PaymentStatusPending).
		Update("status", domain.PaymentStatusFailed)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the session is unknown or the payment already reached a
		// terminal state; only the former is an error to the caller.
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Payment{}).
			Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
			return false, err
		}
		if count == 0 {
			return false, ErrUnknownSession
		}
		return false, nil
	}
	return true, nil
}
