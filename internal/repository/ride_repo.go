package repository

import (
	"context"
	"errors"

	"ridepool/internal/domain"
	"ridepool/internal/models"

	"gorm.io/gorm"
)

type RideRepository struct {
	db *gorm.DB
}

func NewRideRepository(db *gorm.DB) *RideRepository {
	return &RideRepository{db: db}
}

func (r *RideRepository) Create(ride *models.Ride) error {
	return r.db.Create(ride).Error
}

func (r *RideRepository) GetByID(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	err := r.db.WithContext(ctx).First(&ride, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

func (r *RideRepository) GetByDisplayCode(code string) (*models.Ride, error) {
	var ride models.Ride
	err := r.db.Where("display_code = ?", code).First(&ride).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

func (r *RideRepository) DisplayCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Ride{}).Where("display_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *RideRepository) ListActive(limit, offset int) ([]models.Ride, error) {
	var rides []models.Ride
	err := r.db.Where("status = ?", domain.RideStatusActive).
		Order("departure_time ASC").Limit(limit).Offset(offset).Find(&rides).Error
	return rides, err
}

func (r *RideRepository) ListByOwner(ownerID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := r.db.Where("owner_id = ?", ownerID).Order("departure_time DESC").Find(&rides).Error
	return rides, err
}

// ListJoined returns rides the user participates in (any payment state).
func (r *RideRepository) ListJoined(userID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := r.db.Joins("JOIN ride_participants ON ride_participants.ride_id = rides.id").
		Where("ride_participants.user_id = ? AND ride_participants.deleted_at IS NULL", userID).
		Order("rides.departure_time DESC").Find(&rides).Error
	return rides, err
}

// UpdateStatus transitions ride lifecycle state for its owner. Returns
// ErrRideNotFound when the ride does not exist or is not owned by ownerID.
func (r *RideRepository) UpdateStatus(rideID, ownerID uint, status string) error {
	res := r.db.Model(&models.Ride{}).
		Where("id = ? AND owner_id = ?", rideID, ownerID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRideNotFound
	}
	return nil
}

// AllocateSeat atomically consumes one seat and inserts the participant row.
// The decrement is a conditional UPDATE evaluated by the store: it only
// matches while seats_left > 0, so N concurrent joins against one seat
// produce exactly one success. Both writes commit together or not at all.
func (r *RideRepository) AllocateSeat(ctx context.Context, rideID uint, p *models.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ride{}).
			Where("id = ? AND status = ? AND seats_left > 0", rideID, domain.RideStatusActive).
			UpdateColumn("seats_left", gorm.Expr("seats_left - ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Distinguish a lost seat race from a missing or inactive ride,
			// and a repeat join on a full ride from true exhaustion.
			var ride models.Ride
			if err := tx.First(&ride, rideID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRideNotFound
				}
				return err
			}
			if ride.Status != domain.RideStatusActive {
				return ErrRideNotActive
			}
			var joined int64
			if err := tx.Model(&models.Participant{}).
				Where("ride_id = ? AND user_id = ?", rideID, p.UserID).
				Count(&joined).Error; err != nil {
				return err
			}
			if joined > 0 {
				return ErrAlreadyJoined
			}
			return ErrSeatsExhausted
		}
		if err := tx.Create(p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyJoined
			}
			return err
		}
		return nil
	})
}

// ReleaseSeat compensates a failed join: removes the participant row and
// returns the seat, capped at total_seats. Only the booking service calls
// this, and only before any payment exists for the participant.
func (r *RideRepository) ReleaseSeat(ctx context.Context, rideID, participantID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("id = ? AND ride_id = ?", participantID, rideID).
			Delete(&models.Participant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already gone; do not return a seat that was never taken
		}
		return tx.Model(&models.Ride{}).
			Where("id = ? AND seats_left < total_seats", rideID).
			UpdateColumn("seats_left", gorm.Expr("seats_left + ?", 1)).Error
	})
}
