package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/samber/oops"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotel-management/models"
)

// DateLayout is the format of stay dates in forms.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate         = errors.New("dates must be in YYYY-MM-DD format")
	ErrInvalidStay         = errors.New("check-out date must be after check-in date")
	ErrStayInPast          = errors.New("check-in date cannot be in the past")
	ErrInvalidGuests       = errors.New("number of guests is out of range")
	ErrRoomUnavailable     = errors.New("room is not available for these dates")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAlreadyCheckedIn    = errors.New("reservation is already checked in")
	ErrCheckInTooEarly     = errors.New("reservation starts on a later date")
	ErrRentalNotFound      = errors.New("rental not found")
	ErrAlreadyCheckedOut   = errors.New("rental is already checked out")
)

// BookingService handles reservations and the check-in/check-out desk.
type BookingService struct {
	DB  *gorm.DB
	now func() time.Time
	log *zap.Logger
}

func NewBookingService(db *gorm.DB, log *zap.Logger) *BookingService {
	return &BookingService{DB: db, now: time.Now, log: log}
}

// ParseStayDates parses both dates and checks their order.
func ParseStayDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, ErrInvalidStay
	}
	return in, out, nil
}

// Today is the current date at midnight UTC.
func (s *BookingService) Today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// pricing gathers what a quote needs about the room and the customer.
type pricing struct {
	room        models.Room
	maxGuests   int
	surcharge   float64
	coefficient float64
}

func loadPricing(tx *gorm.DB, roomID, userID uint) (*pricing, error) {
	p := &pricing{maxGuests: DefaultMaxGuests, coefficient: 1}

	if err := tx.Preload("RoomType.Regulation.ExtraCharge").First(&p.room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if reg := p.room.RoomType.Regulation; reg != nil {
		p.maxGuests = reg.NumberOfGuests
		if reg.ExtraCharge != nil {
			p.surcharge = reg.ExtraCharge.Rate
		}
	}

	var user models.User
	if err := tx.Preload("CustomerType.Regulation").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if reg := user.CustomerType.Regulation; reg != nil && reg.Coefficient > 0 {
		p.coefficient = reg.Coefficient
	}
	return p, nil
}

func (p *pricing) quote(in, out time.Time, guests int) Quote {
	return ComputeQuote(p.room.Price, Nights(in, out), guests, p.surcharge, p.coefficient)
}

// Quote prices a prospective stay for the user.
func (s *BookingService) Quote(ctx context.Context, userID, roomID uint, in, out time.Time, guests int) (Quote, error) {
	p, err := loadPricing(s.DB.WithContext(ctx), roomID, userID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrUserNotFound) {
			return Quote{}, err
		}
		return Quote{}, oops.Code("BOOKING_QUOTE_FAILED").With("room_id", roomID).Wrap(err)
	}
	return p.quote(in, out, guests), nil
}

// CreateReservation books the room for [in, out) after checking capacity and
// overlap with other pending reservations and open rentals.
func (s *BookingService) CreateReservation(ctx context.Context, userID, roomID uint, in, out time.Time, guests int) (*models.RoomReservationForm, error) {
	if !out.After(in) {
		return nil, ErrInvalidStay
	}
	if in.Before(s.Today()) {
		return nil, ErrStayInPast
	}

	var reservation *models.RoomReservationForm
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadPricing(tx, roomID, userID)
		if err != nil {
			return err
		}
		if guests < 1 || guests > p.maxGuests {
			return ErrInvalidGuests
		}

		busy, err := roomBusy(tx, roomID, in, out)
		if err != nil {
			return err
		}
		if busy {
			return ErrRoomUnavailable
		}

		q := p.quote(in, out, guests)
		reservation = &models.RoomReservationForm{
			CheckInDate:    in,
			CheckOutDate:   out,
			NumberOfGuests: guests,
			Deposit:        q.Deposit,
			UserID:         userID,
			RoomID:         roomID,
		}
		return tx.Create(reservation).Error
	})
	if err != nil {
		if isBookingError(err) {
			return nil, err
		}
		return nil, oops.Code("BOOKING_RESERVE_FAILED").With("room_id", roomID).With("user_id", userID).Wrap(err)
	}

	s.log.Info("reservation created",
		zap.Uint("reservation_id", reservation.ID),
		zap.Uint("room_id", roomID),
		zap.Uint("user_id", userID))
	return reservation, nil
}

func roomBusy(tx *gorm.DB, roomID uint, in, out time.Time) (bool, error) {
	var n int64
	err := tx.Model(&models.RoomReservationForm{}).
		Where("room_id = ? AND is_check_in = ? AND check_in_date < ? AND check_out_date > ?", roomID, false, out, in).
		Count(&n).Error
	if err != nil || n > 0 {
		return n > 0, err
	}
	err = tx.Model(&models.RoomRentalForm{}).
		Where("room_id = ? AND checked_out_at IS NULL AND check_in_date < ? AND check_out_date > ?", roomID, out, in).
		Count(&n).Error
	return n > 0, err
}

// ListReservations returns reservations with guest and room, soonest first.
func (s *BookingService) ListReservations(ctx context.Context, pendingOnly bool) ([]models.RoomReservationForm, error) {
	q := s.DB.WithContext(ctx).Preload("User").Preload("Room.RoomType")
	if pendingOnly {
		q = q.Where("is_check_in = ?", false)
	}

	var out []models.RoomReservationForm
	if err := q.Order("check_in_date, id").Find(&out).Error; err != nil {
		return nil, oops.Code("BOOKING_LIST_FAILED").Wrap(err)
	}
	return out, nil
}

func (s *BookingService) ListUserReservations(ctx context.Context, userID uint) ([]models.RoomReservationForm, error) {
	var out []models.RoomReservationForm
	err := s.DB.WithContext(ctx).
		Preload("Room.RoomType").
		Where("user_id = ?", userID).
		Order("check_in_date DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, oops.Code("BOOKING_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return out, nil
}

func (s *BookingService) ListOpenRentals(ctx context.Context) ([]models.RoomRentalForm, error) {
	var out []models.RoomRentalForm
	err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Room.RoomType").
		Where("checked_out_at IS NULL").
		Order("check_in_date, id").
		Find(&out).Error
	if err != nil {
		return nil, oops.Code("RENTAL_LIST_FAILED").Wrap(err)
	}
	return out, nil
}

// CheckIn turns a reservation into a rental owned by a new bill.
func (s *BookingService) CheckIn(ctx context.Context, reservationID uint) (*models.RoomRentalForm, error) {
	var rental *models.RoomRentalForm
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res models.RoomReservationForm
		if err := tx.First(&res, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if res.CheckInDate.UTC().After(s.Today()) {
			return ErrCheckInTooEarly
		}

		// Conditional update so two desks cannot check in the same reservation.
		upd := tx.Model(&models.RoomReservationForm{}).
			Where("id = ? AND is_check_in = ?", res.ID, false).
			Update("is_check_in", true)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrAlreadyCheckedIn
		}

		p, err := loadPricing(tx, res.RoomID, res.UserID)
		if err != nil {
			return err
		}
		q := p.quote(res.CheckInDate, res.CheckOutDate, res.NumberOfGuests).WithDeposit(res.Deposit)
		breakdown, err := json.Marshal(q)
		if err != nil {
			return err
		}

		bill := models.Bill{
			TotalAmount:  q.Total,
			CreationDate: s.now(),
			Breakdown:    datatypes.JSON(breakdown),
			UserID:       res.UserID,
		}
		if err := tx.Create(&bill).Error; err != nil {
			return err
		}

		resID := res.ID
		rental = &models.RoomRentalForm{
			CheckInDate:    res.CheckInDate,
			CheckOutDate:   res.CheckOutDate,
			NumberOfGuests: res.NumberOfGuests,
			Deposit:        res.Deposit,
			UserID:         res.UserID,
			RoomID:         res.RoomID,
			BillID:         bill.ID,
			ReservationID:  &resID,
		}
		return tx.Create(rental).Error
	})
	if err != nil {
		if isBookingError(err) {
			return nil, err
		}
		return nil, oops.Code("BOOKING_CHECKIN_FAILED").With("reservation_id", reservationID).Wrap(err)
	}

	s.log.Info("checked in",
		zap.Uint("reservation_id", reservationID),
		zap.Uint("rental_id", rental.ID),
		zap.Uint("bill_id", rental.BillID))
	return rental, nil
}

// CheckOut closes the rental at the given time and settles its bill on the
// nights actually stayed.
func (s *BookingService) CheckOut(ctx context.Context, rentalID uint, at time.Time) (*models.Bill, error) {
	var bill models.Bill
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rental models.RoomRentalForm
		if err := tx.First(&rental, rentalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRentalNotFound
			}
			return err
		}
		if !rental.IsOpen() {
			return ErrAlreadyCheckedOut
		}
		// A stay never ends before it starts.
		if at.Before(rental.CheckInDate) {
			at = rental.CheckInDate
		}

		p, err := loadPricing(tx, rental.RoomID, rental.UserID)
		if err != nil {
			return err
		}
		q := p.quote(rental.CheckInDate, at, rental.NumberOfGuests).WithDeposit(rental.Deposit)
		breakdown, err := json.Marshal(q)
		if err != nil {
			return err
		}

		upd := tx.Model(&models.RoomRentalForm{}).
			Where("id = ? AND checked_out_at IS NULL", rental.ID).
			Updates(map[string]interface{}{"check_out_date": at, "checked_out_at": at})
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrAlreadyCheckedOut
		}

		if err := tx.Model(&models.Bill{}).Where("id = ?", rental.BillID).Updates(map[string]interface{}{
			"total_amount":  q.Total,
			"creation_date": at,
			"breakdown":     datatypes.JSON(breakdown),
		}).Error; err != nil {
			return err
		}

		return tx.Preload("User").Preload("Rental.Room").First(&bill, rental.BillID).Error
	})
	if err != nil {
		if isBookingError(err) {
			return nil, err
		}
		return nil, oops.Code("BOOKING_CHECKOUT_FAILED").With("rental_id", rentalID).Wrap(err)
	}

	s.log.Info("checked out",
		zap.Uint("rental_id", rentalID),
		zap.Uint("bill_id", bill.ID),
		zap.Float64("total", bill.TotalAmount))
	return &bill, nil
}

func isBookingError(err error) bool {
	for _, target := range []error{
		ErrInvalidStay, ErrStayInPast, ErrInvalidGuests, ErrRoomUnavailable,
		ErrReservationNotFound, ErrAlreadyCheckedIn, ErrCheckInTooEarly, ErrRentalNotFound,
		ErrAlreadyCheckedOut, ErrRoomNotFound, ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
