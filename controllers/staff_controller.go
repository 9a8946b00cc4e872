package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-management/middleware"
	"hotel-management/models"
	"hotel-management/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StaffController serves the front desk pages.
type StaffController struct {
	Booking *services.BookingService
	Rooms   *services.RoomService
	Bills   *services.BillService
	now     func() time.Time
	log     *zap.Logger
}

func NewStaffController(booking *services.BookingService, rooms *services.RoomService, bills *services.BillService, log *zap.Logger) *StaffController {
	return &StaffController{Booking: booking, Rooms: rooms, Bills: bills, now: time.Now, log: log}
}

func (ctrl *StaffController) RoomList(c *gin.Context) {
	rooms, err := ctrl.Rooms.List(c.Request.Context())
	if err != nil {
		serverError(c, ctrl.log, "list rooms failed", err)
		return
	}
	render(c, http.StatusOK, "staff_rooms.html", gin.H{"Title": "Rooms", "Rooms": rooms})
}

func (ctrl *StaffController) Reservations(c *gin.Context) {
	list, err := ctrl.Booking.ListReservations(c.Request.Context(), false)
	if err != nil {
		serverError(c, ctrl.log, "list reservations failed", err)
		return
	}
	render(c, http.StatusOK, "staff_booking.html", gin.H{"Title": "Reservations", "Reservations": list})
}

// ---------------------------
// Check-in
// ---------------------------

func (ctrl *StaffController) ShowCheckIn(c *gin.Context) {
	pending, err := ctrl.Booking.ListReservations(c.Request.Context(), true)
	if err != nil {
		serverError(c, ctrl.log, "list reservations failed", err)
		return
	}
	render(c, http.StatusOK, "staff_checkin.html", gin.H{"Title": "Check-in", "Reservations": pending})
}

func (ctrl *StaffController) CheckIn(c *gin.Context) {
	id, ok := parseID(c.PostForm("reservation_id"))
	if !ok {
		redirectWithFlash(c, "/staff/checkin", "Invalid reservation.")
		return
	}

	rental, err := ctrl.Booking.CheckIn(c.Request.Context(), id)
	switch {
	case err == nil:
		staff, _ := middleware.CurrentUser(c)
		ctrl.log.Info("front desk check-in", zap.Uint("staff_id", staff.ID), zap.Uint("rental_id", rental.ID))
		redirectWithFlash(c, "/staff/checkin", fmt.Sprintf("Reservation #%d checked in (bill #%d).", id, rental.BillID))
	case errors.Is(err, services.ErrReservationNotFound), errors.Is(err, services.ErrAlreadyCheckedIn),
		errors.Is(err, services.ErrCheckInTooEarly):
		redirectWithFlash(c, "/staff/checkin", capitalize(err.Error())+".")
	default:
		serverError(c, ctrl.log, "check-in failed", err)
	}
}

// ---------------------------
// Check-out
// ---------------------------

func (ctrl *StaffController) ShowCheckOut(c *gin.Context) {
	ctrl.renderCheckOut(c, nil)
}

func (ctrl *StaffController) CheckOut(c *gin.Context) {
	id, ok := parseID(c.PostForm("rental_id"))
	if !ok {
		redirectWithFlash(c, "/staff/checkout", "Invalid rental.")
		return
	}

	bill, err := ctrl.Booking.CheckOut(c.Request.Context(), id, ctrl.now())
	switch {
	case err == nil:
		ctrl.renderCheckOut(c, bill)
	case errors.Is(err, services.ErrRentalNotFound), errors.Is(err, services.ErrAlreadyCheckedOut):
		redirectWithFlash(c, "/staff/checkout", capitalize(err.Error())+".")
	default:
		serverError(c, ctrl.log, "check-out failed", err)
	}
}

func (ctrl *StaffController) renderCheckOut(c *gin.Context, bill *models.Bill) {
	rentals, err := ctrl.Booking.ListOpenRentals(c.Request.Context())
	if err != nil {
		serverError(c, ctrl.log, "list rentals failed", err)
		return
	}

	data := gin.H{"Title": "Check-out", "Rentals": rentals}
	if bill != nil {
		breakdown, err := services.Breakdown(*bill)
		if err != nil {
			ctrl.log.Warn("decode bill breakdown failed", zap.Uint("bill_id", bill.ID), zap.Error(err))
		}
		data["Bill"] = bill
		data["Breakdown"] = breakdown
	}
	render(c, http.StatusOK, "staff_checkout.html", data)
}

// ---------------------------
// Bills
// ---------------------------

func (ctrl *StaffController) BillList(c *gin.Context) {
	bills, err := ctrl.Bills.List(c.Request.Context())
	if err != nil {
		serverError(c, ctrl.log, "list bills failed", err)
		return
	}
	user, _ := middleware.CurrentUser(c)
	render(c, http.StatusOK, "staff_bills.html", gin.H{
		"Title":   "Bills",
		"Bills":   bills,
		"IsAdmin": user.Role == models.RoleAdmin,
	})
}

func (ctrl *StaffController) ExportBills(c *gin.Context) {
	var buf bytes.Buffer
	if err := ctrl.Bills.ExportXLSX(c.Request.Context(), &buf); err != nil {
		serverError(c, ctrl.log, "export bills failed", err)
		return
	}

	filename := fmt.Sprintf("bills-%s.xlsx", ctrl.now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
