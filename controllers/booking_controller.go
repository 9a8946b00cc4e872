package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-management/middleware"
	"hotel-management/services"
)

// bookingForm is echoed back into the booking page.
type bookingForm struct {
	RoomID   uint
	CheckIn  string
	CheckOut string
	Guests   int
}

type BookingController struct {
	Booking *services.BookingService
	Rooms   *services.RoomService
	log     *zap.Logger
}

func NewBookingController(booking *services.BookingService, rooms *services.RoomService, log *zap.Logger) *BookingController {
	return &BookingController{Booking: booking, Rooms: rooms, log: log}
}

func (ctrl *BookingController) ShowBooking(c *gin.Context) {
	today := ctrl.Booking.Today()
	form := bookingForm{
		CheckIn:  today.Format(services.DateLayout),
		CheckOut: today.AddDate(0, 0, 1).Format(services.DateLayout),
		Guests:   1,
	}
	if id, ok := parseID(c.Query("room")); ok {
		form.RoomID = id
	}
	ctrl.renderBooking(c, http.StatusOK, form, nil, "")
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	form := bookingForm{
		CheckIn:  strings.TrimSpace(c.PostForm("check_in")),
		CheckOut: strings.TrimSpace(c.PostForm("check_out")),
	}
	roomID, ok := parseID(c.PostForm("room_id"))
	if !ok {
		ctrl.renderBooking(c, http.StatusBadRequest, form, nil, "Please choose a room.")
		return
	}
	form.RoomID = roomID

	guests, err := strconv.Atoi(strings.TrimSpace(c.PostForm("guests")))
	if err != nil {
		ctrl.renderBooking(c, http.StatusBadRequest, form, nil, "Number of guests must be a number.")
		return
	}
	form.Guests = guests

	in, out, err := services.ParseStayDates(form.CheckIn, form.CheckOut)
	if err != nil {
		ctrl.renderBooking(c, http.StatusBadRequest, form, nil, capitalize(err.Error())+".")
		return
	}

	if c.PostForm("action") == "quote" {
		q, err := ctrl.Booking.Quote(c.Request.Context(), user.ID, roomID, in, out, guests)
		if err != nil {
			if isBookingInputError(err) {
				ctrl.renderBooking(c, http.StatusBadRequest, form, nil, capitalize(err.Error())+".")
				return
			}
			serverError(c, ctrl.log, "quote failed", err)
			return
		}
		ctrl.renderBooking(c, http.StatusOK, form, &q, "")
		return
	}

	res, err := ctrl.Booking.CreateReservation(c.Request.Context(), user.ID, roomID, in, out, guests)
	if err != nil {
		if isBookingInputError(err) {
			ctrl.renderBooking(c, http.StatusBadRequest, form, nil, capitalize(err.Error())+".")
			return
		}
		serverError(c, ctrl.log, "create reservation failed", err)
		return
	}

	redirectWithFlash(c, "/booking", fmt.Sprintf("Reservation #%d created. Deposit due: %.2f", res.ID, res.Deposit))
}

func (ctrl *BookingController) renderBooking(c *gin.Context, status int, form bookingForm, quote *services.Quote, errMsg string) {
	ctx := c.Request.Context()
	user, _ := middleware.CurrentUser(c)

	rooms, err := ctrl.Rooms.List(ctx)
	if err != nil {
		serverError(c, ctrl.log, "list rooms failed", err)
		return
	}
	mine, err := ctrl.Booking.ListUserReservations(ctx, user.ID)
	if err != nil {
		serverError(c, ctrl.log, "list reservations failed", err)
		return
	}

	render(c, status, "booking.html", gin.H{
		"Title":        "Booking",
		"Rooms":        rooms,
		"Reservations": mine,
		"Form":         form,
		"Quote":        quote,
		"Today":        ctrl.Booking.Today(),
		"Error":        errMsg,
	})
}

func isBookingInputError(err error) bool {
	for _, target := range []error{
		services.ErrInvalidDate, services.ErrInvalidStay, services.ErrStayInPast,
		services.ErrInvalidGuests, services.ErrRoomUnavailable, services.ErrRoomNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
