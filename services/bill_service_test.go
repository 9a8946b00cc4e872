package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hotel-management/models"
)

func checkedInRental(t *testing.T, env *testEnv) (*models.User, *models.RoomRentalForm) {
	t.Helper()
	ctx := context.Background()
	user := env.mustRegister(t, validForm())
	room := firstRoom(t, env)

	res, err := env.booking.CreateReservation(ctx, user.ID, room.ID, day(0), day(2), 2)
	require.NoError(t, err)
	rental, err := env.booking.CheckIn(ctx, res.ID)
	require.NoError(t, err)
	return user, rental
}

func TestBillDelete_RemovesRental(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, rental := checkedInRental(t, env)

	bills, err := env.bills.List(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	require.NotNil(t, bills[0].Rental)
	assert.Equal(t, rental.ID, bills[0].Rental.ID)

	require.NoError(t, env.bills.Delete(ctx, rental.BillID))

	var n int64
	env.db.Model(&models.RoomRentalForm{}).Where("id = ?", rental.ID).Count(&n)
	assert.Zero(t, n)
	env.db.Model(&models.Bill{}).Count(&n)
	assert.Zero(t, n)

	assert.ErrorIs(t, env.bills.Delete(ctx, rental.BillID), ErrBillNotFound)
}

func TestBillExportXLSX(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, rental := checkedInRental(t, env)

	var buf bytes.Buffer
	require.NoError(t, env.bills.ExportXLSX(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(billSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, billHeaders, rows[0])
	assert.Equal(t, "Alice", rows[1][2])
	assert.Equal(t, "open", rows[1][11])

	_, err = env.booking.CheckOut(ctx, rental.ID, day(2))
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, env.bills.ExportXLSX(ctx, &buf))
	f2, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f2.Close()
	rows, err = f2.GetRows(billSheet)
	require.NoError(t, err)
	assert.Equal(t, "settled", rows[1][11])
}

func TestUserDelete_RemovesComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, validForm())
	room := firstRoom(t, env)

	_, err := env.comments.Add(ctx, user.ID, room.ID, "Lovely view")
	require.NoError(t, err)

	require.NoError(t, env.users.Delete(ctx, user.ID))

	var n int64
	env.db.Model(&models.Comment{}).Where("user_id = ?", user.ID).Count(&n)
	assert.Zero(t, n)
	assert.ErrorIs(t, env.users.Delete(ctx, user.ID), ErrUserNotFound)
}

func TestUserDelete_KeepsBookingHistory(t *testing.T) {
	env := newTestEnv(t)
	user, _ := checkedInRental(t, env)

	assert.ErrorIs(t, env.users.Delete(context.Background(), user.ID), ErrUserHasBookings)
}

func TestUserDelete_KeepsRoomManagers(t *testing.T) {
	env := newTestEnv(t)
	admin, err := env.users.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)

	assert.ErrorIs(t, env.users.Delete(context.Background(), admin.ID), ErrUserManagesRoom)
}
