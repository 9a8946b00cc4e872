package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-management/middleware"
	"hotel-management/services"
)

type AdminController struct {
	Users *services.UserService
	Bills *services.BillService
	log   *zap.Logger
}

func NewAdminController(users *services.UserService, bills *services.BillService, log *zap.Logger) *AdminController {
	return &AdminController{Users: users, Bills: bills, log: log}
}

func (ctrl *AdminController) UserList(c *gin.Context) {
	users, err := ctrl.Users.List(c.Request.Context())
	if err != nil {
		serverError(c, ctrl.log, "list users failed", err)
		return
	}
	render(c, http.StatusOK, "admin_users.html", gin.H{"Title": "Users", "Users": users})
}

// DeleteUser: POST /admin/users/:id/delete
func (ctrl *AdminController) DeleteUser(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		redirectWithFlash(c, "/admin/users", "Invalid user.")
		return
	}
	admin, _ := middleware.CurrentUser(c)
	if admin.ID == id {
		redirectWithFlash(c, "/admin/users", "You cannot delete your own account.")
		return
	}

	err := ctrl.Users.Delete(c.Request.Context(), id)
	switch {
	case err == nil:
		ctrl.log.Info("user deleted", zap.Uint("user_id", id), zap.Uint("by", admin.ID))
		redirectWithFlash(c, "/admin/users", "User deleted.")
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrUserHasBookings),
		errors.Is(err, services.ErrUserManagesRoom):
		redirectWithFlash(c, "/admin/users", capitalize(err.Error())+".")
	case isForeignKeyError(err):
		ctrl.log.Warn("user delete blocked by reference", zap.Uint("user_id", id), zap.Error(err))
		redirectWithFlash(c, "/admin/users", "User is still referenced by other records.")
	default:
		serverError(c, ctrl.log, "delete user failed", err)
	}
}

// DeleteBill: POST /admin/bills/:id/delete
func (ctrl *AdminController) DeleteBill(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		redirectWithFlash(c, "/staff/bills", "Invalid bill.")
		return
	}

	err := ctrl.Bills.Delete(c.Request.Context(), id)
	switch {
	case err == nil:
		admin, _ := middleware.CurrentUser(c)
		ctrl.log.Info("bill deleted", zap.Uint("bill_id", id), zap.Uint("by", admin.ID))
		redirectWithFlash(c, "/staff/bills", "Bill deleted.")
	case errors.Is(err, services.ErrBillNotFound):
		redirectWithFlash(c, "/staff/bills", "Bill not found.")
	default:
		serverError(c, ctrl.log, "delete bill failed", err)
	}
}
