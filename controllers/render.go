package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	mysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"hotel-management/middleware"
	"hotel-management/session"
)

// render adds the fields every page layout reads.
func render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	user, _ := middleware.CurrentUser(c)
	data["User"] = user
	data["Flash"] = session.Default(c).PopFlash()
	c.HTML(status, page, data)
}

func renderError(c *gin.Context, status int, message string) {
	render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// serverError logs err and shows a generic failure page.
func serverError(c *gin.Context, log *zap.Logger, msg string, err error) {
	_ = c.Error(err)
	log.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func redirectWithFlash(c *gin.Context, location, flash string) {
	if flash != "" {
		session.Default(c).SetFlash(flash)
	}
	c.Redirect(http.StatusFound, location)
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func isDuplicateKeyError(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate entry") || strings.Contains(lower, "unique constraint failed")
}

func isForeignKeyError(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1451 || merr.Number == 1452
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "foreign key")
}
