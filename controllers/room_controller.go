package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-management/middleware"
	"hotel-management/services"
	"hotel-management/utils"
)

type RoomController struct {
	Rooms    *services.RoomService
	Comments *services.CommentService
	log      *zap.Logger
}

func NewRoomController(rooms *services.RoomService, comments *services.CommentService, log *zap.Logger) *RoomController {
	return &RoomController{Rooms: rooms, Comments: comments, log: log}
}

func (ctrl *RoomController) Home(c *gin.Context) {
	rooms, err := ctrl.Rooms.List(c.Request.Context())
	if err != nil {
		serverError(c, ctrl.log, "list rooms failed", err)
		return
	}
	render(c, http.StatusOK, "index.html", gin.H{
		"Title": "Home",
		"Rooms": rooms,
		"Today": time.Now(),
	})
}

// Detail: GET /roomdetail?id=
func (ctrl *RoomController) Detail(c *gin.Context) {
	id, ok := parseID(c.Query("id"))
	if !ok {
		renderError(c, http.StatusNotFound, "Room not found.")
		return
	}

	room, err := ctrl.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			renderError(c, http.StatusNotFound, "Room not found.")
			return
		}
		serverError(c, ctrl.log, "load room failed", err)
		return
	}
	render(c, http.StatusOK, "roomdetail.html", gin.H{"Title": room.Name, "Room": room})
}

// AddComment: POST /rooms/:id/comments
func (ctrl *RoomController) AddComment(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		renderError(c, http.StatusNotFound, "Room not found.")
		return
	}
	user, _ := middleware.CurrentUser(c)
	back := fmt.Sprintf("/roomdetail?id=%d", id)

	_, err := ctrl.Comments.Add(c.Request.Context(), user.ID, id, c.PostForm("content"))
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, back)
	case errors.Is(err, services.ErrRoomNotFound):
		renderError(c, http.StatusNotFound, "Room not found.")
	case errors.Is(err, services.ErrCommentEmpty), errors.Is(err, services.ErrCommentTooLong):
		redirectWithFlash(c, back, capitalize(err.Error())+".")
	default:
		serverError(c, ctrl.log, "add comment failed", err)
	}
}

// APIList: GET /api/rooms
func (ctrl *RoomController) APIList(c *gin.Context) {
	rooms, err := ctrl.Rooms.List(c.Request.Context())
	if err != nil {
		ctrl.log.Error("list rooms failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
