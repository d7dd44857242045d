package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workforce-api/internal/transport/http/middleware"
	"github.com/arklim/workforce-api/internal/usecase"
)

// UserHandler exposes principal endpoints. Row-level scoping lives in the
// repository, so a target outside the caller's cohort reads as not-found.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds user management routes. The manage middleware holds
// the role policy (admin and team-leader); workers are turned away with 403
// before any scoping or validation runs.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, manage gin.HandlerFunc) {
	r.POST("", manage, h.create)
	r.GET("/:id", manage, h.get)
	r.DELETE("/:id", manage, h.delete)
	r.POST("/search", manage, h.search)
}

func (h *UserHandler) create(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Missing Authorization Header"})
		return
	}

	var req UserCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Create(c.Request.Context(), actor, req.Email, req.Password, req.Roles)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrWeakPassword):
			respondFieldError(c, "password", err.Error())
		case errors.Is(err, usecase.ErrEmailTaken):
			respondFieldError(c, "email", "Email already registered.")
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newUserPayload(*user)})
}

func (h *UserHandler) get(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Missing Authorization Header"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondMappedError(c, err,
			ErrorCase{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"},
		)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newUserPayload(*user)})
}

func (h *UserHandler) delete(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Missing Authorization Header"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondMappedError(c, err,
			ErrorCase{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"},
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (h *UserHandler) search(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Missing Authorization Header"})
		return
	}

	var req SearchRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.users.Search(c.Request.Context(), actor, req.toQuery())
	if err != nil {
		respondSearchError(c, err)
		return
	}

	resp := SearchResponse[UserPayload]{
		Data:            make([]UserPayload, 0, len(result.Data)),
		RecordsTotal:    result.RecordsTotal,
		RecordsFiltered: result.RecordsFiltered,
	}
	for _, user := range result.Data {
		resp.Data = append(resp.Data, newUserPayload(user))
	}

	c.JSON(http.StatusOK, resp)
}
