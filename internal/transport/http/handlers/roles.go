package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workforce-api/internal/repository"
	"github.com/arklim/workforce-api/internal/usecase"
)

// RoleHandler exposes role CRUD and search. Authorization is applied by the
// route group; every endpoint here assumes an admin caller.
type RoleHandler struct {
	roles *usecase.RoleService
}

// NewRoleHandler constructs RoleHandler.
func NewRoleHandler(roles *usecase.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// RegisterRoutes binds role routes onto the (already guarded) group.
func (h *RoleHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.delete)
	r.POST("/search", h.search)
}

func (h *RoleHandler) create(c *gin.Context) {
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roles.Create(c.Request.Context(), req.Label, req.Description)
	if err != nil {
		h.respondRoleError(c, err)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newRolePayload(*role)})
}

func (h *RoleHandler) get(c *gin.Context) {
	role, err := h.roles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondRoleError(c, err)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newRolePayload(*role)})
}

func (h *RoleHandler) update(c *gin.Context) {
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roles.Update(c.Request.Context(), c.Param("id"), req.Label, req.Description)
	if err != nil {
		h.respondRoleError(c, err)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newRolePayload(*role)})
}

func (h *RoleHandler) delete(c *gin.Context) {
	if err := h.roles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondRoleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (h *RoleHandler) search(c *gin.Context) {
	var req SearchRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.roles.Search(c.Request.Context(), req.toQuery())
	if err != nil {
		respondSearchError(c, err)
		return
	}

	resp := SearchResponse[RolePayload]{
		Data:            make([]RolePayload, 0, len(result.Data)),
		RecordsTotal:    result.RecordsTotal,
		RecordsFiltered: result.RecordsFiltered,
	}
	for _, role := range result.Data {
		resp.Data = append(resp.Data, newRolePayload(role))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RoleHandler) respondRoleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrRoleNotFound):
		c.JSON(http.StatusNotFound, MessageResponse{Message: "Role not found"})
	case errors.Is(err, usecase.ErrRoleNameTaken):
		// The derived slug collides with an existing row, deleted included.
		respondFieldError(c, "name", usecase.ErrRoleNameTaken.Error())
	case errors.Is(err, usecase.ErrRoleLabelRequired):
		respondFieldError(c, "label", "Missing data for required field.")
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
	}
}

// respondSearchError maps repository-level DSL rejections onto the
// validation-error shape.
func respondSearchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidField):
		respondFieldError(c, "search", "Unknown field name.")
	case errors.Is(err, repository.ErrInvalidOperator):
		respondFieldError(c, "search", "Unknown field operator.")
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
	}
}
