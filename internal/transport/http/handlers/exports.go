package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/transport/http/middleware"
	"github.com/arklim/workforce-api/internal/usecase"
)

// ExportHandler accepts roster export requests and reports job progress.
type ExportHandler struct {
	exports *usecase.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *usecase.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// RegisterRoutes binds export routes. Any authenticated role may export.
func (h *ExportHandler) RegisterRoutes(users, exports *gin.RouterGroup) {
	users.POST("/xlsx", h.dispatchXLSX)
	users.POST("/word", h.dispatchWord)
	exports.GET("/:id", h.status)
}

func (h *ExportHandler) dispatchXLSX(c *gin.Context) {
	h.dispatch(c, domain.ExportKindXLSX, false)
}

func (h *ExportHandler) dispatchWord(c *gin.Context) {
	toPDF := c.Query("to_pdf") == "1" || c.Query("to_pdf") == "true"
	h.dispatch(c, domain.ExportKindDOCX, toPDF)
}

// dispatch enqueues the job and acknowledges with the predicted artifact URL;
// the worker fills in the bytes later.
func (h *ExportHandler) dispatch(c *gin.Context, kind domain.ExportKind, toPDF bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Missing Authorization Header"})
		return
	}

	job, err := h.exports.Dispatch(c.Request.Context(), actor.ID, kind, toPDF)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusAccepted, ExportResponse{Task: job.ID, URL: job.ArtifactURL})
}

func (h *ExportHandler) status(c *gin.Context) {
	job, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondMappedError(c, err,
			ErrorCase{Err: usecase.ErrExportJobNotFound, Status: http.StatusNotFound, Message: "Export job not found"},
		)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newExportJobPayload(*job)})
}
