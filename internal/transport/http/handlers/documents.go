package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workforce-api/internal/transport/http/middleware"
	"github.com/arklim/workforce-api/internal/usecase"
)

// DocumentHandler stores uploads and serves stored artifacts back out. The
// files route also resolves export artifacts, so a dispatched job's predicted
// URL becomes downloadable the moment the worker finishes.
type DocumentHandler struct {
	docs    *usecase.DocumentService
	baseURL string
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(docs *usecase.DocumentService, baseURL string) *DocumentHandler {
	return &DocumentHandler{docs: docs, baseURL: baseURL}
}

// RegisterRoutes binds document routes onto the authenticated groups.
func (h *DocumentHandler) RegisterRoutes(documents, files *gin.RouterGroup) {
	documents.POST("", h.upload)
	documents.GET("/:id", h.get)
	documents.POST("/:id/rename", h.rename)
	files.GET("/:filename", h.download)
}

func (h *DocumentHandler) upload(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Missing Authorization Header"})
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		respondFieldError(c, "document", "Missing data for required field.")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
		return
	}
	defer f.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	doc, err := h.docs.Upload(c.Request.Context(), actor.ID, fileHeader.Filename, mimeType, f)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyUpload) {
			respondFieldError(c, "document", "Uploaded file is empty.")
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newDocumentPayload(*doc, h.baseURL)})
}

func (h *DocumentHandler) get(c *gin.Context) {
	doc, err := h.docs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondMappedError(c, err,
			ErrorCase{Err: usecase.ErrDocumentNotFound, Status: http.StatusNotFound, Message: "Document not found"},
		)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newDocumentPayload(*doc, h.baseURL)})
}

// rename re-keys the stored file, revoking the document's previous URL.
func (h *DocumentHandler) rename(c *gin.Context) {
	doc, err := h.docs.Rename(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondMappedError(c, err,
			ErrorCase{Err: usecase.ErrDocumentNotFound, Status: http.StatusNotFound, Message: "Document not found"},
		)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: newDocumentPayload(*doc, h.baseURL)})
}

func (h *DocumentHandler) download(c *gin.Context) {
	doc, reader, err := h.docs.OpenByFilename(c.Request.Context(), c.Param("filename"))
	if err != nil {
		respondMappedError(c, err,
			ErrorCase{Err: usecase.ErrDocumentNotFound, Status: http.StatusNotFound, Message: "File not found"},
		)
		return
	}
	defer reader.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": `attachment; filename="` + doc.OriginalName + `"`,
	}
	c.DataFromReader(http.StatusOK, doc.SizeBytes, doc.MimeType, reader, extraHeaders)
}
