package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContentTypeGate rejects requests whose declared media type is not on the
// allow-list, before any handler runs. It is meant to be installed on the
// /api group only; paths outside the prefix never see it.
//
// The media type is the Content-Type header up to the first ';' (parameters
// such as charset and multipart boundaries are ignored). Requests with no
// declared type pass: GET and DELETE carry no body, so there is nothing to
// vet. Requests whose Accept header admits JSON also pass, so documentation
// UIs can probe endpoints without a body.
func ContentTypeGate(allowed []string) gin.HandlerFunc {
	allowSet := make(map[string]struct{}, len(allowed))
	for _, mt := range allowed {
		mt = strings.ToLower(strings.TrimSpace(mt))
		if mt != "" {
			allowSet[mt] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		mediaType := parseMediaType(c.GetHeader("Content-Type"))
		if mediaType == "" {
			c.Next()
			return
		}

		if _, ok := allowSet[mediaType]; ok {
			c.Next()
			return
		}

		if acceptsJSON(c.GetHeader("Accept")) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid Content-Type"})
	}
}

// parseMediaType returns the media type without parameters, lower-cased.
// A missing header yields the empty string.
func parseMediaType(header string) string {
	if i := strings.Index(header, ";"); i >= 0 {
		header = header[:i]
	}
	return strings.ToLower(strings.TrimSpace(header))
}

// acceptsJSON reports whether the Accept header admits application/json.
// A missing Accept header does not.
func acceptsJSON(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt := parseMediaType(part)
		switch mt {
		case "application/json", "application/*", "*/*":
			return true
		}
	}
	return false
}
