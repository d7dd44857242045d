package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

var gateTypes = []string{"application/json", "multipart/form-data", "application/octet-stream"}

func newGateRouter(reached *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", ContentTypeGate(gateTypes))
	api.POST("/probe", func(c *gin.Context) {
		*reached = true
		c.JSON(http.StatusOK, gin.H{})
	})
	api.GET("/probe", func(c *gin.Context) {
		*reached = true
		c.JSON(http.StatusOK, gin.H{})
	})
	r.POST("/welcome", func(c *gin.Context) {
		*reached = true
		c.JSON(http.StatusOK, gin.H{})
	})
	return r
}

func TestContentTypeGateRejectsUnlistedType(t *testing.T) {
	var reached bool
	r := newGateRouter(&reached)

	req := httptest.NewRequest(http.MethodPost, "/api/probe", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, `"Invalid Content-Type"`) {
		t.Errorf("body = %s, want Invalid Content-Type message", got)
	}
	if reached {
		t.Error("handler must not run for rejected requests")
	}
}

func TestContentTypeGateAllowsListedType(t *testing.T) {
	var reached bool
	r := newGateRouter(&reached)

	req := httptest.NewRequest(http.MethodPost, "/api/probe", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !reached {
		t.Error("handler must run for admitted requests")
	}
}

func TestContentTypeGateAllowsBodylessRequests(t *testing.T) {
	var reached bool
	r := newGateRouter(&reached)

	req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !reached {
		t.Error("requests with no declared media type must pass")
	}
}

func TestContentTypeGateAllowsMissingContentType(t *testing.T) {
	var reached bool
	r := newGateRouter(&reached)

	// No body, no Content-Type, no Accept: the allow-list polices declared
	// media types only, so an undeclared one admits the request.
	req := httptest.NewRequest(http.MethodPost, "/api/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !reached {
		t.Error("requests without a Content-Type header must pass")
	}
}

func TestContentTypeGateJSONAcceptCarveOut(t *testing.T) {
	var reached bool
	r := newGateRouter(&reached)

	req := httptest.NewRequest(http.MethodPost, "/api/probe", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "text/html, */*;q=0.8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !reached {
		t.Error("JSON-accepting requests must bypass the gate")
	}
}

func TestContentTypeGateOnlyCoversAPIPrefix(t *testing.T) {
	var reached bool
	r := newGateRouter(&reached)

	// Outside the /api group the gate never runs, so an unlisted type is fine.
	req := httptest.NewRequest(http.MethodPost, "/welcome", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// And an unregistered path outside the prefix is a plain 404, not a 400.
	req = httptest.NewRequest(http.MethodPost, "/nowhere", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
