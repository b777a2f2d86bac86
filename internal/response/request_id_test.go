package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("valid header passes through", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerRequestID, id)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get(headerRequestID); got != id {
			t.Errorf("request id = %q, want %q", got, id)
		}
	})

	t.Run("malformed header is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerRequestID, "not-a-uuid")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		got := w.Header().Get(headerRequestID)
		if got == "not-a-uuid" {
			t.Error("malformed request id passed through")
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("replacement id %q is not a uuid", got)
		}
	})

	t.Run("missing header gets one", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if _, err := uuid.Parse(w.Header().Get(headerRequestID)); err != nil {
			t.Errorf("generated id %q is not a uuid", w.Header().Get(headerRequestID))
		}
	})
}
