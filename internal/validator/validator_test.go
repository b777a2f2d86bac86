package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type scorePayload struct {
	Score   float64 `json:"score" binding:"required,min=0"`
	Comment *string `json:"comment" binding:"omitempty,max=500"`
}

func bindBody(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var payload scorePayload
	return Bind(c, &payload)
}

func TestBind(t *testing.T) {
	Setup()

	if fields := bindBody(t, `{"score": 3}`); fields != nil {
		t.Errorf("valid payload produced fields %v", fields)
	}

	fields := bindBody(t, `{}`)
	if fields == nil {
		t.Fatal("missing score accepted")
	}
	if _, ok := fields["score"]; !ok {
		t.Errorf("fields = %v, want an entry keyed by the json name score", fields)
	}

	if fields := bindBody(t, `{broken`); fields["detail"] == "" {
		t.Errorf("fields = %v, want a detail entry for malformed json", fields)
	}
}
