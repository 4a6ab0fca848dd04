package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/geograph/internal/platform/apierr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return env
}

func TestRespondErrUsesAPIErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	err := fmt.Errorf("parse: %w", apierr.New(http.StatusBadRequest, "invalid_limit", errors.New("limit must be positive")))
	RespondErr(c, "fallback", err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
	env := decode(t, rec)
	if env.Error.Code != "invalid_limit" || env.Error.Message != "limit must be positive" {
		t.Fatalf("envelope=%+v", env)
	}
}

func TestRespondErrFallsBackTo500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondErr(c, "query_failed", errors.New("store down"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=%d got=%d", http.StatusInternalServerError, rec.Code)
	}
	if env := decode(t, rec); env.Error.Code != "query_failed" {
		t.Fatalf("code: want=%q got=%q", "query_failed", env.Error.Code)
	}
}

func TestRespondErrorNilErr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondError(c, http.StatusNotFound, "not_found", nil)
	if env := decode(t, rec); env.Error.Message != "unknown error" {
		t.Fatalf("message=%q", env.Error.Message)
	}
}
