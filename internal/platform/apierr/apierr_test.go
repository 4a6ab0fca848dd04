package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{New(http.StatusBadRequest, "invalid_limit", errors.New("limit must be positive")), "limit must be positive"},
		{New(http.StatusNotFound, "prompt_not_found", nil), "prompt_not_found"},
		{New(http.StatusTeapot, "", nil), "api error (418)"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("want=%q got=%q", tc.want, got)
		}
	}
}

func TestHelpersWrapAndUnwrap(t *testing.T) {
	err := fmt.Errorf("handler: %w", BadRequest("missing_q", "%s is required", "q"))
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("errors.As failed for %v", err)
	}
	if ae.Status != http.StatusBadRequest || ae.Code != "missing_q" || ae.Error() != "q is required" {
		t.Fatalf("unexpected %+v", ae)
	}
	if nf := NotFound("feature_not_found", "no feature matches %q", "gel"); nf.Status != http.StatusNotFound {
		t.Fatalf("status=%d", nf.Status)
	}
}
