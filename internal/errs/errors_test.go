package errs

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", Validation("fan_id is required"), CodeValidation},
		{"wrapped not found", fmt.Errorf("load fan: %w", NotFound("fan not found", nil)), CodeNotFound},
		{"upstream", Upstream("llm call failed", errors.New("status 502")), CodeUpstream},
		{"conflict", Conflict("item already in a session"), CodeConflict},
		{"rate limit", &RateLimitError{Limit: 50, ResetAt: time.Now()}, CodeRateLimit},
		{"unauthorized", Unauthorized("invalid token"), CodeAuth},
		{"plain", errors.New("boom"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("status 502")
	err := Upstream("llm call failed", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable with errors.Is")
	}
	if err.Error() != "llm call failed: status 502" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
