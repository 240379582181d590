package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryResult_Render(t *testing.T) {
	tests := map[string]struct {
		result SummaryResult
		want   string
		ok     bool
	}{
		"success": {
			result: SummaryResult{Text: "*Digest*"},
			want:   "*Digest*",
			ok:     true,
		},
		"status failure": {
			result: SummaryResult{Failure: &Failure{Kind: FailureStatus, StatusCode: 401, Body: `{"error":"bad key"}`}},
			want:   `Error: 401 - {"error":"bad key"}`,
		},
		"retry failure": {
			result: SummaryResult{Failure: &Failure{Kind: FailureRetry, StatusCode: 400, Body: "nope", Removed: []string{"temperature", "top_p"}}},
			want:   "Error: 400 - nope (retried without: temperature, top_p)",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.result.OK())
			assert.Equal(t, tt.want, tt.result.Render())
		})
	}
}

func TestFailureKind_String(t *testing.T) {
	assert.Equal(t, "status", FailureStatus.String())
	assert.Equal(t, "retry", FailureRetry.String())
	assert.Equal(t, "unknown", FailureKind(0).String())
}
