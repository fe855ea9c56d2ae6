package diagnosis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnoseBatch_KeepsOrder(t *testing.T) {
	svc := NewService(nil, nil)
	texts := []string{
		authFailure,
		"",
		"fatal: refusing to merge unrelated histories",
		"totally unrelated text",
		"API rate limit exceeded for 1.2.3.4.",
	}

	recs := svc.DiagnoseBatch(context.Background(), texts, 3)
	require.Len(t, recs, len(texts))

	assert.Equal(t, "auth-failed", recs[0].PatternID)
	assert.Equal(t, SeverityLow, recs[1].Severity)
	assert.Equal(t, "merge-unrelated-histories", recs[2].PatternID)
	assert.Equal(t, CategoryUnknown, recs[3].Category)
	assert.Equal(t, "api-rate-limit", recs[4].PatternID)

	ids := map[string]bool{}
	for _, r := range recs {
		ids[r.RequestID] = true
	}
	assert.Len(t, ids, len(texts))
}

func TestDiagnoseBatch_ZeroConcurrency(t *testing.T) {
	recs := NewService(nil, nil).DiagnoseBatch(context.Background(), []string{authFailure}, 0)
	require.Len(t, recs, 1)
	assert.Equal(t, CategoryAuthentication, recs[0].Category)
}
