package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_KnownErrors(t *testing.T) {
	m := NewMatcher(nil)

	tests := []struct {
		raw      string
		id       string
		category Category
	}{
		{"fatal: Authentication failed for 'https://github.com/user/repo.git'", "auth-failed", CategoryAuthentication},
		{"git@github.com: Permission denied (publickey).", "auth-publickey", CategoryAuthentication},
		{"fatal: Unable to create '/home/u/repo/.git/index.lock': File exists.", "corrupt-index-lock", CategoryCorruption},
		{"fatal: unable to access 'https://github.com/o/r.git/': Could not resolve host: github.com", "net-could-not-resolve-host", CategoryNetwork},
		{"error: pathspec 'feature/x' did not match any file(s) known to git", "branch-pathspec", CategoryBranchManagement},
		{"fatal: The current branch feature has no upstream branch.", "branch-no-upstream", CategoryBranchManagement},
		{"remote: error: GH013: Repository rule violations found for refs/heads/main.", "remote-rule-violations", CategoryRemote},
		{"API rate limit exceeded for 1.2.3.4.", "api-rate-limit", CategoryAPILimit},
		{"Error: Process completed with exit code 1.", "ci-process-exit-code", CategoryActions},
		{"2024-03-01T10:22:33Z error: RPC failed; curl 56 GnuTLS recv error", "net-rpc-failed", CategoryNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec := m.Match(Normalize(tt.raw))
			assert.Equal(t, tt.id, rec.PatternID)
			assert.Equal(t, tt.category, rec.Category)
			assert.Equal(t, SourceFallback, rec.Source)
			assert.NotEmpty(t, rec.Solutions)
		})
	}
}

func TestMatcher_SpecificBeatsGeneric(t *testing.T) {
	m := NewMatcher(nil)
	hits := m.MatchAll(Normalize("fatal: refusing to merge unrelated histories"))

	require.Len(t, hits, 2)
	assert.Equal(t, "merge-unrelated-histories", hits[0].Entry.ID)
	assert.Equal(t, "generic-fatal", hits[1].Entry.ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	rec := m.Match(Normalize("fatal: refusing to merge unrelated histories"))
	assert.Equal(t, CategoryMergeConflict, rec.Category)
}

func TestMatcher_SubsumedSignature(t *testing.T) {
	// "permission denied (publickey)" contains "permission denied".
	hits := NewMatcher(nil).MatchAll(Normalize("git@github.com: Permission denied (publickey)."))
	require.GreaterOrEqual(t, len(hits), 2)
	assert.Equal(t, "auth-publickey", hits[0].Entry.ID)
	assert.Equal(t, "perm-unable-to-access", hits[1].Entry.ID)
}

func TestMatcher_PublickeyWithFollowUpLine(t *testing.T) {
	raw := "git@github.com: Permission denied (publickey).\nfatal: Could not read from remote repository.\n\n" +
		"Please make sure you have the correct access rights\nand the repository exists."
	hits := NewMatcher(nil).MatchAll(Normalize(raw))
	require.NotEmpty(t, hits)
	assert.Equal(t, "auth-publickey", hits[0].Entry.ID)
	assert.Equal(t, CategoryAuthentication, hits[0].Entry.Category)

	// The follow-up line alone still points at the remote.
	rec := NewMatcher(nil).Match(Normalize("fatal: Could not read from remote repository."))
	assert.Equal(t, "remote-could-not-read", rec.PatternID)
}

const tieBreakPatterns = `
version: v0.1.0
patterns:
  - id: late-low
    signature: beta
    category: Remote
    severity: Low
    summary: Beta low.
    solutions: [one]
  - id: early
    signature: alfa
    category: Network
    severity: Low
    summary: Alfa.
    solutions: [one]
  - id: late-high
    signature: beta
    category: Permission
    severity: High
    summary: Beta high.
    solutions: [one]
  - id: late-high-dup
    signature: beta
    category: Webhook
    severity: High
    summary: Beta high again.
    solutions: [one]
`

func TestMatcher_TieBreakOrder(t *testing.T) {
	db, err := LoadDatabase([]byte(tieBreakPatterns))
	require.NoError(t, err)
	m := NewMatcher(db)

	// Equal length: the earlier position wins.
	assert.Equal(t, "early", m.Match("alfa then beta").PatternID)

	// Same position: higher severity wins, then database order.
	hits := m.MatchAll("beta only")
	require.Len(t, hits, 3)
	assert.Equal(t, "late-high", hits[0].Entry.ID)
	assert.Equal(t, "late-high-dup", hits[1].Entry.ID)
	assert.Equal(t, "late-low", hits[2].Entry.ID)
}

func TestMatcher_Deterministic(t *testing.T) {
	m := NewMatcher(nil)
	text := Normalize("To github.com:me/repo.git\n ! [rejected] main -> main (fetch first)\nerror: failed to push some refs to 'git@github.com:me/repo.git'")

	first := m.Match(text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, m.Match(text))
	}
	assert.Equal(t, "remote-rejected-non-fast-forward", first.PatternID)
}

func TestMatcher_HashEquivalence(t *testing.T) {
	m := NewMatcher(nil)
	a := m.Match(Normalize("fatal: bad object 3f786850e387550fdab836ed7e6dc881de23001b"))
	b := m.Match(Normalize("fatal: bad object 89e6c98d92887913cadf06b2adb97f26cde4849b"))
	assert.Equal(t, a, b)
	assert.Equal(t, "corrupt-bad-object", a.PatternID)
}

func TestMatcher_Unknown(t *testing.T) {
	m := NewMatcher(nil)
	for _, text := range []string{"", "totally unrelated text"} {
		rec := m.Match(Normalize(text))
		assert.Equal(t, CategoryUnknown, rec.Category)
		assert.Equal(t, SeverityMedium, rec.Severity)
		assert.Equal(t, []string{"cause could not be determined from the error text"}, rec.Causes)
		assert.Len(t, rec.Solutions, 3)
		assert.Empty(t, rec.PatternID)
		assert.Equal(t, SourceFallback, rec.Source)
	}
}

func TestMatcher_RecordsAreIndependent(t *testing.T) {
	m := NewMatcher(nil)
	a := m.Match("authentication failed")
	a.Solutions[0] = "changed"
	b := m.Match("authentication failed")
	assert.NotEqual(t, "changed", b.Solutions[0])
}
