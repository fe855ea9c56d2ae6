package diagnosis

import (
	"cmp"
	"slices"
)

// Hit is one pattern that matched normalized text.
type Hit struct {
	Entry *PatternEntry

	// Score is the length of the matched signature text.
	Score int

	// Position is the byte offset of the match in the normalized text.
	Position int

	// Index is the entry's position in the database.
	Index int
}

// Matcher is the deterministic, LLM-free diagnosis path.
type Matcher struct {
	db *Database
}

// NewMatcher creates a matcher over db. A nil db uses the embedded
// default database.
func NewMatcher(db *Database) *Matcher {
	if db == nil {
		db = DefaultDatabase()
	}
	return &Matcher{db: db}
}

// Database returns the pattern database the matcher reads from.
func (m *Matcher) Database() *Database { return m.db }

// MatchAll returns every matching entry, best first. Ranking: longer
// match, then earlier position, then higher severity, then database order.
func (m *Matcher) MatchAll(normalized string) []Hit {
	if normalized == "" {
		return nil
	}

	var hits []Hit
	for i := range m.db.entries {
		e := &m.db.entries[i]
		pos, length, ok := e.locate(normalized)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Entry: e, Score: length, Position: pos, Index: i})
	}

	slices.SortFunc(hits, compareHits)
	return hits
}

func compareHits(a, b Hit) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Entry.Severity, a.Entry.Severity); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// Match returns the diagnosis of the best matching entry, or the Unknown
// record when nothing matches. It never fails.
func (m *Matcher) Match(normalized string) *Record {
	hits := m.MatchAll(normalized)
	if len(hits) == 0 {
		return unknownRecord()
	}
	return hits[0].Entry.record()
}

func unknownRecord() *Record {
	return &Record{
		Category: CategoryUnknown,
		Severity: SeverityMedium,
		Summary:  "The error did not match any known Git or GitHub problem.",
		Causes:   []string{"cause could not be determined from the error text"},
		Solutions: []string{
			"Retry the command to rule out a transient failure",
			"Check your network connection and the hosting provider status page",
			"Search the Git and GitHub documentation for the exact error message",
		},
		Commands: []string{"git status", "GIT_TRACE=1 GIT_CURL_VERBOSE=1 git COMMAND"},
		References: []string{
			"https://git-scm.com/docs",
			"https://docs.github.com",
			"https://www.githubstatus.com",
		},
		Source: SourceFallback,
	}
}

// emptyInputRecord is returned without any collaborator call when the
// caller supplies no error text.
func emptyInputRecord() *Record {
	return &Record{
		Category:   CategoryUnknown,
		Severity:   SeverityLow,
		Summary:    "No error text was provided.",
		Causes:     []string{"unknown cause"},
		Solutions:  []string{"Paste the full error message printed by Git or GitHub and try again"},
		Commands:   []string{},
		References: []string{},
		Source:     SourceFallback,
	}
}
