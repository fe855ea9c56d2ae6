package diagnosis

import "strings"

// Category classifies a Git or GitHub error.
type Category string

const (
	CategoryNetwork          Category = "Network"
	CategoryAuthentication   Category = "Authentication"
	CategoryPermission       Category = "Permission"
	CategoryMergeConflict    Category = "Merge/Conflict"
	CategoryCorruption       Category = "Repository-Corruption"
	CategoryBranchManagement Category = "Branch-Management"
	CategoryRemote           Category = "Remote"
	CategoryAPILimit         Category = "API-Limit"
	CategoryWebhook          Category = "Webhook"
	CategoryPullRequest      Category = "PullRequest/Fork"
	CategoryActions          Category = "Actions/CI"
	CategoryUnknown          Category = "Unknown"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryNetwork,
	CategoryAuthentication,
	CategoryPermission,
	CategoryMergeConflict,
	CategoryCorruption,
	CategoryBranchManagement,
	CategoryRemote,
	CategoryAPILimit,
	CategoryWebhook,
	CategoryPullRequest,
	CategoryActions,
	CategoryUnknown,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity is an ordered error severity. The zero value is invalid.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "Low",
	SeverityMedium:   "Medium",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "Invalid"
}

// Valid reports whether s is one of the four declared severities.
func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

// ParseSeverity resolves an exact (case-insensitive) severity name.
func ParseSeverity(name string) (Severity, bool) {
	name = strings.TrimSpace(name)
	for s, n := range severityNames {
		if strings.EqualFold(n, name) {
			return s, true
		}
	}
	return 0, false
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	parsed, ok := ParseSeverity(string(b))
	if !ok {
		return &SchemaError{Reason: "invalid severity " + string(b)}
	}
	*s = parsed
	return nil
}

// Source records which path produced a Record.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Record is the structured diagnosis returned for one error text.
type Record struct {
	RequestID  string   `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Category   Category `json:"category" yaml:"category"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Summary    string   `json:"summary" yaml:"summary"`
	Causes     []string `json:"causes" yaml:"causes"`
	Solutions  []string `json:"solutions" yaml:"solutions"`
	Commands   []string `json:"commands" yaml:"commands"`
	Prevention string   `json:"prevention,omitempty" yaml:"prevention,omitempty"`
	References []string `json:"references" yaml:"references"`
	PatternID  string   `json:"pattern_id,omitempty" yaml:"pattern_id,omitempty"`
	Source     Source   `json:"source" yaml:"source"`
}

// clone returns a deep copy so callers never share slices with the
// pattern database.
func (r Record) clone() *Record {
	r.Causes = append([]string{}, r.Causes...)
	r.Solutions = append([]string{}, r.Solutions...)
	r.Commands = append([]string{}, r.Commands...)
	r.References = append([]string{}, r.References...)
	return &r
}
