package diagnosis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"
)

// Schema error reasons.
const (
	ReasonEmptySolutions = "empty solutions"
	ReasonUnparseable    = "unparseable"
)

// SchemaError reports model output that could not be repaired into a
// Record.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Reason
}

// Parsed is the result of ValidateAndRepair. Exactly one of Record and Err
// is set.
type Parsed struct {
	Record *Record
	Err    *SchemaError
}

// OK reports whether the payload was repaired into a Record.
func (p Parsed) OK() bool { return p.Err == nil }

var (
	fencePattern         = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*\\n?(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ValidateAndRepair turns loosely structured model output into a Record.
// It accepts strict JSON, JSON wrapped in prose or code fences, JSON with
// trailing commas and YAML-style flow maps. Missing optional fields get
// defaults, enum values are matched leniently and single strings are
// coerced into lists. Output without solutions, or with nothing
// structured in it, fails with a *SchemaError. Successful records are
// tagged source=model.
func ValidateAndRepair(payload []byte) Parsed {
	obj, ok := extractObject(payload, fieldAliases)
	if !ok {
		return Parsed{Err: &SchemaError{Reason: ReasonUnparseable}}
	}
	fields := canonicalFields(obj)

	rec := &Record{
		Category:   repairCategory(fields["category"]),
		Severity:   repairSeverity(fields["severity"]),
		Summary:    stringField(fields["summary"]),
		Causes:     stringList(fields["causes"]),
		Solutions:  stringList(fields["solutions"]),
		Commands:   stringList(fields["commands"]),
		Prevention: stringField(fields["prevention"]),
		References: stringList(fields["references"]),
		Source:     SourceModel,
	}

	if len(rec.Solutions) == 0 {
		return Parsed{Err: &SchemaError{Reason: ReasonEmptySolutions}}
	}
	if len(rec.Causes) == 0 {
		rec.Causes = []string{"unknown cause"}
	}
	if rec.Summary == "" {
		rec.Summary = rec.Causes[0]
	}
	if rec.Commands == nil {
		rec.Commands = []string{}
	}
	if rec.References == nil {
		rec.References = []string{}
	}
	return Parsed{Record: rec}
}

// extractObject finds the first structured object in the payload. aliases
// names the fields a bare YAML block must carry to count.
func extractObject(payload []byte, aliases map[string][]string) (map[string]any, bool) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return nil, false
	}

	// Providers without a schema wrap plain text as a JSON string.
	var inner string
	if strings.HasPrefix(text, `"`) && json.Unmarshal([]byte(text), &inner) == nil {
		text = strings.TrimSpace(inner)
	}

	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if obj, ok := decodeJSONObject(text); ok {
		return obj, true
	}

	start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if obj, ok := decodeJSONObject(candidate); ok {
			return obj, true
		}
		cleaned := trailingCommaPattern.ReplaceAllString(candidate, "$1")
		if obj, ok := decodeJSONObject(cleaned); ok {
			return obj, true
		}
		if obj, ok := decodeYAMLObject(cleaned); ok {
			return obj, true
		}
	}

	// A bare YAML block counts only when it carries known fields, so
	// prose such as "Note: try again" stays unparseable.
	if obj, ok := decodeYAMLObject(text); ok && len(canonicalize(obj, aliases)) > 0 {
		return obj, true
	}
	return nil, false
}

func decodeJSONObject(s string) (map[string]any, bool) {
	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func decodeYAMLObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := yaml.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// fieldAliases lists the accepted key spellings of each Record field,
// most preferred first.
var fieldAliases = map[string][]string{
	"category":   {"category", "error_type", "errortype", "type"},
	"severity":   {"severity", "level", "priority"},
	"summary":    {"summary", "explanation", "description"},
	"causes":     {"causes", "cause", "root_causes", "root_cause"},
	"solutions":  {"solutions", "solution", "steps", "fixes", "fix", "remediation"},
	"commands":   {"commands", "command"},
	"prevention": {"prevention"},
	"references": {"references", "reference", "links", "documentation"},
}

var keyReplacer = strings.NewReplacer("-", "_", " ", "_")

// canonicalFields rekeys obj by Record field name.
func canonicalFields(obj map[string]any) map[string]any {
	return canonicalize(obj, fieldAliases)
}

// canonicalize rekeys obj by field name. When a payload spells one field
// several ways, the spelling listed first in aliases wins.
func canonicalize(obj map[string]any, aliases map[string][]string) map[string]any {
	// Keys that fold to the same spelling ("Fix", "fix") resolve to the
	// smallest raw key.
	folded := make(map[string]string, len(obj))
	for k := range obj {
		key := keyReplacer.Replace(strings.ToLower(strings.TrimSpace(k)))
		if prev, ok := folded[key]; !ok || k < prev {
			folded[key] = k
		}
	}

	out := make(map[string]any, len(aliases))
	for field, spellings := range aliases {
		for _, alias := range spellings {
			if raw, ok := folded[alias]; ok {
				out[field] = obj[raw]
				break
			}
		}
	}
	return out
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		if len(t) > 0 {
			return stringField(t[0])
		}
		return ""
	case map[string]any:
		for _, key := range []string{"text", "description", "step", "title", "summary", "command"} {
			if s := stringField(t[key]); s != "" {
				return s
			}
		}
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// stringList coerces a scalar or list into a list of non-empty strings.
func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringField(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := stringField(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

var categorySynonyms = map[string]Category{
	"net":                    CategoryNetwork,
	"networking":             CategoryNetwork,
	"connectivity":           CategoryNetwork,
	"connection":             CategoryNetwork,
	"dns":                    CategoryNetwork,
	"ssl":                    CategoryNetwork,
	"tls":                    CategoryNetwork,
	"auth":                   CategoryAuthentication,
	"authn":                  CategoryAuthentication,
	"credentials":            CategoryAuthentication,
	"ssh":                    CategoryAuthentication,
	"login":                  CategoryAuthentication,
	"token":                  CategoryAuthentication,
	"authorization":          CategoryPermission,
	"access":                 CategoryPermission,
	"access denied":          CategoryPermission,
	"permissions":            CategoryPermission,
	"forbidden":              CategoryPermission,
	"merge":                  CategoryMergeConflict,
	"conflict":               CategoryMergeConflict,
	"merge conflict":         CategoryMergeConflict,
	"rebase":                 CategoryMergeConflict,
	"corruption":             CategoryCorruption,
	"corrupt":                CategoryCorruption,
	"repository corruption":  CategoryCorruption,
	"repository":             CategoryCorruption,
	"branch":                 CategoryBranchManagement,
	"branching":              CategoryBranchManagement,
	"branch management":      CategoryBranchManagement,
	"checkout":               CategoryBranchManagement,
	"remote repository":      CategoryRemote,
	"push":                   CategoryRemote,
	"rate limit":             CategoryAPILimit,
	"rate limiting":          CategoryAPILimit,
	"rate-limit":             CategoryAPILimit,
	"api":                    CategoryAPILimit,
	"quota":                  CategoryAPILimit,
	"webhooks":               CategoryWebhook,
	"hook":                   CategoryWebhook,
	"pull request":           CategoryPullRequest,
	"pull requests":          CategoryPullRequest,
	"pr":                     CategoryPullRequest,
	"fork":                   CategoryPullRequest,
	"github actions":         CategoryActions,
	"actions":                CategoryActions,
	"ci":                     CategoryActions,
	"ci/cd":                  CategoryActions,
	"workflow":               CategoryActions,
	"pipeline":               CategoryActions,
	"other":                  CategoryUnknown,
	"unknown error":          CategoryUnknown,
	"general":                CategoryUnknown,
}

var categoryNames = func() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = strings.ToLower(string(c))
	}
	return names
}()

// repairCategory maps a model-supplied category onto the closed set:
// exact match, synonym, substring, then fuzzy subsequence match.
func repairCategory(v any) Category {
	s := strings.ToLower(stringField(v))
	if s == "" {
		return CategoryUnknown
	}
	for i, name := range categoryNames {
		if s == name {
			return Categories[i]
		}
	}
	if c, ok := categorySynonyms[s]; ok {
		return c
	}
	spaced := strings.NewReplacer("_", " ", "-", " ", "/", " ").Replace(s)
	if c, ok := categorySynonyms[spaced]; ok {
		return c
	}
	for i, name := range categoryNames {
		if len(s) >= 3 && strings.Contains(name, s) {
			return Categories[i]
		}
		if strings.Contains(s, name) {
			return Categories[i]
		}
	}
	if len(s) >= 4 {
		if matches := fuzzy.Find(s, categoryNames); len(matches) > 0 {
			return Categories[matches[0].Index]
		}
	}
	return CategoryUnknown
}

var severitySynonyms = map[string]Severity{
	"minor":    SeverityLow,
	"trivial":  SeverityLow,
	"info":     SeverityLow,
	"lo":       SeverityLow,
	"med":      SeverityMedium,
	"medium":   SeverityMedium,
	"moderate": SeverityMedium,
	"normal":   SeverityMedium,
	"warning":  SeverityMedium,
	"major":    SeverityHigh,
	"severe":   SeverityHigh,
	"serious":  SeverityHigh,
	"crit":     SeverityCritical,
	"blocker":  SeverityCritical,
	"fatal":    SeverityCritical,
	"urgent":   SeverityCritical,
}

// repairSeverity accepts severity names, known synonyms and the ordinals
// 1-4. Anything else is Medium.
func repairSeverity(v any) Severity {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint64:
		n = float64(t)
	default:
		name := strings.ToLower(stringField(v))
		if s, ok := ParseSeverity(name); ok {
			return s
		}
		if s, ok := severitySynonyms[name]; ok {
			return s
		}
		return SeverityMedium
	}
	if s := Severity(n); float64(s) == n && s.Valid() {
		return s
	}
	return SeverityMedium
}
