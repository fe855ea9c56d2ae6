package diagnosis

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

//go:embed patterns.yaml
var defaultPatternsYAML []byte

// ErrPatternNotFound is returned by Lookup for an unknown pattern ID.
var ErrPatternNotFound = errors.New("pattern not found")

// PatternEntry is one pre-authored diagnosis keyed by an error signature.
type PatternEntry struct {
	ID         string   `json:"id"`
	Signature  string   `json:"signature"`
	Regex      bool     `json:"regex,omitempty"`
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Summary    string   `json:"summary"`
	Causes     []string `json:"causes"`
	Solutions  []string `json:"solutions"`
	Commands   []string `json:"commands,omitempty"`
	Prevention string   `json:"prevention,omitempty"`
	References []string `json:"references,omitempty"`

	needle string
	re     *regexp.Regexp
}

// locate returns the offset and length of the first signature hit in
// normalized text, or ok=false.
func (e *PatternEntry) locate(normalized string) (pos, length int, ok bool) {
	if e.re != nil {
		loc := e.re.FindStringIndex(normalized)
		if loc == nil {
			return 0, 0, false
		}
		return loc[0], loc[1] - loc[0], true
	}
	pos = strings.Index(normalized, e.needle)
	if pos < 0 {
		return 0, 0, false
	}
	return pos, len(e.needle), true
}

func (e *PatternEntry) record() *Record {
	r := Record{
		Category:   e.Category,
		Severity:   e.Severity,
		Summary:    e.Summary,
		Causes:     e.Causes,
		Solutions:  e.Solutions,
		Commands:   e.Commands,
		Prevention: e.Prevention,
		References: e.References,
		PatternID:  e.ID,
		Source:     SourceFallback,
	}
	return r.clone()
}

func (e PatternEntry) copy() PatternEntry {
	e.Causes = slices.Clone(e.Causes)
	e.Solutions = slices.Clone(e.Solutions)
	e.Commands = slices.Clone(e.Commands)
	e.References = slices.Clone(e.References)
	return e
}

// Database is an immutable, ordered collection of pattern entries. It is
// safe to share between goroutines.
type Database struct {
	version string
	entries []PatternEntry
	byID    map[string]int
}

type patternFile struct {
	Version  string         `json:"version"`
	Patterns []PatternEntry `json:"patterns"`
}

// LoadDatabase parses and validates a YAML pattern file. Entries keep
// their file order, which is the final matching tie-break.
func LoadDatabase(data []byte) (*Database, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}
	schema, err := patternFileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile pattern file schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid pattern file: %w", err)
	}

	var f patternFile
	if err := json.Unmarshal(js, &f); err != nil {
		return nil, fmt.Errorf("decode pattern file: %w", err)
	}
	if !semver.IsValid(f.Version) {
		return nil, fmt.Errorf("invalid pattern file version %q: want vMAJOR.MINOR.PATCH", f.Version)
	}

	db := &Database{
		version: semver.Canonical(f.Version),
		entries: make([]PatternEntry, 0, len(f.Patterns)),
		byID:    make(map[string]int, len(f.Patterns)),
	}
	for i, e := range f.Patterns {
		if err := prepareEntry(&e); err != nil {
			return nil, fmt.Errorf("pattern %d (%s): %w", i, e.ID, err)
		}
		if _, dup := db.byID[e.ID]; dup {
			return nil, fmt.Errorf("pattern %d: duplicate id %q", i, e.ID)
		}
		db.byID[e.ID] = len(db.entries)
		db.entries = append(db.entries, e)
	}
	return db, nil
}

// LoadDatabaseFile reads and loads a pattern file from disk.
func LoadDatabaseFile(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	return LoadDatabase(data)
}

var defaultDatabase = sync.OnceValues(func() (*Database, error) {
	return LoadDatabase(defaultPatternsYAML)
})

// DefaultDatabase returns the embedded pattern database. It is loaded once
// per process.
func DefaultDatabase() *Database {
	db, err := defaultDatabase()
	if err != nil {
		panic(fmt.Sprintf("embedded pattern database: %v", err))
	}
	return db
}

func prepareEntry(e *PatternEntry) error {
	sig := strings.Join(strings.Fields(e.Signature), " ")
	if sig == "" {
		return errors.New("empty signature")
	}
	if !e.Category.Valid() {
		return fmt.Errorf("unknown category %q", e.Category)
	}
	if !e.Severity.Valid() {
		return fmt.Errorf("invalid severity %d", e.Severity)
	}
	if len(e.Solutions) == 0 {
		return errors.New("no solutions")
	}
	if len(e.Causes) == 0 {
		e.Causes = []string{"unknown cause"}
	}
	if e.Regex {
		re, err := regexp.Compile("(?i)" + sig)
		if err != nil {
			return fmt.Errorf("compile signature: %w", err)
		}
		e.re = re
		return nil
	}
	// Case-folding a regex would corrupt escapes such as \S, so only
	// literal signatures are lowered.
	e.needle = strings.ToLower(sig)
	return nil
}

// Version returns the canonical semantic version of the database.
func (db *Database) Version() string { return db.version }

// Len returns the number of entries.
func (db *Database) Len() int { return len(db.entries) }

// Entries returns a deep copy of the entries in insertion order.
func (db *Database) Entries() []PatternEntry {
	out := make([]PatternEntry, len(db.entries))
	for i, e := range db.entries {
		out[i] = e.copy()
	}
	return out
}

// Lookup returns the entry with the given ID.
func (db *Database) Lookup(id string) (PatternEntry, error) {
	i, ok := db.byID[id]
	if !ok {
		return PatternEntry{}, fmt.Errorf("%w: %s", ErrPatternNotFound, id)
	}
	return db.entries[i].copy(), nil
}

var patternFileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	categories := make([]any, len(Categories))
	for i, c := range Categories {
		categories[i] = string(c)
	}
	severities := []any{"Low", "Medium", "High", "Critical"}
	stringList := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 1},
	}

	def := map[string]any{
		"type":     "object",
		"required": []any{"version", "patterns"},
		"properties": map[string]any{
			"version": map[string]any{"type": "string"},
			"patterns": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"id", "signature", "category", "severity", "summary", "solutions"},
					"properties": map[string]any{
						"id":         map[string]any{"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
						"signature":  map[string]any{"type": "string", "minLength": 1},
						"regex":      map[string]any{"type": "boolean"},
						"category":   map[string]any{"enum": categories},
						"severity":   map[string]any{"enum": severities},
						"summary":    map[string]any{"type": "string", "minLength": 1},
						"causes":     stringList,
						"solutions":  map[string]any{"type": "array", "minItems": 1, "items": map[string]any{"type": "string", "minLength": 1}},
						"commands":   stringList,
						"prevention": map[string]any{"type": "string"},
						"references": stringList,
					},
					"additionalProperties": false,
				},
			},
		},
		"additionalProperties": false,
	}

	raw, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	const url = "schema://pattern-file.json"
	if err := c.AddResource(url, parsed); err != nil {
		return nil, err
	}
	return c.Compile(url)
})
