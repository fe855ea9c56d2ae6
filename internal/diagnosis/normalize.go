package diagnosis

import (
	"regexp"
	"strings"
)

// Placeholders substituted for volatile substrings.
const (
	PlaceholderURL    = "<url>"
	PlaceholderRemote = "<remote>"
	PlaceholderTime   = "<time>"
	PlaceholderPath   = "<path>"
	PlaceholderHash   = "<hash>"
)

var (
	ansiPattern   = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)
	promptPattern = regexp.MustCompile(`(?m)^[ \t]*(?:\$|>|%|#|PS [^>\n]*>)[ \t]+`)

	urlPattern    = regexp.MustCompile(`(?:https?|ssh|git|file)://[^\s'"<>]+`)
	remotePattern = regexp.MustCompile(`\b[\w.-]+@[\w.-]+:[\w./~-]+`)
	timePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[t ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:z|[+-]\d{2}:?\d{2})?`)

	// Group 1 keeps the delimiter, group 3 keeps the final path segment so
	// file names such as index.lock stay matchable.
	pathPattern = regexp.MustCompile(`(^|[\s'"(=])((?:~|[a-z]:)?(?:[/\\][^\s'"/\\]+)*[/\\])([^\s'"/\\]*)`)
	// Relative paths: at least one directory, then a final segment.
	relPathPattern = regexp.MustCompile(`(^|[\s'"(=])((?:[\w.-]+/)+)([\w.-]*[\w-])`)
	hashPattern    = regexp.MustCompile(`\b[0-9a-f]{7,40}\b`)
)

// Normalize prepares raw error text for signature matching. It lowercases,
// strips terminal artifacts and replaces volatile substrings (URLs, remotes,
// timestamps, paths, hashes) with stable placeholders. It never fails and
// returns "" for empty input.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	s := ansiPattern.ReplaceAllString(raw, "")
	s = promptPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = trimQuotes(s)
	s = strings.ToLower(s)

	s = urlPattern.ReplaceAllString(s, PlaceholderURL)
	s = remotePattern.ReplaceAllString(s, PlaceholderRemote)
	s = timePattern.ReplaceAllString(s, PlaceholderTime)
	s = pathPattern.ReplaceAllStringFunc(s, replacePath)
	s = relPathPattern.ReplaceAllStringFunc(s, replaceRelPath)
	s = hashPattern.ReplaceAllStringFunc(s, replaceHash)

	return strings.Join(strings.Fields(s), " ")
}

func trimQuotes(s string) string {
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

func replacePath(m string) string {
	sub := pathPattern.FindStringSubmatch(m)
	delim, dir, base := sub[1], sub[2], sub[3]
	// A lone separator is punctuation, not a path.
	if len(dir) <= 1 && !strings.HasPrefix(dir, "~") {
		return m
	}
	if base == "" {
		return delim + PlaceholderPath
	}
	return delim + PlaceholderPath + "/" + base
}

// replaceHash masks hex runs that contain a digit. Runs made only of
// letters are ordinary words such as "deadbeef" or "accede".
// replaceRelPath masks a relative path when it names a file (the last
// segment has an extension) or points into .git. Refs such as
// origin/main are left alone.
func replaceRelPath(m string) string {
	sub := relPathPattern.FindStringSubmatch(m)
	delim, dir, base := sub[1], sub[2], sub[3]
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 && !strings.HasPrefix(dir, ".git/") {
		return m
	}
	return delim + PlaceholderPath + "/" + base
}

func replaceHash(m string) string {
	if strings.ContainsAny(m, "0123456789") {
		return PlaceholderHash
	}
	return m
}
