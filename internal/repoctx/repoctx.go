// Package repoctx describes the Git repository the user is working in, so
// the model can tailor its diagnosis (branch, remotes, in-progress merges).
package repoctx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// ErrNotRepository is returned when dir is not inside a Git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Remote is a configured remote with credentials stripped from its URLs.
type Remote struct {
	Name string
	URLs []string
}

// Info is a snapshot of repository state relevant to error diagnosis.
type Info struct {
	Branch     string // Empty when HEAD is detached.
	Detached   bool
	Unborn     bool   // Branch has no commits yet.
	Head       string // Abbreviated commit hash, empty when unborn.
	Upstream   string // e.g. origin/main
	Remotes    []Remote
	InProgress []string // merge, rebase, cherry-pick, revert, bisect
	Shallow    bool
}

// markers maps files in the git directory to the operation they signal.
var markers = []struct {
	path string
	op   string
}{
	{"MERGE_HEAD", "merge"},
	{"rebase-merge", "rebase"},
	{"rebase-apply", "rebase"},
	{"CHERRY_PICK_HEAD", "cherry-pick"},
	{"REVERT_HEAD", "revert"},
	{"BISECT_LOG", "bisect"},
}

// Inspect opens the repository containing dir and reads its state.
func Inspect(dir string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	info := &Info{}
	if err := readHead(repo, info); err != nil {
		return nil, err
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	for _, r := range remotes {
		cfg := r.Config()
		rem := Remote{Name: cfg.Name}
		for _, u := range cfg.URLs {
			rem.URLs = append(rem.URLs, StripCredentials(u))
		}
		info.Remotes = append(info.Remotes, rem)
	}
	sort.Slice(info.Remotes, func(i, j int) bool { return info.Remotes[i].Name < info.Remotes[j].Name })

	if info.Branch != "" {
		if b, err := repo.Branch(info.Branch); err == nil && b.Remote != "" {
			info.Upstream = b.Remote + "/" + b.Merge.Short()
		}
	}

	if shallow, err := repo.Storer.Shallow(); err == nil && len(shallow) > 0 {
		info.Shallow = true
	}

	if fs, ok := repo.Storer.(*filesystem.Storage); ok {
		info.InProgress = inProgress(fs.Filesystem().Root())
	}
	return info, nil
}

func readHead(repo *git.Repository, info *Info) error {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Unborn branch: HEAD is symbolic but its target does not exist yet.
		sym, serr := repo.Reference(plumbing.HEAD, false)
		if serr != nil {
			return fmt.Errorf("read HEAD: %w", serr)
		}
		info.Unborn = true
		info.Branch = sym.Target().Short()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read HEAD: %w", err)
	}

	info.Head = head.Hash().String()[:7]
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	} else {
		info.Detached = true
	}
	return nil
}

func inProgress(gitDir string) []string {
	var ops []string
	seen := map[string]bool{}
	for _, m := range markers {
		if seen[m.op] {
			continue
		}
		if _, err := os.Stat(filepath.Join(gitDir, m.path)); err == nil {
			ops = append(ops, m.op)
			seen[m.op] = true
		}
	}
	return ops
}

// StripCredentials removes user info from URL-style remotes. scp-style
// remotes (git@host:owner/repo) are returned unchanged.
func StripCredentials(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	u.User = nil
	return u.String()
}

// String renders the snapshot as short prompt lines.
func (i *Info) String() string {
	var b strings.Builder
	switch {
	case i.Unborn:
		fmt.Fprintf(&b, "branch: %s (no commits yet)\n", i.Branch)
	case i.Detached:
		fmt.Fprintf(&b, "HEAD: detached at %s\n", i.Head)
	default:
		fmt.Fprintf(&b, "branch: %s", i.Branch)
		if i.Upstream != "" {
			fmt.Fprintf(&b, " (tracking %s)", i.Upstream)
		} else {
			b.WriteString(" (no upstream)")
		}
		b.WriteString("\n")
	}
	if len(i.Remotes) == 0 {
		b.WriteString("remotes: none\n")
	}
	for _, r := range i.Remotes {
		fmt.Fprintf(&b, "remote %s: %s\n", r.Name, strings.Join(r.URLs, ", "))
	}
	if len(i.InProgress) > 0 {
		fmt.Fprintf(&b, "in progress: %s\n", strings.Join(i.InProgress, ", "))
	}
	if i.Shallow {
		b.WriteString("shallow clone\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Describer adapts Inspect to the diagnosis engine.
type Describer struct {
	Dir string
}

// NewDescriber describes the repository containing dir.
func NewDescriber(dir string) *Describer {
	return &Describer{Dir: dir}
}

// Describe returns the repository summary, or "" outside a repository.
func (d *Describer) Describe(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := Inspect(d.Dir)
	if errors.Is(err, ErrNotRepository) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return info.String(), nil
}
