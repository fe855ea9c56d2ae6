package diagnosis

import (
	"strings"

	"github.com/gitguy/gitguy/internal/llm"
)

// ReasonEmptySteps is the schema error reason for a conflict answer
// without resolution steps.
const ReasonEmptySteps = "empty steps"

// Resolution is a step-by-step guide for resolving a merge conflict.
type Resolution struct {
	RequestID      string   `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Analysis       string   `json:"analysis" yaml:"analysis"`
	Steps          []string `json:"steps" yaml:"steps"`
	Commands       []string `json:"commands" yaml:"commands"`
	Tips           []string `json:"tips" yaml:"tips"`
	CommonMistakes []string `json:"common_mistakes" yaml:"common_mistakes"`
	Source         Source   `json:"source" yaml:"source"`
	// Playbook names the built-in guide used when the model was skipped.
	Playbook string `json:"playbook,omitempty" yaml:"playbook,omitempty"`
}

var conflictAliases = map[string][]string{
	"analysis":        {"analysis", "summary", "explanation", "description"},
	"steps":           {"steps", "resolution_steps", "solutions", "solution"},
	"commands":        {"commands", "command"},
	"tips":            {"tips", "tip", "hints", "advice"},
	"common_mistakes": {"common_mistakes", "mistakes", "pitfalls"},
}

// RepairResolution turns loosely structured model output into a
// Resolution, with the same leniency as ValidateAndRepair. An answer
// without steps fails with a *SchemaError.
func RepairResolution(payload []byte) (*Resolution, error) {
	obj, ok := extractObject(payload, conflictAliases)
	if !ok {
		return nil, &SchemaError{Reason: ReasonUnparseable}
	}
	fields := canonicalize(obj, conflictAliases)

	res := &Resolution{
		Analysis:       stringField(fields["analysis"]),
		Steps:          stringList(fields["steps"]),
		Commands:       stringList(fields["commands"]),
		Tips:           stringList(fields["tips"]),
		CommonMistakes: stringList(fields["common_mistakes"]),
		Source:         SourceModel,
	}
	if len(res.Steps) == 0 {
		return nil, &SchemaError{Reason: ReasonEmptySteps}
	}
	if res.Analysis == "" {
		res.Analysis = res.Steps[0]
	}
	if res.Commands == nil {
		res.Commands = []string{}
	}
	if res.Tips == nil {
		res.Tips = []string{}
	}
	if res.CommonMistakes == nil {
		res.CommonMistakes = []string{}
	}
	return res, nil
}

// ConflictSchema defines the JSON schema of a conflict resolution answer.
var ConflictSchema = &llm.Schema{
	Name:        "git-conflict-resolution",
	Description: "Step-by-step guide for resolving a Git merge conflict",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"analysis": map[string]any{
				"type":        "string",
				"description": "What the conflict is and why it happened",
			},
			"steps":           stringArray("Ordered resolution steps, each a short imperative instruction", 1),
			"commands":        stringArray("Exact shell commands used during the resolution", 0),
			"tips":            stringArray("Advice that makes the resolution safer", 0),
			"common_mistakes": stringArray("Mistakes people make when resolving this kind of conflict", 0),
		},
		"required":             []any{"analysis", "steps", "commands", "tips", "common_mistakes"},
		"additionalProperties": false,
	},
}

// playbook is a built-in resolution guide, chosen when any keyword occurs
// in the normalized scenario.
type playbook struct {
	id       string
	keywords []string
	res      Resolution
}

// Playbooks are tried in order. File-level situations come before the
// operation that produced them.
var playbooks = []playbook{
	{
		id:       "lock-file",
		keywords: []string{"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "go.sum", "cargo.lock", "poetry.lock", "lock file", "lockfile"},
		res: Resolution{
			Analysis: "A generated lock file conflicts. Lock files are rebuilt by the package manager and should not be merged by hand.",
			Steps: []string{
				"Resolve the conflict in the manifest (package.json, go.mod, Cargo.toml) first",
				"Take either side of the lock file to get rid of the markers",
				"Regenerate the lock file with the package manager",
				"Stage the regenerated lock file and finish the merge",
			},
			Commands: []string{
				"git checkout --theirs -- <lock-file>",
				"npm install",
				"go mod tidy",
				"git add <lock-file>",
				"git commit",
			},
			Tips: []string{
				"Run the test suite after regenerating, since dependency versions may have moved",
				"Add merge=ours or a custom merge driver for lock files in .gitattributes if this happens often",
			},
			CommonMistakes: []string{
				"Editing the lock file by hand and leaving it inconsistent with the manifest",
				"Committing a lock file that still contains conflict markers",
			},
		},
	},
	{
		id:       "binary",
		keywords: []string{"binary", "cannot merge binary"},
		res: Resolution{
			Analysis: "A binary file changed on both sides. Git cannot merge binary content line by line, so one version has to be chosen.",
			Steps: []string{
				"Decide which version of the file to keep",
				"Check out that version with --ours or --theirs",
				"Stage the file and finish the merge",
			},
			Commands: []string{
				"git checkout --ours -- <file>",
				"git checkout --theirs -- <file>",
				"git add <file>",
				"git commit",
			},
			Tips: []string{
				"Open both versions in their native tool before choosing",
				"Track large binaries with Git LFS and lock them with git lfs lock",
			},
			CommonMistakes: []string{
				"Assuming --ours means your branch during a rebase, where the sides are swapped",
				"Opening the file in a text editor and saving it",
			},
		},
	},
	{
		id:       "modify-delete",
		keywords: []string{"modify/delete", "deleted in", "deleted by"},
		res: Resolution{
			Analysis: "One side modified a file that the other side deleted. Git needs to know whether the file should exist after the merge.",
			Steps: []string{
				"Find out why the file was deleted on the other side",
				"To keep the file, stage the modified version",
				"To accept the deletion, remove the file",
				"Finish the merge",
			},
			Commands: []string{
				"git status",
				"git log --diff-filter=D -- <file>",
				"git add <file>",
				"git rm <file>",
				"git commit",
			},
			Tips: []string{
				"If the file was moved rather than deleted, apply your change to its new location",
			},
			CommonMistakes: []string{
				"Keeping a file the rest of the codebase no longer references",
				"Deleting the file and losing the other side's changes without porting them",
			},
		},
	},
	{
		id:       "rename",
		keywords: []string{"rename/rename", "rename/delete", "rename/add", "renamed"},
		res: Resolution{
			Analysis: "Both sides renamed or moved the same file differently. Git cannot tell which name should survive.",
			Steps: []string{
				"Decide which path the file should have",
				"Move the content to that path and remove the other copy",
				"Stage both paths and finish the merge",
			},
			Commands: []string{
				"git status",
				"git mv <old-path> <new-path>",
				"git rm <unwanted-path>",
				"git add <new-path>",
				"git commit",
			},
			Tips: []string{
				"Update imports and references to the old path before committing",
			},
			CommonMistakes: []string{
				"Leaving both copies of the file in the tree",
			},
		},
	},
	{
		id:       "stash",
		keywords: []string{"stash"},
		res: Resolution{
			Analysis: "Applying a stash conflicts with changes already in the working tree. The stash is kept until the conflict is resolved.",
			Steps: []string{
				"Open each conflicted file and resolve the markers",
				"Stage the resolved files",
				"Drop the stash once you are sure the changes were applied",
			},
			Commands: []string{
				"git status",
				"git add <resolved-file>",
				"git stash list",
				"git stash drop",
			},
			Tips: []string{
				"git stash pop does not drop the stash when it conflicts, so nothing is lost",
				"Use git stash branch <name> to apply a stash on the commit it was made from",
			},
			CommonMistakes: []string{
				"Dropping the stash before checking the resolved result",
				"Running git stash pop again and applying the changes twice",
			},
		},
	},
	{
		id:       "cherry-pick",
		keywords: []string{"cherry-pick", "cherry pick", "cherrypick"},
		res: Resolution{
			Analysis: "A cherry-picked commit does not apply cleanly on the current branch.",
			Steps: []string{
				"Open each conflicted file and resolve the markers",
				"Stage the resolved files",
				"Continue the cherry-pick, or abort it to return to the previous state",
			},
			Commands: []string{
				"git status",
				"git add <resolved-file>",
				"git cherry-pick --continue",
				"git cherry-pick --abort",
			},
			Tips: []string{
				"Check whether the commit depends on earlier commits that are missing from this branch",
			},
			CommonMistakes: []string{
				"Running git commit instead of git cherry-pick --continue and losing the original message",
			},
		},
	},
	{
		id:       "rebase",
		keywords: []string{"rebase", "could not apply"},
		res: Resolution{
			Analysis: "A commit being replayed during a rebase conflicts with the new base. The rebase stops until the conflict is resolved.",
			Steps: []string{
				"Open each conflicted file and resolve the markers",
				"Stage the resolved files",
				"Continue the rebase, which may stop again on later commits",
				"Abort the rebase to return to where you started",
			},
			Commands: []string{
				"git status",
				"git add <resolved-file>",
				"git rebase --continue",
				"git rebase --abort",
			},
			Tips: []string{
				"During a rebase --ours is the branch you are rebasing onto and --theirs is your commit",
				"Enable git config rerere.enabled true to reuse resolutions you have made before",
			},
			CommonMistakes: []string{
				"Running git commit during the rebase instead of git rebase --continue",
				"Using git rebase --skip and silently dropping a commit",
				"Force-pushing a rebased branch that others have pulled",
			},
		},
	},
	{
		id:       "pull-request",
		keywords: []string{"pull request", "this branch has conflicts", "cannot be merged automatically"},
		res: Resolution{
			Analysis: "The pull request branch conflicts with its base branch, so GitHub cannot merge it automatically.",
			Steps: []string{
				"Fetch the latest base branch",
				"Merge the base branch into the pull request branch locally",
				"Resolve the conflicts and commit the merge",
				"Push the branch so the pull request updates",
			},
			Commands: []string{
				"git fetch origin",
				"git checkout <pr-branch>",
				"git merge origin/<base-branch>",
				"git add <resolved-file>",
				"git commit",
				"git push",
			},
			Tips: []string{
				"Simple text conflicts can be resolved in the GitHub web editor with Resolve conflicts",
				"Use gh pr checkout <number> to get the branch of someone else's pull request",
			},
			CommonMistakes: []string{
				"Merging the pull request branch into the base branch locally instead of the other way round",
			},
		},
	},
}

// genericConflict is the resolution used when no playbook matches.
var genericConflict = Resolution{
	Analysis: "Merge conflict detected in your repository",
	Steps: []string{
		"Open the conflicted file in your editor",
		"Look for conflict markers: <<<<<<<, =======, >>>>>>>",
		"Edit the file to keep the desired changes",
		"Remove the conflict markers",
		"Stage the resolved file with git add",
		"Complete the merge with git commit",
	},
	Commands: []string{
		"git status",
		"git add <resolved-file>",
		"git commit -m 'Resolve merge conflict'",
	},
	Tips: []string{
		"Carefully review both versions before choosing",
		"Test your code after resolving conflicts",
		"Use git diff to see the changes",
	},
	CommonMistakes: []string{
		"Forgetting to remove conflict markers",
		"Committing without testing",
		"Not understanding what each change does",
	},
}

// FallbackResolution picks the built-in guide for a conflict scenario.
func FallbackResolution(scenario string) *Resolution {
	text := Normalize(scenario)
	for _, pb := range playbooks {
		for _, kw := range pb.keywords {
			if strings.Contains(text, kw) {
				return pb.resolution()
			}
		}
	}
	return playbook{id: "generic", res: genericConflict}.resolution()
}

// resolution returns a copy that callers may modify.
func (pb playbook) resolution() *Resolution {
	res := pb.res
	res.Steps = append([]string(nil), pb.res.Steps...)
	res.Commands = append([]string{}, pb.res.Commands...)
	res.Tips = append([]string{}, pb.res.Tips...)
	res.CommonMistakes = append([]string{}, pb.res.CommonMistakes...)
	res.Source = SourceFallback
	res.Playbook = pb.id
	return &res
}
