package diagnosis

import (
	"bytes"
	"strings"
	"text/template"
)

const diagnosisSystemPrompt = `You are an expert in Git, GitHub and GitHub Actions who diagnoses error messages for developers.

Instructions:
- Classify the error into exactly one category from this list: {{.Categories}}.
- Rate severity as one of Low, Medium, High or Critical. Critical means data loss is possible; High means work is blocked.
- Give the most likely root causes first.
- Give ordered solution steps, each a short imperative instruction.
- Give the exact shell commands that carry out the solutions, using placeholders such as BRANCH or OWNER/REPO for unknown names.
- Only cite official documentation links (git-scm.com, docs.github.com).
- Never repeat secrets, tokens or passwords that appear in the error text.

Respond with a single JSON object and nothing else:
{
  "category": "<one of the categories>",
  "severity": "Low|Medium|High|Critical",
  "summary": "<one sentence>",
  "causes": ["<cause>", ...],
  "solutions": ["<step>", ...],
  "commands": ["<command>", ...],
  "prevention": "<how to avoid this in future>",
  "references": ["<url>", ...]
}`

const conflictSystemPrompt = `You are an expert in Git who walks developers through resolving merge conflicts.

Instructions:
- Explain briefly what the conflict is and why it happened.
- Give ordered resolution steps, each a short imperative instruction.
- Give the exact shell commands used during the resolution, using placeholders such as FILE or BRANCH for unknown names.
- Include how to abort safely when the operation supports it.
- Never repeat secrets, tokens or passwords that appear in the scenario.

Respond with a single JSON object and nothing else:
{
  "analysis": "<what is conflicting and why>",
  "steps": ["<step>", ...],
  "commands": ["<command>", ...],
  "tips": ["<tip>", ...],
  "common_mistakes": ["<mistake>", ...]
}`

var (
	systemPromptTemplate = template.Must(template.New("system").Parse(diagnosisSystemPrompt))

	diagnosisUserTemplate = template.Must(template.New("diagnosis").Parse(`Diagnose this Git/GitHub error:

<error>
{{.ErrorText}}
</error>
{{if .RepoContext}}
Repository context:
{{.RepoContext}}
{{end}}`))

	conflictUserTemplate = template.Must(template.New("conflict").Parse(`Help me resolve this merge conflict:

<conflict>
{{.ErrorText}}
</conflict>
{{if .RepoContext}}
Repository context:
{{.RepoContext}}
{{end}}`))
)

// PromptInput is the data rendered into the diagnosis prompt.
type PromptInput struct {
	ErrorText   string
	RepoContext string
}

func buildSystemPrompt() (string, error) {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	var buf bytes.Buffer
	err := systemPromptTemplate.Execute(&buf, struct{ Categories string }{strings.Join(names, ", ")})
	return buf.String(), err
}

func buildDiagnosisMessage(in PromptInput) (string, error) {
	var buf bytes.Buffer
	if err := diagnosisUserTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildConflictMessage(in PromptInput) (string, error) {
	var buf bytes.Buffer
	if err := conflictUserTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
