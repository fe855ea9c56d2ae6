package diagnosis

import "github.com/gitguy/gitguy/internal/llm"

func categoryEnum() []any {
	out := make([]any, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}

func stringArray(description string, minItems int) map[string]any {
	def := map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
	if minItems > 0 {
		def["minItems"] = minItems
	}
	return def
}

// RecordSchema defines the JSON schema the model is asked to answer in.
var RecordSchema = &llm.Schema{
	Name:        "git-error-diagnosis",
	Description: "Structured diagnosis of a Git or GitHub error message",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type":        "string",
				"enum":        categoryEnum(),
				"description": "The single category that best describes the error",
			},
			"severity": map[string]any{
				"type":        "string",
				"enum":        []any{"Low", "Medium", "High", "Critical"},
				"description": "How badly the error blocks the user's work",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "One sentence describing what went wrong",
			},
			"causes":     stringArray("Likely root causes, most likely first", 1),
			"solutions":  stringArray("Ordered remediation steps, each a short imperative instruction", 1),
			"commands":   stringArray("Exact shell commands that carry out the solutions", 0),
			"prevention": map[string]any{"type": "string", "description": "How to avoid this error in future"},
			"references": stringArray("Documentation links relevant to the error", 0),
		},
		"required":             []any{"category", "severity", "summary", "causes", "solutions", "commands", "prevention", "references"},
		"additionalProperties": false,
	},
}
