package llm

// modelAliases maps the short names accepted in llm.model to concrete
// model IDs, per provider. Unknown names are sent as given.
var modelAliases = map[string]map[string]string{
	ProviderAnthropic: {
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-5-20250929",
	},
	ProviderOpenAI: {
		"gpt-mini": "gpt-4o-mini",
		"gpt":      "gpt-4o",
	},
	ProviderGemini: {
		"gemini-flash": "gemini-2.5-flash",
		"gemini-lite":  "gemini-2.5-flash-lite",
		"gemini-pro":   "gemini-2.5-pro",
	},
	ProviderGroq: {
		"llama-8b":  "llama-3.1-8b-instant",
		"llama-70b": "llama-3.3-70b-versatile",
	},
}

func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}
