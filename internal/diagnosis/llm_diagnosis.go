package diagnosis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gitguy/gitguy/internal/llm"
)

// DiagnoserConfig holds configuration for the model diagnoser.
type DiagnoserConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultDiagnoserConfig returns sensible defaults.
func DefaultDiagnoserConfig() DiagnoserConfig {
	return DiagnoserConfig{
		MaxTokens:   1200,
		Temperature: 0.3,
	}
}

// Diagnoser asks a language model to diagnose error text.
type Diagnoser struct {
	provider llm.Provider
	cfg      DiagnoserConfig
}

// NewDiagnoser creates a model-backed diagnoser.
func NewDiagnoser(provider llm.Provider, cfg DiagnoserConfig) *Diagnoser {
	return &Diagnoser{provider: provider, cfg: cfg}
}

// conflictTemperature leaves room for varied advice on conflict walkthroughs.
const conflictTemperature = 0.6

// Diagnose sends the error text to the model and repairs its answer into a
// Record. Errors are either provider errors from the llm package or a
// *SchemaError when the answer cannot be repaired.
func (d *Diagnoser) Diagnose(ctx context.Context, in PromptInput) (*Record, error) {
	ctx = llm.WithPurpose(ctx, "error-diagnosis")

	system, err := buildSystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("build system prompt: %w", err)
	}
	userMsg, err := buildDiagnosisMessage(in)
	if err != nil {
		return nil, fmt.Errorf("build diagnosis prompt: %w", err)
	}

	content, err := d.generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{llm.UserMessage(userMsg)},
		Schema:      RecordSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM diagnosis failed: %w", err)
	}
	return repaired(content)
}

// ResolveConflict asks the model for a walkthrough of a merge conflict
// scenario. Errors follow Diagnose.
func (d *Diagnoser) ResolveConflict(ctx context.Context, in PromptInput) (*Resolution, error) {
	ctx = llm.WithPurpose(ctx, "conflict-resolution")

	userMsg, err := buildConflictMessage(in)
	if err != nil {
		return nil, fmt.Errorf("build conflict prompt: %w", err)
	}

	content, err := d.generate(ctx, llm.Request{
		System:      conflictSystemPrompt,
		Messages:    []llm.Message{llm.UserMessage(userMsg)},
		Schema:      ConflictSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: conflictTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM conflict resolution failed: %w", err)
	}
	return RepairResolution(content)
}

// generate returns the raw answer content. Output that failed strict
// provider-side validation is returned too, since it can still be
// repairable.
func (d *Diagnoser) generate(ctx context.Context, req llm.Request) ([]byte, error) {
	resp, err := d.provider.Generate(ctx, req)
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if !errors.As(err, &invalid) || len(invalid.Content) == 0 {
			return nil, err
		}
		return invalid.Content, nil
	}
	return resp.Content, nil
}

func repaired(content []byte) (*Record, error) {
	parsed := ValidateAndRepair(content)
	if !parsed.OK() {
		return nil, parsed.Err
	}
	return parsed.Record, nil
}
