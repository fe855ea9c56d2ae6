package diagnosis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitguy/gitguy/internal/llm"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 20 * time.Second

// Fallback reasons reported to loggers and observers.
const (
	ReasonNoProvider  = "no_provider"
	ReasonTimeout     = "timeout"
	ReasonCanceled    = "canceled"
	ReasonRateLimited = "rate_limited"
	ReasonMaxTokens   = "max_tokens"
	ReasonTransport   = "transport"
)

// Redactor scrubs secrets from error text before it is sent to a model.
type Redactor interface {
	Redact(text string) string
}

// RepoDescriber supplies a short description of the current repository
// that is appended to the prompt.
type RepoDescriber interface {
	Describe(ctx context.Context) (string, error)
}

// FallbackEvent describes why a request did not use the model answer.
type FallbackEvent struct {
	RequestID string
	Reason    string
	Err       error
}

// Observer is notified whenever a request falls back after a model failure.
type Observer interface {
	ObserveFallback(ctx context.Context, ev FallbackEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev FallbackEvent)

func (f ObserverFunc) ObserveFallback(ctx context.Context, ev FallbackEvent) { f(ctx, ev) }

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for fallback reasons.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout bounds each model call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDiagnoserConfig overrides model request parameters.
func WithDiagnoserConfig(cfg DiagnoserConfig) Option {
	return func(s *Service) { s.diagnoserCfg = cfg }
}

// WithRedactor scrubs error text before the model call.
func WithRedactor(r Redactor) Option {
	return func(s *Service) { s.redactor = r }
}

// WithRepoDescriber adds repository context to the prompt.
func WithRepoDescriber(d RepoDescriber) Option {
	return func(s *Service) { s.repo = d }
}

// WithObserver registers a fallback observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observers = append(s.observers, o) }
}

// Service is the diagnosis engine. It asks the model first and falls back
// to the pattern matcher whenever the model is unavailable, slow or
// returns something that cannot be repaired. It is safe for concurrent use
// and keeps no per-request state.
type Service struct {
	matcher      *Matcher
	diagnoser    *Diagnoser
	diagnoserCfg DiagnoserConfig
	timeout      time.Duration
	redactor     Redactor
	repo         RepoDescriber
	observers    []Observer
	log          *zap.Logger
}

// NewService creates a diagnosis engine over db. If provider is nil, every
// request takes the fallback path. A nil db uses the embedded database.
func NewService(provider llm.Provider, db *Database, opts ...Option) *Service {
	s := &Service{
		matcher:      NewMatcher(db),
		diagnoserCfg: DefaultDiagnoserConfig(),
		timeout:      DefaultTimeout,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if provider != nil {
		s.diagnoser = NewDiagnoser(provider, s.diagnoserCfg)
	}
	return s
}

// Matcher returns the fallback matcher.
func (s *Service) Matcher() *Matcher { return s.matcher }

// Diagnose returns a diagnosis for raw error text. It never fails: empty
// input yields a guidance record, and any model failure yields the
// pattern matcher's answer for the original text.
func (s *Service) Diagnose(ctx context.Context, raw string) *Record {
	id := uuid.NewString()
	log := s.log.With(zap.String("request_id", id))

	if strings.TrimSpace(raw) == "" {
		rec := emptyInputRecord()
		rec.RequestID = id
		return rec
	}

	if s.diagnoser == nil {
		log.Debug("no model configured, using pattern matcher")
		return s.fallback(id, raw)
	}

	rec, err := s.askModel(llm.WithRequestID(ctx, id), raw)
	if err == nil {
		rec.RequestID = id
		log.Debug("model diagnosis accepted",
			zap.String("category", string(rec.Category)),
			zap.Stringer("severity", rec.Severity))
		return rec
	}

	reason := FailureReason(err)
	log.Warn("model diagnosis failed, using pattern matcher",
		zap.String("reason", reason),
		zap.Error(err))
	for _, o := range s.observers {
		o.ObserveFallback(ctx, FallbackEvent{RequestID: id, Reason: reason, Err: err})
	}
	return s.fallback(id, raw)
}

func (s *Service) fallback(id, raw string) *Record {
	rec := s.matcher.Match(Normalize(raw))
	rec.RequestID = id
	return rec
}

// ResolveConflict returns a walkthrough for a merge conflict scenario. It
// never fails: empty input and model failures yield the built-in playbook
// for the scenario.
func (s *Service) ResolveConflict(ctx context.Context, scenario string) *Resolution {
	id := uuid.NewString()
	log := s.log.With(zap.String("request_id", id))

	if strings.TrimSpace(scenario) == "" || s.diagnoser == nil {
		res := FallbackResolution(scenario)
		res.RequestID = id
		return res
	}

	ctx = llm.WithRequestID(ctx, id)
	res, err := bounded(ctx, s.timeout, func(ctx context.Context) (*Resolution, error) {
		return s.diagnoser.ResolveConflict(ctx, s.promptInput(ctx, scenario))
	})
	if err == nil {
		res.RequestID = id
		log.Debug("model conflict resolution accepted", zap.Int("steps", len(res.Steps)))
		return res
	}

	reason := FailureReason(err)
	log.Warn("model conflict resolution failed, using playbook",
		zap.String("reason", reason),
		zap.Error(err))
	for _, o := range s.observers {
		o.ObserveFallback(ctx, FallbackEvent{RequestID: id, Reason: reason, Err: err})
	}
	res = FallbackResolution(scenario)
	res.RequestID = id
	return res
}

func (s *Service) askModel(ctx context.Context, raw string) (*Record, error) {
	return bounded(ctx, s.timeout, func(ctx context.Context) (*Record, error) {
		return s.diagnoser.Diagnose(ctx, s.promptInput(ctx, raw))
	})
}

// promptInput redacts text and attaches repository context.
func (s *Service) promptInput(ctx context.Context, text string) PromptInput {
	in := PromptInput{ErrorText: text}
	if s.redactor != nil {
		in.ErrorText = s.redactor.Redact(text)
	}
	if s.repo != nil {
		desc, err := s.repo.Describe(ctx)
		if err != nil {
			s.log.Debug("repository context unavailable", zap.Error(err))
		}
		in.RepoContext = desc
	}
	return in
}

type result[T any] struct {
	val T
	err error
}

// bounded runs one model call under timeout. The call runs in its own
// goroutine so a provider that ignores cancellation cannot hold the
// request past the timeout.
func bounded[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		val, err := call(ctx)
		done <- result[T]{val: val, err: err}
	}()

	select {
	case res := <-done:
		return res.val, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// FailureReason classifies a model failure for logging.
func FailureReason(err error) string {
	var schemaErr *SchemaError
	var timeoutErr *llm.ErrTimeout
	var rateErr *llm.ErrRateLimit
	var maxTokErr *llm.ErrMaxTokensExceeded
	var invalidErr *llm.ErrInvalidResponse

	switch {
	case err == nil:
		return ""
	case errors.As(err, &schemaErr):
		return "schema:" + schemaErr.Reason
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.As(err, &rateErr):
		return ReasonRateLimited
	case errors.As(err, &maxTokErr):
		return ReasonMaxTokens
	case errors.As(err, &invalidErr):
		return "schema:" + ReasonUnparseable
	default:
		return ReasonTransport
	}
}
