package llm

import "context"

// callLabels tag an LLM call for the audit log.
type callLabels struct {
	purpose   string
	requestID string
}

type labelsKey struct{}

func labelsFrom(ctx context.Context) callLabels {
	l, _ := ctx.Value(labelsKey{}).(callLabels)
	return l
}

// WithPurpose labels calls made with ctx, e.g. "error-diagnosis".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	l := labelsFrom(ctx)
	l.purpose = purpose
	return context.WithValue(ctx, labelsKey{}, l)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p := labelsFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// WithRequestID ties calls made with ctx to the diagnosis that made them.
func WithRequestID(ctx context.Context, id string) context.Context {
	l := labelsFrom(ctx)
	l.requestID = id
	return context.WithValue(ctx, labelsKey{}, l)
}

// RequestIDFrom returns the request identifier, or "".
func RequestIDFrom(ctx context.Context) string {
	return labelsFrom(ctx).requestID
}
