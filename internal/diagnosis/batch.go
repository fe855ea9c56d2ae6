package diagnosis

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DiagnoseBatch diagnoses independent error texts in parallel, running at
// most concurrency requests at once. Results keep the input order.
func (s *Service) DiagnoseBatch(ctx context.Context, texts []string, concurrency int) []*Record {
	if concurrency < 1 {
		concurrency = 1
	}
	out := make([]*Record, len(texts))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, text := range texts {
		g.Go(func() error {
			out[i] = s.Diagnose(ctx, text)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
