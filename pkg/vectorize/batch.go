package vectorize

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

// ConvertAll converts every source with at most concurrency runs in flight. Results are returned
// in source order. A failed conversion does not stop the others, only the cancellation of ctx
// does, in which case ctx.Err() is returned alongside the partial results.
func (p *Pipeline) ConvertAll(ctx context.Context, srcs []Source, concurrency int) ([]model.Result, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	results := make([]model.Result, len(srcs))

	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))

	for i, src := range srcs {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = model.Result{Kind: model.ResultCancelled}

				return nil
			}

			run, err := p.Run(ctx, src, nil)
			if err != nil {
				results[i] = model.Result{Kind: model.ResultFailure, Err: err}

				return nil
			}
			results[i] = run.Wait()

			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}
