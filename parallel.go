package qframe

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// AssembleAll assembles several query results concurrently with
// AssembleValue. Frames are returned in input order. The first failure
// cancels the remaining work and is returned; cancelling ctx stops
// conversions that have not started yet.
func AssembleAll(ctx context.Context, values ...any) ([]*Frame, error) {
	frames := make([]*Frame, len(values))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, v := range values {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			frame, err := AssembleValue(v)
			if err != nil {
				return err
			}
			frames[i] = frame
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}
