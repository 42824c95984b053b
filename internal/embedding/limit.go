package embedding

import "context"

type limited struct {
	next  Embedder
	slots chan struct{}
}

// Limit bounds the number of concurrent Encode calls reaching next. It is
// meant to wrap one model so that embedding concurrency does not follow
// the number of category tasks. A non-positive n returns next unchanged.
func Limit(next Embedder, n int) Embedder {
	if n <= 0 {
		return next
	}
	return &limited{next: next, slots: make(chan struct{}, n)}
}

func (l *limited) Encode(ctx context.Context, text string) (Vector, error) {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-l.slots }()

	return l.next.Encode(ctx, text)
}
