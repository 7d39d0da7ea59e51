package resolver

import (
	"context"
	"sync"

	"pnr_parser/internal/pnr"
)

// Token is one raw code plus the kind it was extracted as.
type Token struct {
	Token string       `json:"token"`
	Kind  pnr.TokenKind `json:"kind"`
}

// defaultBatchWorkers bounds concurrent catalog round trips per batch.
const defaultBatchWorkers = 4

// ResolveBatch resolves a document's tokens as independent tasks on a bounded
// worker pool, so one slow catalog lookup cannot stall the whole batch.
// Results preserve input order. Cancelling the context stops scheduling; the
// remaining tokens come back as plain failures with no side effects.
func (r *Resolver) ResolveBatch(ctx context.Context, tokens []Token, sourceHash string, workers int) []pnr.DecodeResult {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if workers > len(tokens) {
		workers = len(tokens)
	}

	results := make([]pnr.DecodeResult, len(tokens))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.Resolve(ctx, tokens[i].Token, tokens[i].Kind, sourceHash)
			}
		}()
	}

	for i := range tokens {
		select {
		case <-ctx.Done():
			results[i] = pnr.DecodeResult{OriginalCode: tokens[i].Token, Type: pnr.KindNone}
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
