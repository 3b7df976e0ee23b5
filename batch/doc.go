// Package batch runs a group of context-aware jobs concurrently with an
// optional cap on how many run at once.
//
// A [Queue] is typically paired with a throttled client: the queue bounds
// concurrency, the gate bounds the rate.
//
//	q := batch.NewQueue(8)
//	for _, doc := range docs {
//		q.Start(ctx, func(ctx context.Context) error {
//			return send(ctx, doc)
//		})
//	}
//	err := q.Wait()
package batch
