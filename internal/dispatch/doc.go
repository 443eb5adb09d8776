// Package dispatch fans conversion tasks out to a bounded worker pool.
//
// One pool serves every submission path: CLI batches, watch-released files,
// and browser uploads all contend for the same fixed set of workers, so total
// converter concurrency stays bounded no matter how many submitters exist.
// RunBatch preserves input order in its results; Submit is the single-task
// form over the same queue. The pool never retries: a failed Outcome is final
// and retrying is the caller's decision.
package dispatch
