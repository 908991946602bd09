// Package dispatch provides the handler execution primitives used by the
// event bus.
//
// Every handler invocation goes through an Executor, which recovers panics,
// captures the stack and times the call. On top of the Executor the package
// offers three ways to run handlers:
//
//   - SyncDispatcher: runs a handler in the caller's goroutine. Used for
//     Posting, MainThread and (outside PublishAsync) Async handlers.
//
//   - Pool: a bounded queue drained by a fixed set of worker goroutines.
//     Used for Background handlers. Submitting never blocks: when the queue
//     is full the task runs on its own goroutine and is counted as overflow.
//
//   - Group: a join set for Async handlers inside PublishAsync. All handlers
//     start before any is awaited and Wait returns once every one finished.
//
// # Panic Recovery
//
// A panicking handler never takes down the publisher or a worker. The panic
// value and stack are reported in the Result and, if configured, passed to a
// PanicHandler.
//
// # Usage
//
//	d := dispatch.NewSyncDispatcher()
//	result := d.Dispatch(ctx, event, handler)
//	if !result.IsSuccess() {
//	    // inspect result.Error or result.PanicValue
//	}
//
//	pool := dispatch.NewPool(dispatch.WithWorkerCount(4))
//	_ = pool.Start()
//	defer pool.Stop(ctx)
//	pool.Submit(ctx, event, handler, func(r dispatch.Result) { ... })
package dispatch
