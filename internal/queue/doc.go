// Package queue implements the unbounded blocking FIFO queue shared
// between the session supervisor, its loops, and the caller.
//
// Push never blocks: the backing ring buffer doubles when it reaches
// 70% occupancy. Pop blocks until an item arrives or the current wait
// generation is cancelled via CancelWait, which wakes every blocked
// Pop without consuming items. Cancellation is edge-triggered: the
// queue stays usable and later Pops block again. PopCtx additionally
// observes a context, so a consumer that was busy when CancelWait
// fired still stops at its next wait.
package queue
