// Package pool implements a bounded worker pool with a task queue.
//
// Retail scraper lookups are slow, blocking I/O. Funneling them through a
// fixed-size pool keeps the number of concurrent upstream requests bounded
// regardless of inbound request volume, and every submitted task is bound to
// its caller's context so cancellation propagates.
package pool
