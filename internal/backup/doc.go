// Package backup implements write-through persistence of live-fetched
// data: a bounded job queue with detached workers and a hard per-job
// timeout, so the request path is never blocked, delayed, or failed by
// a backup write.
package backup
