// Package schedule provides context-aware waiting for staggered and
// delayed work.
package schedule
