// Package probe waits for external dependencies to become ready.
//
// A Probe performs one check; Wait drives it through the retry executor with
// the configured backoff schedule and an optional per-attempt deadline.
// Each probe supplies its own classifier, so failures that cannot heal
// (unknown host, authentication errors, HTTP 404) stop the wait early.
package probe
