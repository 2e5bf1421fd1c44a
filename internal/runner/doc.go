// Package runner retries external commands.
//
// Every attempt gets RETRIER_RUN_ID and RETRIER_ATTEMPT in its environment so
// the child can tell a retry from a first run. Stderr is streamed through and
// its tail is kept for the error message of a failed attempt.
package runner
