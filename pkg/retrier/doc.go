// Package retrier holds the public types shared by the retry engine and the
// retrier CLI: the retry Config and its options, the terminal error kinds,
// exit codes, and the Logger, ErrorClassifier and BackoffStrategy interfaces.
//
// The engine itself lives in internal/retry.
package retrier
