package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/vvka-141/retrier/internal/cli"
	"github.com/vvka-141/retrier/pkg/retrier"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(retrier.ExitPanic)
		}
	}()

	if os.Getenv("RETRIER_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	// Interrupts cancel the pending wait or attempt instead of killing the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		os.Exit(retrier.ExitCodeForError(err))
	}
}
