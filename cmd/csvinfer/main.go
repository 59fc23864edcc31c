// Command csvinfer infers column types of CSV, TSV, XLSX and Parquet files.
//
// Usage:
//
//	csvinfer [flags] FILE|DIR|- ...
//
// "-" reads CSV from standard input with single-pass reservoir sampling.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// A .env file next to the command may hold CSVINFER_* settings
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}
