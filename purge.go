package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cppla/wellbeing/jobs"
)

// runDemoPurge implements `wellbeing demo:purge [--hours=N]` and returns the
// process exit code.
func runDemoPurge(purger jobs.DemoPurger, defaultHours int, args []string) int {
	fs := flag.NewFlagSet("demo:purge", flag.ContinueOnError)
	hours := fs.Int("hours", defaultHours, "delete demo users created at least this many hours ago (minimum 1)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := purger.PurgeExpired(ctx, *hours)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demo:purge failed: %v\n", err)
		return 1
	}
	fmt.Printf("Deleted %d demo user(s) older than %d hour(s).\n", n, max(1, *hours))
	return 0
}
