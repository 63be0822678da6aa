package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"eventsort/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(max(services.ExitCode(err), 1))
	}
}
