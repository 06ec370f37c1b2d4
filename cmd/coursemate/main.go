// Command coursemate answers questions about ingested course materials.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/cli"
)

// version is set via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	home, err := resolveHome()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	c, err := newContainer(ctx, home)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			fmt.Fprintln(os.Stderr, "Error closing:", cerr)
		}
	}()

	cli.SetVersion(version)
	cli.SetServices(c.services)
	return cli.Execute(ctx)
}
