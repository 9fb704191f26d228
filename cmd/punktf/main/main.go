package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/punktf/cmd/punktf"
	"github.com/arthur-debert/punktf/pkg/ui/styles"
)

func main() {
	// Interrupts cancel the deployment between dotfiles.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := punktf.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.Render("Error", fmt.Sprintf("Error: %v", err)))
		stop()
		os.Exit(1)
	}
}
