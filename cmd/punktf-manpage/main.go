package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/punktf/cmd/punktf"
	"github.com/arthur-debert/punktf/internal/version"
)

func main() {
	rootCmd := punktf.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "PUNKTF",
		Section: "1",
		Source:  "punktf " + version.Version,
		Manual:  "punktf manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
