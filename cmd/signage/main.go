package main

import (
	"context"
	"errors"
	"os"

	"signage_server/pkg/colors"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			colors.PrintError("%v", err)
		}
		os.Exit(1)
	}
}
