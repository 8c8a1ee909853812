package main

import (
	"fmt"
	"os"

	"github.com/andywolf/ytcomments/internal/cli"
	"github.com/andywolf/ytcomments/internal/security"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", security.NewScrubber().ScrubError(err))
		os.Exit(1)
	}
}
