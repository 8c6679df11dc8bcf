package main

import (
	"fmt"
	"os"

	"github.com/adamf123git/cvs-archive-loader/cmd/cvsloader/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
