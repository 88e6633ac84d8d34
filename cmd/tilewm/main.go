package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
