package main

import (
	"fmt"
	"os"

	"agencydesk/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "agencydesk:", err)
		os.Exit(1)
	}
}
