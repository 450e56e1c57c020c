// Package main provides workspacectl, the operator tool for user workspaces
// and the shared example files.
package main

import (
	"os"

	"aficionado-be/cmd/workspacectl/internal/cli"
)

func main() {
	app := cli.NewApp()
	rootCmd := app.CreateRootCommand()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
