// Package cli provides command-line interface setup for workspacectl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"aficionado-be/internal/config"
	"aficionado-be/pkg/blobstore"
	"aficionado-be/pkg/blobstore/gcs"
	membucket "aficionado-be/pkg/blobstore/memory"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// App represents the workspacectl CLI application
type App struct {
	Config *config.Config
	Out    io.Writer

	bucket  blobstore.Bucket
	adapter *blobstore.Adapter
}

func NewApp() *App {
	return &App{Out: os.Stdout}
}

// WithBucket makes the app use bucket instead of connecting to GCS.
func (app *App) WithBucket(bucket blobstore.Bucket) *App {
	app.bucket = bucket
	return app
}

func (app *App) CreateRootCommand() *cobra.Command {
	var examplesPrefix string

	rootCmd := &cobra.Command{
		Use:   "workspacectl",
		Short: "Inspect and manage Aficionado workspaces",
		Long: `workspacectl operates directly on the workspace bucket: list, purge or seed
a user's files and manage the shared example files every user can copy.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if app.Config == nil {
				app.Config = config.Load()
			}
			if cmd.Flags().Changed("examples-prefix") {
				app.Config.Workspace.ExamplesPrefix = examplesPrefix
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&examplesPrefix, "examples-prefix", "examples", "Prefix holding the shared example files")
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Out)

	app.addWorkspaceCommands(rootCmd)
	app.addExampleCommands(rootCmd)
	app.addEventCommands(rootCmd)

	return rootCmd
}

func (app *App) storage(ctx context.Context) (*blobstore.Adapter, error) {
	if app.adapter != nil {
		return app.adapter, nil
	}
	if app.bucket == nil && app.Config.Workspace.StorageDriver == "memory" {
		app.warn("STORAGE_DRIVER=memory: changes only live for this command")
		app.bucket = membucket.NewBucket("memory")
	}
	if app.bucket == nil {
		bucket, err := gcs.NewBucket(ctx, app.Config.GCP.BucketName, app.Config.GCP.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		app.bucket = bucket
	}
	app.adapter = blobstore.NewAdapter(app.bucket, app.Config.Workspace.ExamplesPrefix)
	return app.adapter, nil
}

func (app *App) success(format string, args ...any) {
	fmt.Fprintln(app.Out, color.GreenString(format, args...))
}

func (app *App) warn(format string, args ...any) {
	fmt.Fprintln(app.Out, color.YellowString(format, args...))
}

func (app *App) failure(format string, args ...any) {
	fmt.Fprintln(app.Out, color.RedString(format, args...))
}
