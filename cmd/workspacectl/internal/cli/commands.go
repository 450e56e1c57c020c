package cli

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aficionado-be/internal/identity"
	"aficionado-be/pkg/blobstore"
	"aficionado-be/pkg/filename"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// addWorkspaceCommands adds per-user workspace commands
func (app *App) addWorkspaceCommands(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list <user>",
		Short: "List the files in a user's workspace",
		Long:  "List the files in a user's workspace. <user> is a username or an email address.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := app.resolveUser(args[0])
			if err != nil {
				return err
			}
			store, err := app.storage(cmd.Context())
			if err != nil {
				return err
			}

			names, err := store.ListFilenames(cmd.Context(), username)
			if err != nil {
				return err
			}
			sort.Strings(names)

			color.New(color.Bold).Fprintf(app.Out, "%s (%d files)\n", username, len(names))
			for _, name := range names {
				fmt.Fprintf(app.Out, "  %s\n", name)
			}
			return nil
		},
	}

	purgeCmd := &cobra.Command{
		Use:   "purge <user>",
		Short: "Delete every file in a user's workspace",
		Long: `Delete every file in a user's workspace, one object at a time.
Deletion is not atomic; files that could not be deleted are listed and the
command exits non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := app.resolveUser(args[0])
			if err != nil {
				return err
			}
			store, err := app.storage(cmd.Context())
			if err != nil {
				return err
			}

			report, err := store.DeleteAll(cmd.Context(), username)
			var partial *blobstore.PartialDeleteError
			if err != nil && !errors.As(err, &partial) {
				app.failure("Nothing deleted from %s: %v", username, err)
				return err
			}
			app.success("Deleted %d file(s) from %s", len(report.Deleted), username)
			for _, name := range report.Failed {
				app.failure("  failed: %s", name)
			}
			return err
		},
	}

	cloneCmd := &cobra.Command{
		Use:   "clone <user>",
		Short: "Copy the example files into a user's workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := app.resolveUser(args[0])
			if err != nil {
				return err
			}
			store, err := app.storage(cmd.Context())
			if err != nil {
				return err
			}

			copied, err := store.CloneExamples(cmd.Context(), username)
			if err != nil {
				app.failure("Copied %d file(s) before failing: %v", len(copied), err)
				return err
			}
			if len(copied) == 0 {
				app.warn("No example files to copy")
				return nil
			}
			app.success("Copied %d example file(s) into %s", len(copied), username)
			return nil
		},
	}

	rootCmd.AddCommand(listCmd, purgeCmd, cloneCmd)
}

// addExampleCommands adds commands for the shared example prefix
func (app *App) addExampleCommands(rootCmd *cobra.Command) {
	examplesCmd := &cobra.Command{
		Use:   "examples",
		Short: "Manage the shared example files",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the shared example files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.storage(cmd.Context())
			if err != nil {
				return err
			}
			names, err := store.ListExamples(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(app.Out, name)
			}
			return nil
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed <file>...",
		Short: "Upload local files as shared examples",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.storage(cmd.Context())
			if err != nil {
				return err
			}

			for _, path := range args {
				name := filename.Sanitize(filepath.Base(path))
				if name == "" {
					return fmt.Errorf("%s: unusable filename", path)
				}
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				contentType := mime.TypeByExtension(filepath.Ext(name))
				if contentType == "" {
					contentType = "application/octet-stream"
				}
				err = store.SeedExample(cmd.Context(), name, f, contentType)
				f.Close()
				if err != nil {
					return fmt.Errorf("seed %s: %w", name, err)
				}
				app.success("Seeded %s", name)
			}
			return nil
		},
	}

	examplesCmd.AddCommand(listCmd, seedCmd)
	rootCmd.AddCommand(examplesCmd)
}

// resolveUser accepts either an email address or a bare username.
func (app *App) resolveUser(arg string) (string, error) {
	email := arg
	if !strings.Contains(arg, "@") {
		email = arg + "@local"
	}
	id, err := identity.Resolve(email, app.Config.Workspace.ExamplesPrefix)
	if err != nil {
		return "", fmt.Errorf("invalid user %q: %w", arg, err)
	}
	return id.Username, nil
}
