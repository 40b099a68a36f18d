package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"linkstate/linkstate/internal/config"
	"linkstate/linkstate/internal/db"
	"linkstate/linkstate/internal/repo"
	"linkstate/linkstate/internal/service"
)

// app holds what every subcommand needs once the store is open.
type app struct {
	dsn   string
	cfg   config.Config
	conn  *db.Conn
	store repo.LinkRepo
	links service.Links
}

// run executes one linkctl invocation and closes the store afterwards.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.conn.Close(context.Background()); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "linkctl",
		Short:         "Manage short links directly against the store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.dsn, "db", "", "store connection string (defaults to the configured DSN)")

	root.AddCommand(
		migrateCmd(a),
		createCmd(a),
		infoCmd(a),
		updateCmd(a),
		deleteCmd(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	dsn := a.dsn
	if dsn == "" {
		dsn = cfg.DSN()
	}

	a.conn, err = db.Open(cmd.Context(), dsn, cfg.MongoDatabase)
	if err != nil {
		return err
	}

	a.store, err = repo.New(a.conn)
	if err != nil {
		return err
	}

	a.links = service.NewLinks(a.store,
		service.WithTokenLength(cfg.TokenLength),
		service.WithMaxAttempts(cfg.TokenMaxAttempts),
		service.WithLogger(config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)),
	)
	return nil
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the links schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", a.conn.Dialect)
			return nil
		},
	}
}

func createCmd(a *app) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:     "create <url>",
		Short:   "Shorten a URL and print the short link",
		Example: `  linkctl create "https://www.google.com/search?q=go+lang" --owner ops`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := a.links.Create(cmd.Context(), a.cfg.BaseURL, args[0], owner)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link.ShortURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner tag stored with the link")
	return cmd
}

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <token>",
		Short: "Print a link and its click count as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := a.links.Info(cmd.Context(), a.cfg.BaseURL, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(link)
		},
	}
}

func updateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <token> <url>",
		Short: "Point an existing short link at a new URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.links.Update(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "URL updated successfully")
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <token>",
		Short: "Remove a short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.links.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "URL deleted successfully")
			return nil
		},
	}
}
