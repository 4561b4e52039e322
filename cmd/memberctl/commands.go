package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/members/internal/cli"
	"github.com/JonMunkholm/members/internal/config"
	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/events"
	"github.com/JonMunkholm/members/internal/logging"
	"github.com/JonMunkholm/members/internal/password"
	"github.com/JonMunkholm/members/internal/store/memory"
	"github.com/JonMunkholm/members/internal/store/postgres"
)

// errRolledBack makes the process exit non-zero after a rolled back import
// whose report was already printed.
var errRolledBack = errors.New("import rolled back")

// memoryDatabaseURL stands in for DATABASE_URL when --memory is set.
const memoryDatabaseURL = "memory://"

type app struct {
	stdout io.Writer
	stderr io.Writer
	lookup config.LookupFunc

	useMemory bool

	cfg     *config.Config
	logger  *slog.Logger
	service *core.Service
	closers []func()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "memberctl",
		Short:         "Bulk import and export of positions, skills, teams, users and projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().BoolVar(&a.useMemory, "memory", false, "Use a throwaway in-memory store instead of PostgreSQL")

	root.AddCommand(
		a.entitiesCmd(),
		a.previewCmd(),
		a.importCmd(),
		a.downloadCmd("template", "Write the header-only upload template for an entity", (*core.Service).Template),
		a.downloadCmd("sample", "Write an upload file with example rows for an entity", (*core.Service).Sample),
		a.exportCmd(),
		a.migrateCmd(),
	)
	return root
}

func (a *app) loadConfig() error {
	lookup := a.lookup
	if a.useMemory {
		lookup = func(key string) (string, bool) {
			if v, ok := a.lookup(key); ok && strings.TrimSpace(v) != "" {
				return v, ok
			}
			if key == "DATABASE_URL" {
				return memoryDatabaseURL, true
			}
			return "", false
		}
	}

	cfg, err := config.LoadWith(lookup)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.SetupWriter(a.stderr, cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

// open builds the service on the selected store once per run.
func (a *app) open(ctx context.Context) (*core.Service, error) {
	if a.service != nil {
		return a.service, nil
	}

	var store core.Store
	if a.useMemory {
		store = memory.New()
	} else {
		pool, err := postgres.Connect(ctx, a.cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		store = postgres.New(pool)
	}

	bus, err := events.Open(a.cfg.Events, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := bus.Close(); err != nil {
			a.logger.Warn("close event bus", "error", err)
		}
	})
	if bus.Subscriber != nil {
		if err := events.RunAuditLog(ctx, bus.Subscriber, bus.Topic, a.logger); err != nil {
			return nil, err
		}
	}

	opts := []core.Option{core.WithPasswordHasher(password.NewBcrypt(a.cfg.Import.BcryptCost))}
	if pub := bus.EventPublisher(); pub != nil {
		opts = append(opts, core.WithEventPublisher(pub))
	}

	svc, err := core.NewService(store, a.cfg.Import, opts...)
	if err != nil {
		return nil, err
	}
	a.service = svc
	return svc, nil
}

// close releases resources in reverse order of acquisition. It runs after
// Execute rather than in a post-run hook, which cobra skips on error.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.service = nil
}

func (a *app) entitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List importable entities and their upload headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			cli.RenderEntities(a.stdout, svc.Entities())
			return nil
		},
	}
}

func (a *app) previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <entity> <file>",
		Short: "Check a file without saving anything",
		Long: `Validate every row of a CSV or XLSX file against the entity rules and the
current data, and print what an import of the same file would report.

Examples:
  memberctl preview user users.csv
  memberctl preview team teams.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			svc, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Preview(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			cli.RenderPreview(a.stdout, res)
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import <entity> <file>",
		Short: "Import a file; nothing is saved if any row fails",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			svc, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			ctx := core.ContextWithActor(cmd.Context(), core.Actor{Source: "cli"})

			var opts []core.ImportOption
			var progress *cli.Progress
			if !quiet {
				progress = cli.NewProgress(a.stderr, "importing "+args[0])
				opts = append(opts, core.WithProgress(progress.Update))
			}

			res, err := svc.Import(ctx, args[0], data, opts...)
			if progress != nil {
				progress.Finish()
			}
			if err != nil {
				return err
			}

			cli.RenderImport(a.stdout, res)
			if res.RolledBack {
				return errRolledBack
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not draw a progress bar")
	return cmd
}

func (a *app) downloadCmd(use, short string, gen func(*core.Service, string) (*core.File, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   use + " <entity>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			f, err := gen(svc, args[0])
			if err != nil {
				return err
			}
			return a.write(f, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, - for stdout (default: the suggested file name)")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		format string
		output string
		all    bool
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export [entity]",
		Short: "Export every live record of an entity as CSV or XLSX",
		Long: `Export every live record of an entity.

Examples:
  memberctl export user -o users.csv
  memberctl export project --format xlsx
  memberctl export --all --dir ./exports`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if !all {
				f, err := svc.Export(cmd.Context(), args[0], format)
				if err != nil {
					return err
				}
				return a.write(f, output)
			}
			return a.exportAll(cmd.Context(), svc, format, dir)
		},
	}
	cmd.Flags().StringVar(&format, "format", core.FormatCSV, "Export format: csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, - for stdout (default: the suggested file name)")
	cmd.Flags().BoolVar(&all, "all", false, "Export every entity")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory for --all exports")
	return cmd
}

// exportAll writes one file per entity into dir, concurrently.
func (a *app) exportAll(ctx context.Context, svc *core.Service, format, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, info := range svc.Entities() {
		key := info.Key
		g.Go(func() error {
			f, err := svc.Export(ctx, key, format)
			if err != nil {
				return fmt.Errorf("export %s: %w", key, err)
			}
			path := filepath.Join(dir, f.Name)
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return err
			}
			a.logger.Info("exported", "entity", key, "path", path, "bytes", len(f.Data))
			return nil
		})
	}
	return g.Wait()
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.useMemory {
				return errors.New("migrate needs PostgreSQL; drop --memory")
			}
			pool, err := postgres.Connect(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "schema is up to date")
			return nil
		},
	}
}

func (a *app) write(f *core.File, output string) error {
	if output == "-" {
		_, err := a.stdout.Write(f.Data)
		return err
	}
	if output == "" {
		output = f.Name
	}
	if err := os.WriteFile(output, f.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "wrote %s (%d bytes)\n", output, len(f.Data))
	return nil
}
