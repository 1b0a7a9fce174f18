// Copyright (c) 2026 Katalog. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/EarnestL/k-atalog/internal/bootstrap"
	"github.com/EarnestL/k-atalog/internal/core/catalog"
	"github.com/EarnestL/k-atalog/internal/platform/config"
	"github.com/EarnestL/k-atalog/internal/platform/sec"
	"github.com/EarnestL/k-atalog/pkg/slice"
	"github.com/EarnestL/k-atalog/pkg/uuid"
)

// ErrNoDatabase is returned by commands that need DATABASE_URL.
var ErrNoDatabase = errors.New("DATABASE_URL is not set")

// Runner holds what every command needs.
type Runner struct {
	config *config.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *config.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner. A nil Config is loaded from the
// environment before the first command runs.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		validateCommand(r),
		migrateCommand(r),
		seedCommand(r),
		searchCommand(r),
		tokenCommand(r),
	}
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		r.logger.SetLevel(log.DebugLevel)
	}
	if r.config != nil {
		return ctx, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return ctx, fmt.Errorf("load configuration: %w", err)
	}
	r.config = cfg
	return ctx, nil
}

// slogger hands the catalog packages a [slog.Logger] backed by the CLI's
// charm logger.
func (r *Runner) slogger() *slog.Logger {
	return slog.New(r.logger)
}

func (r *Runner) source(cmd *cli.Command) catalog.Source {
	if path := cmd.String("source"); path != "" {
		return catalog.FileSource(path)
	}
	return catalog.SourceFromPath(r.config.CatalogSourcePath)
}

func (r *Runner) openPersistent(ctx context.Context) (*bootstrap.Catalog, error) {
	if !r.config.PersistentBackendConfigured() {
		return nil, ErrNoDatabase
	}
	return bootstrap.Open(ctx, r.config, r.slogger(), bootstrap.Options{RequirePersistent: true})
}

// Validate decodes the selected source and reports what it holds.
func (r *Runner) Validate(ctx context.Context, cmd *cli.Command) error {
	source := r.source(cmd)
	r.logger.Debug("validating source", "source", source.Name())

	dataset, err := catalog.LoadDataset(source)
	if err != nil {
		return err
	}

	members := slice.Reduce(dataset.Groups, 0, func(count int, group catalog.Group) int {
		return count + len(group.Members)
	})
	return r.writePlain("✓ %s: %d groups, %d members, %d photocards\n",
		source.Name(), len(dataset.Groups), members, len(dataset.Photocards))
}

// Migrate applies the embedded (or MIGRATION_PATH) schema.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	deps, err := r.openPersistent(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	return r.writePlain("✓ schema is up to date\n")
}

// Seed copies the source into the database when it holds no groups.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	deps, err := r.openPersistent(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	target := catalog.NewPostgresStore(deps.Pool, r.config.QueryTimeout)
	report, err := catalog.Seed(ctx, target, r.source(cmd))
	if err != nil {
		return err
	}

	if report.Skipped {
		return r.writePlain("database already holds groups; nothing seeded\n")
	}
	r.logger.Info("seeded", "groups", report.Groups, "photocards", report.Photocards)
	return r.writePlain("✓ seeded %d groups and %d photocards\n", report.Groups, report.Photocards)
}

// Search runs a query against the configured backend and prints the result.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	deps, err := bootstrap.Open(ctx, r.config, r.slogger(), bootstrap.Options{})
	if err != nil {
		return err
	}
	defer deps.Close()

	result, err := deps.Store.Search(ctx, cmd.String("query"), int(cmd.Int("limit")), int(cmd.Int("offset")))
	if err != nil {
		return err
	}
	return r.writeJSON(result, cmd.Bool("pretty"))
}

// Token prints a signed access token for local testing.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	tokens := sec.NewTokenService(r.config.JWTSecret, r.config.JWTAudience)

	subject := cmd.String("subject")
	if subject == "" {
		subject = uuid.New()
	}

	token, err := tokens.GenerateAccessToken(subject, cmd.String("email"), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", token)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	output = append(output, '\n')
	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
