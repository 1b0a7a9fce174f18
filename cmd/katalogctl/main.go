// Copyright (c) 2026 Katalog. All rights reserved.

// Command katalogctl is the operator tool for the Katalog catalog.
//
// It validates static sources, applies the schema, seeds an empty database,
// runs searches against whichever backend is configured and mints local
// access tokens for development.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/EarnestL/k-atalog/internal/platform/constants"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "katalogctl",
	})

	app := newApp(NewRunner(RunnerOpts{Logger: logger}))

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("katalogctl: %v", err)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "katalogctl",
		Usage:   "Operate the Katalog photocard catalog",
		Version: constants.AppVersion,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func validateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Decode and validate a static catalog source",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Path to a catalog JSON file (defaults to CATALOG_SOURCE_PATH, then the embedded copy)",
			},
		},
		Action: r.Validate,
	}
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply the catalog schema to DATABASE_URL",
		Action: r.Migrate,
	}
}

func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Copy the static source into an empty database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Path to a catalog JSON file",
			},
		},
		Action: r.Seed,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search groups, members and photocards",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "query",
				Aliases:  []string{"q"},
				Usage:    "Free-text query",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Photocard page size",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Photocard page offset",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent JSON output",
			},
		},
		Action: r.Search,
	}
}

func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint an access token signed with SUPABASE_JWT_SECRET",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Email claim",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "subject",
				Usage: "Subject claim (defaults to a fresh id)",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime",
				Value: constants.DevTokenTTL,
			},
		},
		Action: r.Token,
	}
}
