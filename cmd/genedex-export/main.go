package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/genedex/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "genedex-export",
		Usage:   "Stream gene documents out of the search backend",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Logger environment (local, prod, test)",
				Value:   "local",
				EnvVars: []string{"ENV"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "dump",
				Usage:  "Write every matching document as one JSON line",
				Action: dumpCommand,
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:    "filter",
						Aliases: []string{"q"},
						Usage:   `Query-string filter, e.g. "taxid:9606"; empty exports everything`,
					},
					&cli.StringFlag{
						Name:    "fields",
						Aliases: []string{"f"},
						Usage:   "Comma-separated fields to export; empty or \"all\" exports everything",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Documents per scroll batch",
						Value: 1000,
					},
					&cli.DurationFlag{
						Name:  "keep-alive",
						Usage: "Idle budget of the server-side cursor",
						Value: 5 * time.Minute,
					},
					&cli.IntFlag{
						Name:  "from",
						Usage: "Skip this many documents",
					},
					&cli.IntFlag{
						Name:  "stop",
						Usage: "Stop at the first batch boundary past this many documents (0 = no bound)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file; - writes to stdout",
						Value:   "-",
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Print the request body a free-text search would send",
				ArgsUsage: "<term>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "scored, structured or raw",
					},
					&cli.StringFlag{
						Name:  "species",
						Usage: `Taxon ids or common names, or "all"`,
					},
					&cli.IntFlag{
						Name:  "taxid",
						Usage: "Organism for coordinate terms such as chr1:1000-2000",
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "Page size",
					},
				},
			},
		},
	}
}

func backendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "es-addr",
			Usage:   "Search backend address (repeatable)",
			Value:   cli.NewStringSlice("http://localhost:9200"),
			EnvVars: []string{"GENEDEX_BACKEND_ADDRS"},
		},
		&cli.StringFlag{
			Name:    "es-username",
			EnvVars: []string{"GENEDEX_BACKEND_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "es-password",
			EnvVars: []string{"GENEDEX_BACKEND_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "es-api-key",
			EnvVars: []string{"GENEDEX_BACKEND_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "index",
			Usage: "Index to read",
			Value: "genedoc",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
			Value: 30 * time.Second,
		},
	}
}
