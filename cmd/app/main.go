package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/postcraft/internal"
	"github.com/starford/postcraft/internal/richtext"
	pkgconfig "github.com/starford/postcraft/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr),
	)
}

func render(_ context.Context, cmd *cli.Command) error {
	in := io.Reader(os.Stdin)
	if path := cmd.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return renderPayload(in, os.Stdout, int(cmd.Int("max-chars")))
}

// renderPayload prints the publish payload for persisted content read
// from r. maxChars <= 0 disables the length check.
func renderPayload(r io.Reader, w io.Writer, maxChars int) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	text := richtext.Payload(string(data))
	if _, err := fmt.Fprintln(w, text); err != nil {
		return err
	}
	if n := richtext.CharCount(text); maxChars > 0 && n > maxChars {
		return fmt.Errorf("payload is %d characters, limit is %d", n, maxChars)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "postcraft",
		Usage:   "Draft, preview and schedule styled posts",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, inbox watcher and scheduler",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:      "render",
				Usage:     "Print the publish payload for document content",
				ArgsUsage: "[file|-]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-chars",
						Usage: "Fail when the payload exceeds this many characters (0 disables)",
						Value: richtext.MaxPostChars,
					},
				},
				Action: render,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
