package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/sitekeeper/internal/config"
	foundation "git.home.luguber.info/inful/sitekeeper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekeeper/internal/version"
)

// EnvLogLevel selects the log level when --verbose is not given.
const EnvLogLevel = "SITEKEEPER_LOG_LEVEL"

// Global is shared state bound into every command.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
	Clock  clockwork.Clock
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitekeeper.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Index   IndexCmd   `cmd:"" help:"Rebuild the post index from the posts directory"`
	Sitemap SitemapCmd `cmd:"" help:"Generate the XML sitemap from the post index"`
	All     AllCmd     `cmd:"" help:"Rebuild the index, then the sitemap"`
	Inspect InspectCmd `cmd:"" help:"Show how a post's sort date is resolved"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Regenerate the index and sitemap whenever posts change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := parseLogLevel(c.Verbose)
	g.Logger = slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// parseLogLevel maps --verbose and SITEKEEPER_LOG_LEVEL to a slog level.
// The flag wins over the environment.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Execute parses args, runs the selected command and returns the process
// exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	g := &Global{
		Logger: slog.Default(),
		Stdout: stdout,
		Stderr: stderr,
		Clock:  clockwork.NewRealClock(),
	}
	return execute(ctx, g, args)
}

func execute(ctx context.Context, g *Global, args []string) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("sitekeeper"),
		kong.Description("Keeps a static blog's post index and sitemap current."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Writers(g.Stdout, g.Stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Bind(g),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return foundation.NewCLIErrorAdapter(false, g.Logger).WithOutput(g.Stderr).
			Report(foundation.WrapError(err, foundation.CategoryInternal, "failed to build command line parser").Build())
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help or --version already printed and asked to exit.
		return exitCode
	}
	if err != nil {
		return foundation.NewCLIErrorAdapter(false, g.Logger).WithOutput(g.Stderr).
			Report(foundation.WrapError(err, foundation.CategoryValidation, "invalid arguments").Build())
	}

	adapter := foundation.NewCLIErrorAdapter(cli.Verbose, g.Logger).WithOutput(g.Stderr)
	return adapter.Report(kctx.Run(g, &cli))
}

// loadConfig loads the configuration named by the global --config flag.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}
