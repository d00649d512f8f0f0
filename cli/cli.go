package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stylec/cli/cmd"
	"github.com/ardnew/stylec/pkg"
)

// CLI is the top-level command-line interface for stylec.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Table   []string         `help:"Additional type table file(s) loaded over the built-in table" short:"t" type:"existingfile"`
	Version kong.VersionFlag `help:"Print version and exit"                                       short:"V"`

	Init cmd.Init `cmd:"" help:"Initialize configuration file"`
	List cmd.List `cmd:"" help:"List types and their properties" name:"types"`
	Repl cmd.Repl `cmd:"" help:"Resolve setters interactively"`

	Transform cmd.Transform `cmd:"" default:"withargs" help:"Transform style documents"`
}

// Run executes the stylec CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, defaultConfig(), args...)
}

func run(
	ctx context.Context,
	exit func(code int),
	defaults map[string]any,
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            strings.TrimSpace(pkg.Version),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that configuration loading and parse
	// errors are already logged with the requested settings.
	cli.Log.scan(args)

	conf, err := loadConfig(defaults, configFilePath, projectConfig)
	if err != nil {
		return err
	}

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Resolvers(conf),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithTypeTables(ctx, cli.Table)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
