package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/jimezsa/sportstx/internal/cmd"
	"github.com/jimezsa/sportstx/internal/config"
	"github.com/jimezsa/sportstx/internal/ui"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli := cmd.NewCLI()
	applyEnvDefaults(cli)
	versionString := buildVersion()

	parser, err := kong.New(cli,
		kong.Name("sportstx"),
		kong.Description("Professional sports transactions from prosportstransactions.com."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": versionString},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		ui.New(os.Stdout, os.Stderr, ui.NormalizeColorMode(cli.Color), false).Errorf("%v", err)
		return 1
	}

	userInterface := ui.New(os.Stdout, os.Stderr, ui.NormalizeColorMode(cli.Color), cli.JSON || cli.Plain)

	configDir, err := config.ConfigDir()
	if err != nil {
		userInterface.Errorf("%v", err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		userInterface.Errorf("%v", err)
		return 1
	}
	// config and version run even with a broken config file.
	if fetchesPages(kctx.Command()) {
		if err := cmd.ValidateConfig(cfg); err != nil {
			userInterface.Errorf("invalid configuration (see `sportstx config path`): %v", err)
			return 1
		}
	}

	runCtx := &cmd.Context{
		Out:        os.Stdout,
		Err:        os.Stderr,
		UI:         userInterface,
		Config:     cfg,
		ConfigDir:  configDir,
		Logger:     newLogger(cli.Verbose, userInterface.ColorEnabled),
		Verbose:    cli.Verbose,
		JSONOutput: cli.JSON,
		PlainText:  cli.Plain,
		Version:    versionString,
		ColorMode:  ui.NormalizeColorMode(cli.Color),
	}

	if err := kctx.Run(runCtx); err != nil {
		userInterface.Errorf("%v", err)
		return 1
	}
	return 0
}

func fetchesPages(command string) bool {
	switch strings.Fields(command + " ")[0] {
	case "config", "version":
		return false
	default:
		return true
	}
}

func newLogger(verbose, color bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !color}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// buildVersion appends the VCS revision recorded by the Go toolchain.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	v := version
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return fmt.Sprintf("%s (%s)", v, setting.Value[:7])
		}
	}
	return v
}

func applyEnvDefaults(cli *cmd.CLI) {
	if envBool("SPORTSTX_JSON") {
		cli.JSON = true
	}
	if envBool("SPORTSTX_VERBOSE") {
		cli.Verbose = true
	}
	if value := os.Getenv("SPORTSTX_COLOR"); value != "" {
		cli.Color = value
	}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
