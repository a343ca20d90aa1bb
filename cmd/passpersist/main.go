// Command passpersist serves management data to a net-snmp master over
// stdin/stdout using the pass_persist protocol. Data comes from a bbolt
// snapshot written by a collector process, from fixed records in the
// config file, or both.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/pflag"

	"github.com/golangsnmp/passpersist"
	"github.com/golangsnmp/passpersist/snapshot"
)

// Exit codes.
const (
	exitOK    = 0 // orderly termination (EOF, idle timeout, EXIT)
	exitUsage = 1 // bad flags or config
	exitServe = 2 // failure while serving
)

const usage = `passpersist - pass_persist agent for net-snmp

Serves a management subtree over stdin/stdout. Wire it into snmpd.conf:

  pass_persist .1.3.6.1.4.1.8072.2.255 /usr/local/bin/passpersist --config /etc/passpersist.toml

Options:
  --config PATH     TOML config file (snapshot path, idle_timeout, [static] records)
  --snapshot PATH   bbolt snapshot database (overrides config)
  --timeout DUR     idle timeout, e.g. 90s (overrides config)
  -v, --verbose     debug logging to stderr; repeat (-vv) for trace
  --version         print version and exit
  -h, --help        show this help
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("passpersist", pflag.ContinueOnError)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := flags.String("config", "", "TOML config file")
	snapshotPath := flags.String("snapshot", "", "bbolt snapshot database")
	timeout := flags.Duration("timeout", 0, "idle timeout")
	verbose := flags.CountP("verbose", "v", "increase log verbosity")
	showVersion := flags.Bool("version", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *showVersion {
		printVersion()
		return exitOK
	}

	var cfg fileConfig
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "passpersist: %v\n", err)
			return exitUsage
		}
	}
	opts, err := buildOptions(cfg, *snapshotPath, *timeout, setupLogger(*verbose))
	if err != nil {
		fmt.Fprintf(os.Stderr, "passpersist: %v\n", err)
		return exitUsage
	}

	if err := passpersist.Serve(context.Background(), opts...); err != nil {
		fmt.Fprintf(os.Stderr, "passpersist: %v\n", err)
		return exitServe
	}
	return exitOK
}

// buildOptions merges the config file and flags (flags win) into Serve
// options. At least one data source must come out of the merge.
func buildOptions(cfg fileConfig, snapshotFlag string, timeoutFlag time.Duration, logger *slog.Logger) ([]passpersist.Option, error) {
	snapshotPath := cfg.Snapshot
	if snapshotFlag != "" {
		snapshotPath = snapshotFlag
	}

	var providers []passpersist.Provider
	if len(cfg.Static) > 0 {
		p, err := staticProvider(cfg.Static)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if snapshotPath != "" {
		providers = append(providers, snapshot.Provider(snapshotPath))
	}
	if len(providers) == 0 {
		return nil, errors.New("no data source configured (set --snapshot or a [static] table)")
	}

	idle := passpersist.DefaultIdleTimeout
	if cfg.IdleTimeout.Duration > 0 {
		idle = cfg.IdleTimeout.Duration
	}
	if timeoutFlag > 0 {
		idle = timeoutFlag
	}

	opts := []passpersist.Option{
		passpersist.WithProvider(combine(providers)),
		passpersist.WithIdleTimeout(idle),
	}
	if logger != nil {
		opts = append(opts, passpersist.WithLogger(logger))
	}
	return opts, nil
}

// setupLogger logs to stderr; stdout is the protocol channel.
func setupLogger(verbose int) *slog.Logger {
	if verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if verbose >= 2 {
		level = passpersist.LevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("passpersist %s\n", version)
}
