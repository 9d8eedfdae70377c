package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/redscript/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "redscript",
	Short: "Run Lua scripts against Redis, loading each one once",
	Long: `redscript registers Lua scripts with SCRIPT LOAD on first use and runs them
by hash afterwards, resending the body when Redis has forgotten it.
An optional shared script is composed in front of every script, and errors
point back at the original file and line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errReported is returned by commands that already printed their error.
var errReported = errors.New("error already reported")

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a redscript.yaml configuration file")
	flags.String("redis", "", "Redis address (overrides config and REDSCRIPT_REDIS_ADDR)")
	flags.String("base", "", "Directory scripts are resolved against")
	flags.String("shared", "", "Shared script composed in front of every script")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
}

// envOptions collects the persistent flags.
func envOptions(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	redisAddr, _ := flags.GetString("redis")
	base, _ := flags.GetString("base")
	shared, _ := flags.GetString("shared")
	logLevel, _ := flags.GetString("log-level")

	return cli.Options{
		ConfigPath: configPath,
		RedisAddr:  redisAddr,
		Base:       base,
		Shared:     shared,
		LogLevel:   logLevel,
	}
}
