package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/redscript/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script and print its reply",
	Example: `  redscript run incr-counter -k counter -a 5
  redscript run ./scripts/report.lua --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, _ := cmd.Flags().GetStringArray("key")
		argv, _ := cmd.Flags().GetStringArray("arg")
		jsonOut, _ := cmd.Flags().GetBool("json")

		env, err := cli.NewEnv(envOptions(cmd))
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printer := cli.NewPrinter(jsonOut)
		res, err := env.Runner.RunStrings(ctx, args[0], keys, argv)
		if err != nil {
			printer.Error(err)
			return errReported
		}
		return printer.Result(res)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayP("key", "k", nil, "Key passed in KEYS (repeatable)")
	runCmd.Flags().StringArrayP("arg", "a", nil, "Argument passed in ARGV (repeatable)")
	runCmd.Flags().Bool("json", false, "Always print JSON, even on a terminal")
}
