package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/redscript"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of redscript",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("redscript version %s\n", strings.TrimSpace(redscript.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
