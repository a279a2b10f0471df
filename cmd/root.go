package cmd

import (
	"fmt"
	"os"

	"github.com/lwalter/unisock/cmd/bench"
	"github.com/lwalter/unisock/cmd/send"
	"github.com/lwalter/unisock/cmd/serve"
	"github.com/lwalter/unisock/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "unisock",
		Short: "inter-process communication over Unix domain sockets",
		Long: fmt.Sprintf(`unisock (v%s)

A local IPC library and tool built on Unix domain sockets, with
blocking and cancellable connection modes behind one contract.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of unisock",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("unisock v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(send.SendCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupSocketFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
