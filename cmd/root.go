package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dMem/cmd/buf"
	"github.com/ValentinKolb/dMem/cmd/serve"
	"github.com/ValentinKolb/dMem/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dmem",
		Short: "named in-memory buffer service",
		Long: fmt.Sprintf(`dMem (v%s)

A network service that keeps named byte buffers in memory and exposes
them over a line-oriented text protocol (ALLOC, WRITE, READ, FREE, LIST, EXIT).`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dMem",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dMem v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(buf.BufferCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "config"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("optional config file (toml, yaml, json, ...) read before env variables"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
