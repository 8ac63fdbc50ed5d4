package buf

import (
	"github.com/ValentinKolb/dMem/cmd/util"
	"github.com/ValentinKolb/dMem/rpc/client"
	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcClient *client.BufferClient

	// BufferCommands represents the buffer command group
	BufferCommands = &cobra.Command{
		Use:                "buf",
		Short:              "Perform buffer operations",
		PersistentPreRunE:  setupBufferClient,
		PersistentPostRunE: closeBufferClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the buffer command
	util.SetupRPCClientFlags(BufferCommands)
	BufferCommands.PersistentFlags().String("log-level", "warn", util.WrapString("LogLevel of the client (debug, info, warn, error)"))

	// Add subcommands
	BufferCommands.AddCommand(allocCmd)
	BufferCommands.AddCommand(writeCmd)
	BufferCommands.AddCommand(readCmd)
	BufferCommands.AddCommand(freeCmd)
	BufferCommands.AddCommand(listCmd)
	BufferCommands.AddCommand(perfTestCmd)
}

// setupBufferClient connects the buffer client
func setupBufferClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcClient, err = client.NewBufferClient(*util.GetClientConfig(), t)
	return err
}

// closeBufferClient closes the connection after a command finished
func closeBufferClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}
