package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/dMem/cmd/util"
	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/ValentinKolb/dMem/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = common.DefaultServerConfig()
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the dMem server",
		Long:    `Start the dMem server with the specified configuration. The configuration can be set via command line flags, a config file (--config) or environment variables. The format of the environment variables is DMEM_<flag> (e.g. DMEM_MAX_LINE_BYTES=1024)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	defaults := common.DefaultServerConfig()

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, defaults.Transport.Endpoint, cmdUtil.WrapString("The address on which the server will listen (e.g. 0.0.0.0:4000 for tcp, /tmp/dmem.sock for unix)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, defaults.TimeoutSecond, cmdUtil.WrapString("Idle timeout of a client session in seconds (0 = wait forever)"))

	key = "max-line-bytes"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.MaxLineBytes, cmdUtil.WrapString("Longest accepted request line in bytes. Also limits the size of LIST responses"))

	key = "max-alloc-bytes"
	ServeCmd.PersistentFlags().Uint64(key, defaults.MaxAllocBytes, cmdUtil.WrapString("Largest single buffer in bytes (0 = unlimited)"))

	key = "max-total-bytes"
	ServeCmd.PersistentFlags().Uint64(key, defaults.MaxTotalBytes, cmdUtil.WrapString("Upper limit for the sum of all buffers in bytes (0 = unlimited)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, defaults.MetricsEndpoint, cmdUtil.WrapString("Address of the prometheus metrics endpoint (e.g. localhost:9090, empty = disabled)"))

	key = "transport-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket write buffer (in KB, 0 = OS default)"))

	key = "transport-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket read buffer (in KB, 0 = OS default)"))

	key = "transport-tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, defaults.Transport.TCPNoDelay, cmdUtil.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "transport-tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPKeepAliveSec, cmdUtil.WrapString("The keepalive interval (in seconds, only for tcp)"))

	key = "transport-tcp-linger"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPLingerSec, cmdUtil.WrapString("The linger time (in seconds, only for tcp, < 0 = OS default)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, defaults.LogLevel, cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags, the config file and environment variables
// and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Transport.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Transport.MaxLineBytes = viper.GetInt("max-line-bytes")
	serveCmdConfig.Transport.WriteBufferSize = viper.GetInt("transport-write-buffer") * 1024
	serveCmdConfig.Transport.ReadBufferSize = viper.GetInt("transport-read-buffer") * 1024
	serveCmdConfig.Transport.TCPNoDelay = viper.GetBool("transport-tcp-nodelay")
	serveCmdConfig.Transport.TCPKeepAliveSec = viper.GetInt("transport-tcp-keepalive")
	serveCmdConfig.Transport.TCPLingerSec = viper.GetInt("transport-tcp-linger")
	serveCmdConfig.MaxAllocBytes = viper.GetUint64("max-alloc-bytes")
	serveCmdConfig.MaxTotalBytes = viper.GetUint64("max-total-bytes")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if serveCmdConfig.Transport.Endpoint == "" {
		return fmt.Errorf("no endpoint configured")
	}
	if serveCmdConfig.Transport.MaxLineBytes <= 0 {
		return fmt.Errorf("max-line-bytes must be positive (got %d)", serveCmdConfig.Transport.MaxLineBytes)
	}
	if serveCmdConfig.TimeoutSecond < 0 {
		return fmt.Errorf("timeout must not be negative (got %d)", serveCmdConfig.TimeoutSecond)
	}

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the dMem server and blocks until it is interrupted
func run(_ *cobra.Command, _ []string) error {
	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serv := server.NewRPCServer(serveCmdConfig, t)
	return serv.Serve(ctx)
}
