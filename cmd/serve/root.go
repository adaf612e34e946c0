package serve

import (
	"fmt"
	"strings"

	cmdUtil "github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/lib/storage/badgerdb"
	"github.com/ValentinKolb/tKV/lib/storage/memory"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/server"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/ValentinKolb/tKV/rpc/transport/tcp"
	"github.com/ValentinKolb/tKV/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the tKV server",
		Long:    `Start the tKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is TKV_<flag> (e.g. TKV_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "engine"
	ServeCmd.PersistentFlags().String(key, "memory", cmdUtil.WrapString("Storage engine backing the server. One of: memory (volatile, fastest), badger (durable, on-disk)"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("Directory the durable engine stores its data in (badger only)"))

	key = "sync-writes"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Flush every write to disk before acknowledging it (badger only)"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address the server listens on (host:port for tcp, a socket path for unix)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Per-frame read/write timeout in seconds, 0 disables deadlines"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional HTTP address exposing Prometheus metrics (e.g. 127.0.0.1:9100). Empty disables the endpoint"))

	key = "tls-cert"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Path to the server certificate. Setting cert and key enables TLS"))

	key = "tls-key"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Path to the server private key"))

	key = "tls-ca"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Path to the CA certificate used to verify client certificates. Setting this enforces mutual TLS"))
}

// processConfig reads the configuration from the command line flags and
// environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Engine = viper.GetString("engine")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.SyncWrites = viper.GetBool("sync-writes")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport.Endpoint = viper.GetString("endpoint")

	serveCmdConfig.TLS = common.TLSConf{
		Enabled:  viper.GetString("tls-cert") != "",
		CertFile: viper.GetString("tls-cert"),
		KeyFile:  viper.GetString("tls-key"),
		CAFile:   viper.GetString("tls-ca"),
	}
	if serveCmdConfig.TLS.Enabled && serveCmdConfig.TLS.KeyFile == "" {
		return fmt.Errorf("tls-key is required when tls-cert is set")
	}

	return nil
}

// run starts the tKV server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "tcp":
		t = tcp.NewTCPServerTransport()
	case "unix":
		t = unix.NewUnixServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	// create the storage engine
	var engine storage.Storage
	switch serveCmdConfig.Engine {
	case "memory":
		engine = memory.New()
	case "badger":
		var err error
		engine, err = badgerdb.New(badgerdb.Options{
			Dir:        serveCmdConfig.DataDir,
			SyncWrites: serveCmdConfig.SyncWrites,
			Logger:     common.GetLogger("badger"),
		})
		if err != nil {
			return fmt.Errorf("failed to open storage engine: %w", err)
		}
	default:
		return fmt.Errorf("invalid engine %s (expected memory or badger)", serveCmdConfig.Engine)
	}
	defer engine.Close()

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
		engine,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
