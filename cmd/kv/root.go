package kv

import (
	"github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStorage storage.Storage

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value store operations",
		PersistentPreRunE: setupKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(hsetCmd)
	KeyValueCommands.AddCommand(hgetCmd)
	KeyValueCommands.AddCommand(hgetallCmd)
	KeyValueCommands.AddCommand(hdelCmd)
	KeyValueCommands.AddCommand(hexistCmd)
}

// setupKVClient initializes the RPC storage client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the remote storage client
	rpcStorage, err = client.NewRPCStorage(
		*config,
		t,
		s,
	)

	return err
}
