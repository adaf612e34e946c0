package client_test

import (
	"testing"
	"time"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/lib/storage/memory"
	sttesting "github.com/ValentinKolb/tKV/lib/storage/testing"
	"github.com/ValentinKolb/tKV/rpc/client"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/server"
	"github.com/ValentinKolb/tKV/rpc/transport/tcp"
)

// TestRPCStorageConformance runs the engine conformance suite against a
// storage backed by a remote server. The RPC adapter must behave exactly
// like a local engine; the suite writes disjoint tables per subtest, so all
// factory calls may share one server.
func TestRPCStorageConformance(t *testing.T) {
	endpoint := "127.0.0.1:10386"

	engine := memory.New()

	s := server.NewRPCServer(
		common.ServerConfig{
			Engine:        "memory",
			TimeoutSecond: 10,
			LogLevel:      "error",
			Transport:     common.ServerTransportConfig{Endpoint: endpoint},
		},
		tcp.NewTCPServerTransport(),
		serializer.NewBinarySerializer(),
		engine,
	)
	go func() {
		_ = s.Serve()
	}()
	time.Sleep(100 * time.Millisecond)

	factory := func() (storage.Storage, error) {
		return client.NewRPCStorage(
			common.ClientConfig{
				TimeoutSecond: 10,
				Transport: common.ClientTransportConfig{
					Endpoints:              []string{endpoint},
					ConnectionsPerEndpoint: 2,
				},
			},
			tcp.NewTCPClientTransport(),
			serializer.NewBinarySerializer(),
		)
	}

	sttesting.RunStorageTests(t, "RPC", factory)
}
