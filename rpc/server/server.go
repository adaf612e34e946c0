package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
)

var Logger = common.GetLogger("server")

// rpcServer serves the command protocol over a stream transport. Every
// incoming logical stream runs its own read-decode-dispatch-encode-write
// loop against the shared storage engine.
type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	storage    storage.Storage
}

// NewRPCServer creates a new RPC server on top of an already constructed
// storage engine.
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//		engine,
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	st storage.Storage,
) *rpcServer {
	common.InitLoggers(config.LogLevel)

	Logger.Info("created RPC server")
	Logger.Info(config.String())

	return &rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		storage:    st,
	}
}

// Serve starts the RPC server. It blocks until the transport's listener
// fails.
func (s *rpcServer) Serve() error {
	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics()
	}

	s.transport.RegisterHandler(s.handleStream)
	return s.transport.Listen(s.config)
}

// handleStream serves one logical stream until the client closes it or a
// frame fails to decode. Engine failures do not end the stream: they are
// answered with an error response and the loop continues.
func (s *rpcServer) handleStream(stream transport.IStream) {
	for {
		msg, err := stream.Recv()
		if err != nil {
			// Stream closed by the client or the connection is gone
			return
		}

		var req common.CommandRequest
		if err := s.serializer.DeserializeRequest(msg, &req); err != nil {
			Logger.Warn("failed to decode request, closing stream", "error", err)

			// Best effort: tell the client why before the stream dies
			resp := common.NewBadRequestResponse(fmt.Sprintf("failed to decode request: %v", err))
			if data, serr := s.serializer.SerializeResponse(resp); serr == nil {
				_ = stream.Send(data)
			}
			return
		}

		start := time.Now()
		resp := Dispatch(&req, s.storage)

		metrics.GetOrCreateCounter(fmt.Sprintf(`tkv_requests_total{cmd=%q,status="%d"}`, req.Cmd.String(), resp.Status)).Inc()
		metrics.GetOrCreateSummary(fmt.Sprintf(`tkv_request_duration_seconds{cmd=%q}`, req.Cmd.String())).UpdateDuration(start)

		data, err := s.serializer.SerializeResponse(resp)
		if err != nil {
			Logger.Error("failed to serialize response, closing stream", "error", err)
			return
		}

		if err := stream.Send(data); err != nil {
			Logger.Warn("failed to send response", "error", err)
			return
		}
	}
}

// serveMetrics exposes the collected metrics in Prometheus text format
func (s *rpcServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	Logger.Info("metrics endpoint listening", "endpoint", s.config.MetricsEndpoint)
	if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
		Logger.Error("metrics endpoint failed", "error", err)
	}
}
