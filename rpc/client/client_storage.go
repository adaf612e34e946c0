package client

import (
	"fmt"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
)

// NewRPCStorage creates a storage.Storage implementation backed by a remote
// tKV server. Every operation runs on its own logical stream, so the
// returned engine is safe for unbounded concurrent use, just like a local
// one.
func NewRPCStorage(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (storage.Storage, error) {
	c, err := NewRPCClient(config, transport, serializer)
	if err != nil {
		return nil, err
	}
	return &rpcStorage{client: c}, nil
}

type rpcStorage struct {
	client *RPCClient
}

// invoke runs one command on a fresh stream. Opening a stream costs no
// network round trip, so this keeps concurrent operations fully
// independent without a stream pool.
func (s *rpcStorage) invoke(req *common.CommandRequest) (*common.CommandResponse, error) {
	stream, err := s.client.OpenStream()
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	resp, err := stream.Execute(req)
	if err != nil {
		return nil, err
	}

	// Absence is reported via 404, anything else non-2xx is a real error
	if !resp.Ok() && resp.Status != common.StatusNotFound {
		return nil, fmt.Errorf("server error (status %d): %s", resp.Status, resp.Message)
	}
	return resp, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the storage package in interface.go)
// --------------------------------------------------------------------------

func (s *rpcStorage) Get(table, key string) (storage.Value, bool, error) {
	resp, err := s.invoke(common.NewHGet(table, key))
	if err != nil {
		return storage.Value{}, false, err
	}
	if resp.Status == common.StatusNotFound || len(resp.Values) == 0 {
		return storage.Value{}, false, nil
	}
	return resp.Values[0], true, nil
}

func (s *rpcStorage) Set(table, key string, value storage.Value) (storage.Value, bool, error) {
	resp, err := s.invoke(common.NewHSet(table, key, value))
	if err != nil {
		return storage.Value{}, false, err
	}
	if len(resp.Values) == 0 {
		return storage.Value{}, false, nil
	}
	return resp.Values[0], true, nil
}

func (s *rpcStorage) Contains(table, key string) (bool, error) {
	resp, err := s.invoke(common.NewHExist(table, key))
	if err != nil {
		return false, err
	}
	if len(resp.Values) != 1 {
		return false, fmt.Errorf("malformed HEXIST response: %d values", len(resp.Values))
	}
	found, ok := resp.Values[0].AsBool()
	if !ok {
		return false, fmt.Errorf("malformed HEXIST response: expected bool, got %s", resp.Values[0].Kind())
	}
	return found, nil
}

func (s *rpcStorage) Del(table, key string) (storage.Value, bool, error) {
	resp, err := s.invoke(common.NewHDel(table, key))
	if err != nil {
		return storage.Value{}, false, err
	}
	if len(resp.Values) == 0 {
		return storage.Value{}, false, nil
	}
	return resp.Values[0], true, nil
}

func (s *rpcStorage) GetAll(table string) ([]storage.Kvpair, error) {
	resp, err := s.invoke(common.NewHGetAll(table))
	if err != nil {
		return nil, err
	}
	pairs, err := common.UnflattenPairs(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("malformed HGETALL response: %w", err)
	}
	return pairs, nil
}

// GetIter fetches the table in one round trip and iterates the result
// locally. The per-pair laziness of a local engine cannot be preserved
// across the wire without streaming frames per pair, which the scan
// protocol does not do.
func (s *rpcStorage) GetIter(table string) (storage.Iterator, error) {
	pairs, err := s.GetAll(table)
	if err != nil {
		return nil, err
	}
	return storage.NewIter[storage.Kvpair](
		&pairSource{pairs: pairs},
		func(p storage.Kvpair) storage.Kvpair { return p },
	), nil
}

func (s *rpcStorage) Close() error {
	return s.client.Close()
}

// pairSource walks a fetched slice of pairs
type pairSource struct {
	pairs []storage.Kvpair
	next  int
}

func (s *pairSource) Next() (storage.Kvpair, bool) {
	if s.next >= len(s.pairs) {
		return storage.Kvpair{}, false
	}
	pair := s.pairs[s.next]
	s.next++
	return pair, true
}
