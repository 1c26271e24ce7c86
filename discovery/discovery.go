// Package discovery shares running mini DFS clusters between processes via
// NATS JetStream KV. The process owning a cluster announces its endpoints
// under a cluster ID; other processes look the entry up instead of paying
// for a cluster launch of their own.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const bucketName = "minidfs_clusters"

// ErrNotFound indicates no cluster is announced under the given ID.
var ErrNotFound = errors.New("cluster not announced")

// Info describes an announced cluster.
type Info struct {
	ID               string    `json:"id"`
	Host             string    `json:"host"`
	NameNodePort     int       `json:"nameNodePort"`
	NameNodeHTTPPort int       `json:"nameNodeHttpPort"`
	PID              int       `json:"pid"`
	StartedAt        time.Time `json:"startedAt"`
}

// URI returns the hdfs:// URI of the announced cluster.
func (i *Info) URI() string {
	return fmt.Sprintf("hdfs://%s:%d", i.Host, i.NameNodePort)
}

// Registry stores cluster announcements in a JetStream KV bucket.
type Registry struct {
	kv     jetstream.KeyValue
	logger *slog.Logger
}

// NewRegistry opens the cluster registry on the given NATS connection,
// creating the KV bucket if needed.
func NewRegistry(ctx context.Context, nc *nats.Conn) (*Registry, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucketName,
		Description: "Announced mini DFS cluster endpoints",
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create KV bucket: %w", err)
	}

	return &Registry{
		kv:     kv,
		logger: slog.Default().With("component", "discovery"),
	}, nil
}

// Announce publishes the cluster endpoints under info.ID. Host and PID
// default to the loopback address and the current process.
func (r *Registry) Announce(ctx context.Context, info Info) error {
	if info.ID == "" {
		return fmt.Errorf("cluster ID is required")
	}
	if info.Host == "" {
		info.Host = "127.0.0.1"
	}
	if info.PID == 0 {
		info.PID = os.Getpid()
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now()
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal cluster info: %w", err)
	}

	if _, err := r.kv.Put(ctx, info.ID, data); err != nil {
		return fmt.Errorf("failed to announce cluster: %w", err)
	}

	r.logger.Info("cluster announced", "id", info.ID, "nnport", info.NameNodePort)
	return nil
}

// Lookup returns the announced cluster with the given ID.
func (r *Registry) Lookup(ctx context.Context, id string) (*Info, error) {
	entry, err := r.kv.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var info Info
	if err := json.Unmarshal(entry.Value(), &info); err != nil {
		return nil, fmt.Errorf("failed to parse cluster info: %w", err)
	}
	return &info, nil
}

// Wait blocks until a cluster is announced under the given ID or ctx is
// cancelled.
func (r *Registry) Wait(ctx context.Context, id string) (*Info, error) {
	// Fast path: already announced.
	if info, err := r.Lookup(ctx, id); err == nil {
		return info, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	watcher, err := r.kv.Watch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to watch for cluster: %w", err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case entry := <-watcher.Updates():
			if entry == nil || entry.Operation() != jetstream.KeyValuePut {
				continue
			}
			var info Info
			if err := json.Unmarshal(entry.Value(), &info); err != nil {
				return nil, fmt.Errorf("failed to parse cluster info: %w", err)
			}
			return &info, nil
		}
	}
}

// Deregister removes the announcement for the given cluster ID.
func (r *Registry) Deregister(ctx context.Context, id string) error {
	if err := r.kv.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to deregister cluster: %w", err)
	}
	r.logger.Info("cluster deregistered", "id", id)
	return nil
}

// List returns all announced clusters.
func (r *Registry) List(ctx context.Context) ([]Info, error) {
	keys, err := r.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, err
	}

	infos := make([]Info, 0, len(keys))
	for _, key := range keys {
		info, err := r.Lookup(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}
