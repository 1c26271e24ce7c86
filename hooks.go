package minidfs

import "context"

// Hooks defines callbacks for cluster lifecycle events. All methods are
// called synchronously from the lifecycle operation that triggered them -
// implementations should spawn goroutines if async behavior is needed.
type Hooks interface {
	// OnStarted is called after the cluster process was launched and its
	// ports are known, before it leaves safe mode.
	OnStarted(ctx context.Context, ports Ports) error

	// OnReady is called when the NameNode leaves safe mode.
	OnReady(ctx context.Context) error

	// OnShutdown is called after the cluster was torn down. err carries the
	// teardown failure, if any.
	OnShutdown(ctx context.Context, err error) error
}

// NoOpHooks is a default implementation of Hooks that does nothing.
type NoOpHooks struct{}

func (NoOpHooks) OnStarted(ctx context.Context, _ Ports) error  { return nil }
func (NoOpHooks) OnReady(ctx context.Context) error             { return nil }
func (NoOpHooks) OnShutdown(ctx context.Context, _ error) error { return nil }

var _ Hooks = NoOpHooks{}
