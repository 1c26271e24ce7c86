// Package nmd is a compatibility shim over minidfs matching the sentinel
// return conventions of the libhdfs native mini DFS surface: a nil handle on
// creation failure, zero/non-zero status codes, and a negative port on
// error. Callers porting native test code can keep their call sites; new
// code should use the minidfs package directly.
package nmd

import (
	"context"

	"github.com/seanp33/minidfs"
)

// Conf is the cluster configuration.
type Conf struct {
	// DoFormat requests formatting the cluster storage prior to startup.
	DoFormat bool
}

// Cluster is an opaque handle to a running cluster. Its lifecycle is
// Create, WaitClusterUp, Shutdown, Free - in that order, exactly once each.
type Cluster struct {
	inner *minidfs.Cluster
}

// Create builds and launches a cluster. It returns nil on any error; no
// diagnostic detail is reported beyond the underlying cluster's own logs.
// Options are passed through to minidfs.Create.
func Create(conf *Conf, opts ...minidfs.Option) *Cluster {
	if conf == nil {
		return nil
	}

	inner, err := minidfs.Create(context.Background(), minidfs.Config{
		Format: conf.DoFormat,
	}, opts...)
	if err != nil {
		return nil
	}
	return &Cluster{inner: inner}
}

// WaitClusterUp blocks until the cluster comes out of safe mode. It returns
// 0 on success and a non-zero code if the cluster failed to become ready.
func WaitClusterUp(cl *Cluster) int {
	if cl == nil || cl.inner == nil {
		return 1
	}
	if err := cl.inner.WaitUntilUp(context.Background()); err != nil {
		return 1
	}
	return 0
}

// Shutdown shuts the cluster down. It returns 0 on success and a non-zero
// code if teardown failed.
func Shutdown(cl *Cluster) int {
	if cl == nil || cl.inner == nil {
		return 1
	}
	if err := cl.inner.Shutdown(context.Background()); err != nil {
		return 1
	}
	return 0
}

// Free releases all resources associated with the handle. It performs no
// cluster-level shutdown. Call it exactly once per handle returned by
// Create, after Shutdown.
func Free(cl *Cluster) {
	if cl == nil || cl.inner == nil {
		return
	}
	cl.inner.Close()
	cl.inner = nil
}

// GetNameNodePort returns the port in use by the (non-HA) NameNode, or a
// negative value if no port was bound.
func GetNameNodePort(cl *Cluster) int {
	if cl == nil || cl.inner == nil {
		return -1
	}
	port, err := cl.inner.NameNodePort()
	if err != nil {
		return -1
	}
	return port
}
