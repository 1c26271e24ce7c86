// Package launcher provides launchers for starting external mini DFS
// cluster processes.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrAlreadyStarted indicates Start was called on a launcher whose cluster
// process is still running.
var ErrAlreadyStarted = errors.New("launcher already started")

// Spec describes the cluster a launcher should start.
type Spec struct {
	// Format requests formatting the storage directories before startup.
	Format bool

	// DataNodes is the number of DataNodes to start.
	DataNodes int

	// BaseDir is the directory for cluster storage and logs.
	BaseDir string

	// NameNodePort is the requested RPC port (0 = ephemeral).
	NameNodePort int

	// NameNodeHTTPPort is the requested HTTP port (0 = ephemeral).
	NameNodeHTTPPort int
}

// Ports reports the ports the launched NameNode bound.
type Ports struct {
	NameNodeRPC  int
	NameNodeHTTP int
}

// Launcher starts and stops an external cluster process. A launcher manages
// at most one cluster at a time.
type Launcher interface {
	// Start launches the cluster and returns the ports it bound. The
	// returned ports are valid until Stop.
	Start(ctx context.Context, spec Spec) (Ports, error)

	// Stop tears the cluster down.
	Stop(ctx context.Context) error
}

// freePort asks the kernel for an unused TCP port on the loopback interface.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to reserve port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
