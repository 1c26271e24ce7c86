package minidfs

import "errors"

// Cluster lifecycle errors.
var (
	// ErrClusterDown indicates the cluster was shut down and can no longer
	// serve requests.
	ErrClusterDown = errors.New("cluster is down")

	// ErrStartupTimeout indicates the NameNode did not leave safe mode within
	// the configured startup timeout.
	ErrStartupTimeout = errors.New("cluster failed to leave safe mode before timeout")

	// ErrNoNameNodePort indicates no NameNode port was ever bound, typically
	// because the launch failed before the NameNode came up.
	ErrNoNameNodePort = errors.New("no NameNode port bound")

	// ErrShutdownFailed indicates the external cluster process could not be
	// torn down cleanly.
	ErrShutdownFailed = errors.New("cluster shutdown failed")

	// ErrClosed indicates the handle's resources were already released.
	ErrClosed = errors.New("cluster handle closed")
)
