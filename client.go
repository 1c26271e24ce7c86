package minidfs

import (
	"fmt"

	"github.com/colinmarc/hdfs/v2"
)

// Client returns an HDFS client connected to the cluster NameNode, for test
// code that wants to read and write files. The caller owns the client and
// must close it before shutting the cluster down.
func (c *Cluster) Client() (*hdfs.Client, error) {
	c.mu.RLock()
	state := c.state
	c.mu.RUnlock()

	if state.Terminal() {
		return nil, ErrClusterDown
	}

	port, err := c.NameNodePort()
	if err != nil {
		return nil, err
	}

	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: []string{fmt.Sprintf("127.0.0.1:%d", port)},
		User:      c.cfg.User,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NameNode: %w", err)
	}

	return client, nil
}
