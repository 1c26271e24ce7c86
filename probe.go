package minidfs

import (
	"context"
	"fmt"

	"github.com/seanp33/minidfs/jmx"
)

// Prober observes the readiness of a running cluster. The default prober
// queries the NameNode JMX servlet.
type Prober interface {
	// Probe returns the current NameNode status. An error means the status
	// could not be observed at all, which is expected while the NameNode
	// HTTP server is still coming up.
	Probe(ctx context.Context) (*jmx.NameNodeStatus, error)
}

type jmxProber struct {
	client *jmx.Client
}

func newJMXProber(httpPort int) *jmxProber {
	return &jmxProber{
		client: jmx.NewClient(fmt.Sprintf("127.0.0.1:%d", httpPort)),
	}
}

func (p *jmxProber) Probe(ctx context.Context) (*jmx.NameNodeStatus, error) {
	return p.client.NameNodeStatus(ctx)
}
