package minidfs

import (
	"encoding/json"
	"time"
)

// Status represents the current status of a cluster handle.
type Status struct {
	// State is the lifecycle state of the cluster.
	State State `json:"state"`

	// NameNodePort is the bound NameNode RPC port (0 if not bound).
	NameNodePort int `json:"nameNodePort"`

	// NameNodeHTTPPort is the bound NameNode HTTP port (0 if not bound).
	NameNodeHTTPPort int `json:"nameNodeHttpPort"`

	// DataNodes is the configured number of DataNodes.
	DataNodes int `json:"dataNodes"`

	// LiveDataNodes is the number of DataNodes the NameNode last reported
	// live (-1 if unknown).
	LiveDataNodes int `json:"liveDataNodes"`

	// SafeMode indicates whether the NameNode last reported being in safe
	// mode. Meaningful only while the cluster is starting or up.
	SafeMode bool `json:"safeMode"`

	// Uptime is how long ago the cluster became ready (zero if never ready).
	Uptime time.Duration `json:"uptime"`
}

// IsUp returns true if the cluster is ready to serve.
func (s *Status) IsUp() bool {
	return s.State.IsUp()
}

// String returns a human-readable string representation of the status.
func (s *Status) String() string {
	return s.State.String()
}

// statusJSON is used for custom JSON marshaling.
type statusJSON struct {
	State            string `json:"state"`
	NameNodePort     int    `json:"nameNodePort"`
	NameNodeHTTPPort int    `json:"nameNodeHttpPort"`
	DataNodes        int    `json:"dataNodes"`
	LiveDataNodes    int    `json:"liveDataNodes"`
	SafeMode         bool   `json:"safeMode"`
	UptimeMs         int64  `json:"uptimeMs"`
}

// MarshalJSON implements json.Marshaler to serialize State as string and
// Uptime as milliseconds.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusJSON{
		State:            s.State.String(),
		NameNodePort:     s.NameNodePort,
		NameNodeHTTPPort: s.NameNodeHTTPPort,
		DataNodes:        s.DataNodes,
		LiveDataNodes:    s.LiveDataNodes,
		SafeMode:         s.SafeMode,
		UptimeMs:         s.Uptime.Milliseconds(),
	})
}
