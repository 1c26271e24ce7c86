// Package jmx provides a minimal client for the Hadoop JMX-over-HTTP
// servlet exposed by the NameNode web UI.
package jmx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// NameNodeInfoBean carries safe mode and cluster summary fields.
	NameNodeInfoBean = "Hadoop:service=NameNode,name=NameNodeInfo"

	// FSNamesystemStateBean carries live DataNode counts and FS state.
	FSNamesystemStateBean = "Hadoop:service=NameNode,name=FSNamesystemState"
)

// Client queries the /jmx servlet of a Hadoop daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the daemon HTTP address (host:port).
func NewClient(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 3 * time.Second},
	}
}

// Query fetches the beans matching the given query pattern.
func (c *Client) Query(ctx context.Context, qry string) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/jmx?qry=%s", c.baseURL, url.QueryEscape(qry))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jmx query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jmx query returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Beans []map[string]any `json:"beans"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse jmx response: %w", err)
	}

	return payload.Beans, nil
}

// QueryOne fetches a single bean, erroring if it is absent.
func (c *Client) QueryOne(ctx context.Context, qry string) (map[string]any, error) {
	beans, err := c.Query(ctx, qry)
	if err != nil {
		return nil, err
	}
	if len(beans) == 0 {
		return nil, fmt.Errorf("bean %s not found", qry)
	}
	return beans[0], nil
}

// NameNodeStatus summarizes the NameNode beans relevant to readiness.
type NameNodeStatus struct {
	// SafeMode is the raw safe mode description; empty when safe mode is off.
	SafeMode string

	// State is the FS state reported by the namesystem (e.g. "Operational").
	State string

	// LiveDataNodes is the number of live DataNodes (-1 if unknown).
	LiveDataNodes int
}

// InSafeMode returns true while the NameNode reports safe mode.
func (s *NameNodeStatus) InSafeMode() bool {
	return s.SafeMode != ""
}

// NameNodeStatus queries the NameNode info and namesystem beans.
func (c *Client) NameNodeStatus(ctx context.Context) (*NameNodeStatus, error) {
	info, err := c.QueryOne(ctx, NameNodeInfoBean)
	if err != nil {
		return nil, err
	}

	status := &NameNodeStatus{LiveDataNodes: -1}
	if v, ok := info["Safemode"].(string); ok {
		status.SafeMode = v
	}

	// The namesystem bean may lag the info bean during startup; its absence
	// is not an error.
	if state, err := c.QueryOne(ctx, FSNamesystemStateBean); err == nil {
		if v, ok := state["FSState"].(string); ok {
			status.State = v
		}
		if v, ok := state["NumLiveDataNodes"].(float64); ok {
			status.LiveDataNodes = int(v)
		}
	}

	return status, nil
}
