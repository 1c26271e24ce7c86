// Package testutil provides testing utilities for minidfs.
package testutil

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
)

// FakeNameNode impersonates the observable surface of a NameNode: a TCP
// listener on the RPC port and an HTTP server answering the /jmx servlet.
// It starts in safe mode.
type FakeNameNode struct {
	rpcLn  net.Listener
	httpLn net.Listener
	server *http.Server

	mu            sync.Mutex
	safeMode      bool
	liveDataNodes int
}

// StartFakeNameNode starts a fake NameNode on ephemeral loopback ports.
func StartFakeNameNode(t *testing.T) *FakeNameNode {
	t.Helper()

	rpcLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen on RPC port: %v", err)
	}

	httpLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		rpcLn.Close()
		t.Fatalf("failed to listen on HTTP port: %v", err)
	}

	nn := &FakeNameNode{
		rpcLn:    rpcLn,
		httpLn:   httpLn,
		safeMode: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/jmx", nn.handleJMX)
	nn.server = &http.Server{Handler: mux}

	go nn.server.Serve(httpLn)
	go nn.acceptRPC()

	t.Cleanup(nn.Stop)
	return nn
}

// acceptRPC accepts and immediately closes RPC connections so the port
// looks bound without speaking the protocol.
func (nn *FakeNameNode) acceptRPC() {
	for {
		conn, err := nn.rpcLn.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}
}

func (nn *FakeNameNode) handleJMX(w http.ResponseWriter, r *http.Request) {
	nn.mu.Lock()
	safeMode := nn.safeMode
	live := nn.liveDataNodes
	nn.mu.Unlock()

	qry := r.URL.Query().Get("qry")

	var beans []map[string]any
	switch {
	case strings.Contains(qry, "NameNodeInfo"):
		safemodeText := ""
		if safeMode {
			safemodeText = "Safe mode is ON. The reported blocks 0 needs additional blocks to reach the threshold."
		}
		beans = append(beans, map[string]any{
			"name":     qry,
			"Safemode": safemodeText,
		})
	case strings.Contains(qry, "FSNamesystemState"):
		state := "safeMode"
		if !safeMode {
			state = "Operational"
		}
		beans = append(beans, map[string]any{
			"name":             qry,
			"FSState":          state,
			"NumLiveDataNodes": live,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"beans": beans})
}

// RPCPort returns the bound RPC port.
func (nn *FakeNameNode) RPCPort() int {
	return nn.rpcLn.Addr().(*net.TCPAddr).Port
}

// HTTPPort returns the bound HTTP port.
func (nn *FakeNameNode) HTTPPort() int {
	return nn.httpLn.Addr().(*net.TCPAddr).Port
}

// HTTPAddr returns the host:port of the JMX endpoint.
func (nn *FakeNameNode) HTTPAddr() string {
	return nn.httpLn.Addr().String()
}

// SetSafeMode toggles the reported safe mode state.
func (nn *FakeNameNode) SetSafeMode(on bool) {
	nn.mu.Lock()
	defer nn.mu.Unlock()
	nn.safeMode = on
}

// SetLiveDataNodes sets the reported live DataNode count.
func (nn *FakeNameNode) SetLiveDataNodes(n int) {
	nn.mu.Lock()
	defer nn.mu.Unlock()
	nn.liveDataNodes = n
}

// Stop shuts the fake NameNode down. Safe to call more than once.
func (nn *FakeNameNode) Stop() {
	nn.rpcLn.Close()
	nn.server.Close()
}
