package jmx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServlet(safemode string, liveNodes int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jmx" {
			http.NotFound(w, r)
			return
		}
		qry := r.URL.Query().Get("qry")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(qry, "NameNodeInfo"):
			fmt.Fprintf(w, `{"beans":[{"name":%q,"Safemode":%q}]}`, qry, safemode)
		case strings.Contains(qry, "FSNamesystemState"):
			fmt.Fprintf(w, `{"beans":[{"name":%q,"FSState":"Operational","NumLiveDataNodes":%d}]}`, qry, liveNodes)
		default:
			fmt.Fprint(w, `{"beans":[]}`)
		}
	}))
}

func TestQuery(t *testing.T) {
	srv := newTestServlet("", 2)
	defer srv.Close()

	client := NewClient(srv.Listener.Addr().String())
	beans, err := client.Query(context.Background(), NameNodeInfoBean)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(beans) != 1 {
		t.Fatalf("Query() returned %d beans, want 1", len(beans))
	}
}

func TestQueryOneMissingBean(t *testing.T) {
	srv := newTestServlet("", 0)
	defer srv.Close()

	client := NewClient(srv.Listener.Addr().String())
	_, err := client.QueryOne(context.Background(), "Hadoop:service=NameNode,name=Nope")
	if err == nil {
		t.Error("QueryOne() expected error for missing bean")
	}
}

func TestNameNodeStatusSafeModeOn(t *testing.T) {
	srv := newTestServlet("Safe mode is ON.", 0)
	defer srv.Close()

	client := NewClient(srv.Listener.Addr().String())
	status, err := client.NameNodeStatus(context.Background())
	if err != nil {
		t.Fatalf("NameNodeStatus() error = %v", err)
	}

	if !status.InSafeMode() {
		t.Error("InSafeMode() = false, want true")
	}
}

func TestNameNodeStatusSafeModeOff(t *testing.T) {
	srv := newTestServlet("", 3)
	defer srv.Close()

	client := NewClient(srv.Listener.Addr().String())
	status, err := client.NameNodeStatus(context.Background())
	if err != nil {
		t.Fatalf("NameNodeStatus() error = %v", err)
	}

	if status.InSafeMode() {
		t.Error("InSafeMode() = true, want false")
	}
	if status.LiveDataNodes != 3 {
		t.Errorf("LiveDataNodes = %d, want 3", status.LiveDataNodes)
	}
	if status.State != "Operational" {
		t.Errorf("State = %q, want Operational", status.State)
	}
}

func TestQueryServerDown(t *testing.T) {
	srv := newTestServlet("", 0)
	addr := srv.Listener.Addr().String()
	srv.Close()

	client := NewClient(addr)
	if _, err := client.Query(context.Background(), NameNodeInfoBean); err == nil {
		t.Error("Query() expected error for unreachable server")
	}
}

func TestQueryBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.Listener.Addr().String())
	if _, err := client.Query(context.Background(), NameNodeInfoBean); err == nil {
		t.Error("Query() expected error for 500 response")
	}
}
