package minidfs

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStarting, "STARTING"},
		{StateUp, "UP"},
		{StateDown, "DOWN"},
		{StateClosed, "CLOSED"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	if StateStarting.Terminal() || StateUp.Terminal() {
		t.Error("starting/up must not be terminal")
	}
	if !StateDown.Terminal() || !StateClosed.Terminal() {
		t.Error("down/closed must be terminal")
	}
}

func TestStatusMarshalJSON(t *testing.T) {
	status := Status{
		State:         StateUp,
		NameNodePort:  8020,
		DataNodes:     1,
		LiveDataNodes: 1,
		Uptime:        1500 * time.Millisecond,
	}

	data, err := json.Marshal(status)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded["state"] != "UP" {
		t.Errorf("state = %v, want UP", decoded["state"])
	}
	if decoded["uptimeMs"] != float64(1500) {
		t.Errorf("uptimeMs = %v, want 1500", decoded["uptimeMs"])
	}
	if decoded["nameNodePort"] != float64(8020) {
		t.Errorf("nameNodePort = %v, want 8020", decoded["nameNodePort"])
	}
}
