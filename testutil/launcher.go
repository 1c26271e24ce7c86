package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/seanp33/minidfs/launcher"
)

// StubLauncher implements launcher.Launcher against a FakeNameNode instead
// of an external process.
type StubLauncher struct {
	nn *FakeNameNode

	// FailStart makes Start return an error without binding anything.
	FailStart bool

	// FailStop makes Stop return an error after stopping the fake NameNode.
	FailStop bool

	// SafeModeFor keeps the fake NameNode in safe mode for this long after
	// Start. Zero leaves safe mode state untouched.
	SafeModeFor time.Duration

	mu      sync.Mutex
	started bool
	stopped bool

	// LastSpec records the spec passed to Start.
	LastSpec launcher.Spec
}

// NewStubLauncher creates a stub launcher for the given fake NameNode.
func NewStubLauncher(nn *FakeNameNode) *StubLauncher {
	return &StubLauncher{nn: nn}
}

func (s *StubLauncher) Start(ctx context.Context, spec launcher.Spec) (launcher.Ports, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailStart {
		return launcher.Ports{}, errors.New("stub launch failure")
	}
	if s.started {
		return launcher.Ports{}, launcher.ErrAlreadyStarted
	}
	s.started = true
	s.LastSpec = spec

	if s.SafeModeFor > 0 {
		nn := s.nn
		time.AfterFunc(s.SafeModeFor, func() {
			nn.SetSafeMode(false)
		})
	}

	return launcher.Ports{
		NameNodeRPC:  s.nn.RPCPort(),
		NameNodeHTTP: s.nn.HTTPPort(),
	}, nil
}

func (s *StubLauncher) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.nn.Stop()
	if s.FailStop {
		return errors.New("stub stop failure")
	}
	return nil
}

// Stopped reports whether Stop was called.
func (s *StubLauncher) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

var _ launcher.Launcher = (*StubLauncher)(nil)
