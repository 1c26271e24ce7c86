package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanp33/minidfs/testutil"
)

func TestAnnounceLookup(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)
	ctx := context.Background()

	registry, err := NewRegistry(ctx, nc)
	require.NoError(t, err)

	info := Info{
		ID:               "ci",
		NameNodePort:     8020,
		NameNodeHTTPPort: 9870,
	}
	require.NoError(t, registry.Announce(ctx, info))

	found, err := registry.Lookup(ctx, "ci")
	require.NoError(t, err)

	assert.Equal(t, "ci", found.ID)
	assert.Equal(t, 8020, found.NameNodePort)
	assert.Equal(t, "127.0.0.1", found.Host, "host should default to loopback")
	assert.NotZero(t, found.PID, "PID should default to the announcing process")
	assert.Equal(t, "hdfs://127.0.0.1:8020", found.URI())
}

func TestAnnounceRequiresID(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)
	ctx := context.Background()

	registry, err := NewRegistry(ctx, nc)
	require.NoError(t, err)

	require.Error(t, registry.Announce(ctx, Info{}))
}

func TestLookupNotFound(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)
	ctx := context.Background()

	registry, err := NewRegistry(ctx, nc)
	require.NoError(t, err)

	_, err = registry.Lookup(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWaitForAnnouncement(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	registry, err := NewRegistry(ctx, nc)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		registry.Announce(ctx, Info{ID: "late", NameNodePort: 8020})
	}()

	info, err := registry.Wait(ctx, "late")
	require.NoError(t, err)
	assert.Equal(t, "late", info.ID)
}

func TestWaitReturnsExisting(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)
	ctx := context.Background()

	registry, err := NewRegistry(ctx, nc)
	require.NoError(t, err)

	require.NoError(t, registry.Announce(ctx, Info{ID: "early", NameNodePort: 1234}))

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	info, err := registry.Wait(waitCtx, "early")
	require.NoError(t, err)
	assert.Equal(t, 1234, info.NameNodePort)
}

func TestWaitCancelled(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)

	registry, err := NewRegistry(context.Background(), nc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = registry.Wait(ctx, "never")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDeregister(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)
	ctx := context.Background()

	registry, err := NewRegistry(ctx, nc)
	require.NoError(t, err)

	require.NoError(t, registry.Announce(ctx, Info{ID: "gone", NameNodePort: 8020}))
	require.NoError(t, registry.Deregister(ctx, "gone"))

	_, err = registry.Lookup(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)
	ctx := context.Background()

	registry, err := NewRegistry(ctx, nc)
	require.NoError(t, err)

	infos, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	require.NoError(t, registry.Announce(ctx, Info{ID: "a", NameNodePort: 1}))
	require.NoError(t, registry.Announce(ctx, Info{ID: "b", NameNodePort: 2}))

	infos, err = registry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}
