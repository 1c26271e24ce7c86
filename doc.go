// Package minidfs launches disposable single-NameNode HDFS mini clusters
// for integration testing in Go.
//
// The cluster itself runs outside the Go process - by default as a JVM
// hosting Hadoop's MiniDFSClusterManager test tool - and this package only
// drives its lifecycle: launch, wait for the NameNode to leave safe mode,
// tear down, and release resources. It deliberately implements none of the
// cluster's behavior and performs no retries; failures surface raw so the
// caller decides.
//
// # Quick Start
//
//	func TestWithHDFS(t *testing.T) {
//	    ctx := context.Background()
//
//	    cluster, err := minidfs.Create(ctx, minidfs.Config{Format: true})
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer cluster.Close()
//	    defer cluster.Shutdown(ctx)
//
//	    if err := cluster.WaitUntilUp(ctx); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    client, err := cluster.Client()
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer client.Close()
//
//	    // Exercise the filesystem...
//	}
//
// # Lifecycle
//
// A handle moves through four states:
//
//   - STARTING: the external process was launched and the ports are known
//   - UP: the NameNode reported leaving safe mode
//   - DOWN: the process was torn down
//   - CLOSED: harness resources were released
//
// The handle expects a single owner driving Create, WaitUntilUp, Shutdown,
// and Close sequentially, in that order. Shutdown is safe on a cluster that
// never became ready.
//
// # Sub-packages
//
// The following sub-packages provide optional functionality:
//
//   - launcher: JVM and Docker launchers for the external cluster process
//   - jmx: the NameNode JMX-over-HTTP client used for readiness probing
//   - nmd: a sentinel-style shim matching the libhdfs native mini DFS surface
//   - discovery: sharing one running cluster between test processes via NATS
//   - testutil: a fake NameNode and embedded NATS server for tests
package minidfs
