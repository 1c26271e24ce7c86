package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeFakeJava writes a script that plays the part of the cluster JVM: it
// reports a fixed RPC port through the details file and then idles.
// With ignoreTerm the script shrugs off SIGTERM so only SIGKILL ends it.
func writeFakeJava(t *testing.T, dir string, ignoreTerm bool) string {
	t.Helper()

	details := filepath.Join(dir, detailsFileName)
	var body string
	if ignoreTerm {
		body = fmt.Sprintf("#!/bin/sh\ntrap '' TERM\necho '{\"nnport\": 9999}' > %s\nwhile true; do sleep 1; done\n", details)
	} else {
		body = fmt.Sprintf("#!/bin/sh\necho '{\"nnport\": 9999}' > %s\nexec sleep 60\n", details)
	}

	script := filepath.Join(dir, "fake-java.sh")
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("failed to write fake java script: %v", err)
	}
	return script
}

func TestFreePort(t *testing.T) {
	port, err := freePort()
	if err != nil {
		t.Fatalf("freePort() error = %v", err)
	}
	if port <= 0 || port > 65535 {
		t.Errorf("freePort() = %d, out of range", port)
	}
}

func TestJVMOptions(t *testing.T) {
	l := NewJVM(
		WithJavaBin("/opt/java/bin/java"),
		WithHadoopHome("/opt/hadoop"),
		WithClasspath("a.jar:b.jar"),
		WithExtraArgs("-Xmx512m"),
		WithStartTimeout(time.Minute),
	)

	if l.javaBin != "/opt/java/bin/java" {
		t.Errorf("javaBin = %q", l.javaBin)
	}
	if l.hadoopHome != "/opt/hadoop" {
		t.Errorf("hadoopHome = %q", l.hadoopHome)
	}
	if l.classpath != "a.jar:b.jar" {
		t.Errorf("classpath = %q", l.classpath)
	}
	if len(l.extraArgs) != 1 || l.extraArgs[0] != "-Xmx512m" {
		t.Errorf("extraArgs = %v", l.extraArgs)
	}
	if l.startTimeout != time.Minute {
		t.Errorf("startTimeout = %v", l.startTimeout)
	}
}

func TestJVMResolveClasspathExplicit(t *testing.T) {
	l := NewJVM(WithClasspath("explicit.jar"))

	cp, err := l.resolveClasspath(context.Background())
	if err != nil {
		t.Fatalf("resolveClasspath() error = %v", err)
	}
	if cp != "explicit.jar" {
		t.Errorf("resolveClasspath() = %q, want explicit.jar", cp)
	}
}

func TestJVMResolveClasspathNoHadoopHome(t *testing.T) {
	l := NewJVM(WithHadoopHome(""))
	l.classpath = ""

	if _, err := l.resolveClasspath(context.Background()); err == nil {
		t.Error("resolveClasspath() expected error without HADOOP_HOME")
	}
}

func TestJVMStartBadJavaBin(t *testing.T) {
	l := NewJVM(
		WithJavaBin("/nonexistent/java"),
		WithClasspath("x.jar"),
	)

	_, err := l.Start(context.Background(), Spec{BaseDir: t.TempDir(), DataNodes: 1})
	if err == nil {
		t.Fatal("Start() expected error for missing java binary")
	}
}

func TestJVMStartDetectsEarlyExit(t *testing.T) {
	l := NewJVM(
		WithJavaBin("/bin/false"),
		WithClasspath("x.jar"),
		WithStartTimeout(10*time.Second),
	)

	start := time.Now()
	_, err := l.Start(context.Background(), Spec{BaseDir: t.TempDir(), DataNodes: 1})
	if err == nil {
		t.Fatal("Start() expected error when the JVM exits immediately")
	}
	if !strings.Contains(err.Error(), "exited before reporting ports") {
		t.Errorf("Start() error = %v, want early-exit error", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Start() took %v, want failure well before the start timeout", elapsed)
	}
}

func TestJVMStartTwice(t *testing.T) {
	dir := t.TempDir()
	l := NewJVM(
		WithJavaBin(writeFakeJava(t, dir, false)),
		WithClasspath("x.jar"),
		WithStartTimeout(10*time.Second),
	)

	ports, err := l.Start(context.Background(), Spec{BaseDir: dir, DataNodes: 1})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer l.Stop(context.Background())

	if ports.NameNodeRPC != 9999 {
		t.Errorf("NameNodeRPC = %d, want 9999", ports.NameNodeRPC)
	}
	if _, err := l.Start(context.Background(), Spec{BaseDir: dir, DataNodes: 1}); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestJVMStopTimeoutReapsProcess(t *testing.T) {
	dir := t.TempDir()
	l := NewJVM(
		WithJavaBin(writeFakeJava(t, dir, true)),
		WithClasspath("x.jar"),
		WithStartTimeout(10*time.Second),
	)

	before := runtime.NumGoroutine()

	if _, err := l.Start(context.Background(), Spec{BaseDir: dir, DataNodes: 1}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The script ignores SIGTERM, so Stop escalates to SIGKILL on the
	// cancelled context. The reaper goroutine must still wind down.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Stop(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Stop() error = %v, want context.Canceled", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("goroutines = %d after Stop, want at most %d", runtime.NumGoroutine(), before)
}

func TestJVMStopWithoutStart(t *testing.T) {
	l := NewJVM()
	if err := l.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
}

func TestDockerStartRequiresNameAndImage(t *testing.T) {
	d := NewDocker(DockerConfig{})

	if _, err := d.Start(context.Background(), Spec{}); err == nil {
		t.Error("Start() expected error without container name and image")
	}
}

func TestDockerStopWithoutStart(t *testing.T) {
	d := NewDocker(DockerConfig{Container: "c", Image: "i"})
	if err := d.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
}
