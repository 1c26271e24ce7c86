package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// miniDFSManagerClass is the Hadoop test tool that hosts a MiniDFSCluster
	// in a JVM and writes the bound ports to a details file.
	miniDFSManagerClass = "org.apache.hadoop.test.MiniDFSClusterManager"

	detailsFileName = "minidfs-details.json"
	jvmLogFileName  = "minidfs-jvm.log"
)

// JVM launches a MiniDFSCluster inside a Java process using Hadoop's
// MiniDFSClusterManager test tool. The Hadoop installation is resolved from
// HADOOP_HOME unless a classpath is given explicitly.
type JVM struct {
	javaBin      string
	hadoopHome   string
	classpath    string
	extraArgs    []string
	startTimeout time.Duration
	logger       *slog.Logger

	cmd         *exec.Cmd
	waitCh      chan error
	logFile     *os.File
	detailsPath string
}

// JVMOption configures a JVM launcher.
type JVMOption func(*JVM)

// NewJVM creates a new JVM launcher.
func NewJVM(opts ...JVMOption) *JVM {
	l := &JVM{
		javaBin:      "java",
		hadoopHome:   os.Getenv("HADOOP_HOME"),
		startTimeout: 2 * time.Minute,
		logger:       slog.Default().With("component", "jvm-launcher"),
	}
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		l.javaBin = filepath.Join(javaHome, "bin", "java")
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithJavaBin sets the java binary to execute.
func WithJavaBin(path string) JVMOption {
	return func(l *JVM) {
		l.javaBin = path
	}
}

// WithHadoopHome sets the Hadoop installation directory.
func WithHadoopHome(dir string) JVMOption {
	return func(l *JVM) {
		l.hadoopHome = dir
	}
}

// WithClasspath sets an explicit classpath, skipping HADOOP_HOME resolution.
func WithClasspath(cp string) JVMOption {
	return func(l *JVM) {
		l.classpath = cp
	}
}

// WithExtraArgs appends extra JVM arguments.
func WithExtraArgs(args ...string) JVMOption {
	return func(l *JVM) {
		l.extraArgs = append(l.extraArgs, args...)
	}
}

// WithStartTimeout sets how long Start waits for the cluster to report its
// bound ports.
func WithStartTimeout(d time.Duration) JVMOption {
	return func(l *JVM) {
		l.startTimeout = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) JVMOption {
	return func(l *JVM) {
		l.logger = logger
	}
}

// Start launches the JVM hosting the cluster and blocks until the manager
// tool writes its details file with the bound NameNode RPC port.
func (l *JVM) Start(ctx context.Context, spec Spec) (Ports, error) {
	if l.cmd != nil {
		return Ports{}, ErrAlreadyStarted
	}

	cp, err := l.resolveClasspath(ctx)
	if err != nil {
		return Ports{}, err
	}

	httpPort := spec.NameNodeHTTPPort
	if httpPort == 0 {
		// The manager tool only reports the RPC port back, so the HTTP
		// port has to be pinned up front to stay observable.
		httpPort, err = freePort()
		if err != nil {
			return Ports{}, err
		}
	}

	l.detailsPath = filepath.Join(spec.BaseDir, detailsFileName)

	args := []string{
		"-cp", cp,
		fmt.Sprintf("-Dtest.build.data=%s", spec.BaseDir),
	}
	args = append(args, l.extraArgs...)
	args = append(args,
		miniDFSManagerClass,
		"-datanodes", strconv.Itoa(spec.DataNodes),
		"-nnport", strconv.Itoa(spec.NameNodePort),
		"-writeDetails", l.detailsPath,
		"-D", fmt.Sprintf("dfs.namenode.http-address=127.0.0.1:%d", httpPort),
	)
	if spec.Format {
		args = append(args, "-format")
	}

	logPath := filepath.Join(spec.BaseDir, jvmLogFileName)
	logFile, err := os.Create(logPath)
	if err != nil {
		return Ports{}, fmt.Errorf("failed to create JVM log file: %w", err)
	}

	cmd := exec.Command(l.javaBin, args...)
	cmd.Dir = spec.BaseDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	l.logger.Info("launching cluster JVM", "java", l.javaBin, "datanodes", spec.DataNodes, "format", spec.Format)

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return Ports{}, fmt.Errorf("failed to start JVM: %w", err)
	}

	l.cmd = cmd
	l.logFile = logFile

	// Reap the process as soon as it exits so a JVM that dies during
	// startup is detected immediately instead of after the full timeout.
	l.waitCh = make(chan error, 1)
	go func() {
		l.waitCh <- cmd.Wait()
	}()

	rpcPort, err := l.waitForDetails(ctx)
	if err != nil {
		l.Stop(context.Background())
		return Ports{}, err
	}

	l.logger.Info("cluster JVM up", "nnport", rpcPort, "httpport", httpPort)
	return Ports{NameNodeRPC: rpcPort, NameNodeHTTP: httpPort}, nil
}

// resolveClasspath returns the explicit classpath or asks the hadoop
// launcher script for the installation's classpath.
func (l *JVM) resolveClasspath(ctx context.Context) (string, error) {
	if l.classpath != "" {
		return l.classpath, nil
	}
	if l.hadoopHome == "" {
		return "", fmt.Errorf("no classpath configured and HADOOP_HOME not set")
	}

	hadoopBin := filepath.Join(l.hadoopHome, "bin", "hadoop")
	out, err := exec.CommandContext(ctx, hadoopBin, "classpath", "--glob").Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve hadoop classpath: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// waitForDetails polls for the details file the manager tool writes once the
// cluster is constructed, and parses the bound RPC port out of it.
func (l *JVM) waitForDetails(ctx context.Context) (int, error) {
	deadline := time.Now().Add(l.startTimeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-l.waitCh:
			close(l.waitCh)
			return 0, fmt.Errorf("cluster JVM exited before reporting ports (see %s)", l.logFile.Name())
		case <-ticker.C:
			data, err := os.ReadFile(l.detailsPath)
			if err != nil {
				continue
			}

			var details struct {
				NNPort int `json:"nnport"`
			}
			if err := json.Unmarshal(data, &details); err != nil {
				// Partially written file, try again on the next tick.
				continue
			}
			if details.NNPort > 0 {
				return details.NNPort, nil
			}
		}
	}

	return 0, fmt.Errorf("cluster JVM did not report ports within %v", l.startTimeout)
}

// Stop terminates the JVM, escalating from SIGTERM to SIGKILL. The process
// is reaped by the goroutine Start spawned; Stop only waits on its result.
func (l *JVM) Stop(ctx context.Context) error {
	cmd := l.cmd
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	waitCh := l.waitCh
	defer func() {
		if l.logFile != nil {
			l.logFile.Close()
			l.logFile = nil
		}
		l.cmd = nil
		l.waitCh = nil
	}()

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		cmd.Process.Kill()
	}

	select {
	case <-waitCh:
		return nil
	case <-ctx.Done():
		cmd.Process.Kill()
		return ctx.Err()
	case <-time.After(10 * time.Second):
		cmd.Process.Kill()
		return nil
	}
}

var _ Launcher = (*JVM)(nil)
