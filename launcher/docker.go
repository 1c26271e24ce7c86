package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

const (
	// Container-side ports of a stock Hadoop 3 image.
	containerRPCPort  = 8020
	containerHTTPPort = 9870
)

// DockerConfig configures a Docker launcher.
type DockerConfig struct {
	// Container is the container name. Required.
	Container string

	// Image is the Hadoop image to run. Required.
	Image string

	// Env is passed through to the container.
	Env map[string]string

	// Network is an optional docker network to attach to.
	Network string
}

// Docker launches the cluster as a Hadoop container via the docker CLI.
type Docker struct {
	config DockerConfig
	logger *slog.Logger

	started bool
}

// NewDocker creates a new Docker launcher.
func NewDocker(config DockerConfig) *Docker {
	return &Docker{
		config: config,
		logger: slog.Default().With("component", "docker-launcher", "container", config.Container),
	}
}

// Start runs the container with the NameNode ports published to the host.
func (d *Docker) Start(ctx context.Context, spec Spec) (Ports, error) {
	if d.started {
		return Ports{}, ErrAlreadyStarted
	}
	if d.config.Container == "" || d.config.Image == "" {
		return Ports{}, fmt.Errorf("docker launcher requires container name and image")
	}

	rpcPort := spec.NameNodePort
	httpPort := spec.NameNodeHTTPPort
	var err error
	if rpcPort == 0 {
		if rpcPort, err = freePort(); err != nil {
			return Ports{}, err
		}
	}
	if httpPort == 0 {
		if httpPort, err = freePort(); err != nil {
			return Ports{}, err
		}
	}

	args := []string{
		"run", "-d", "--name", d.config.Container,
		"-p", fmt.Sprintf("%d:%d", rpcPort, containerRPCPort),
		"-p", fmt.Sprintf("%d:%d", httpPort, containerHTTPPort),
	}

	for k, v := range d.config.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	if spec.Format {
		args = append(args, "-e", "ENSURE_NAMENODE_DIR_FORMAT=true")
	}
	if d.config.Network != "" {
		args = append(args, "--network", d.config.Network)
	}
	if spec.BaseDir != "" {
		args = append(args, "-v", fmt.Sprintf("%s:/hadoop/dfs", spec.BaseDir))
	}

	args = append(args, d.config.Image)

	d.logger.Info("launching cluster container", "image", d.config.Image, "rpcport", rpcPort, "httpport", httpPort)

	cmd := exec.CommandContext(ctx, "docker", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return Ports{}, fmt.Errorf("failed to start container %s: %w: %s",
			d.config.Container, err, strings.TrimSpace(string(out)))
	}

	d.started = true
	return Ports{NameNodeRPC: rpcPort, NameNodeHTTP: httpPort}, nil
}

// Stop stops and removes the container.
func (d *Docker) Stop(ctx context.Context) error {
	if !d.started {
		return nil
	}
	d.started = false

	cmd := exec.CommandContext(ctx, "docker", "stop", d.config.Container)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", d.config.Container, err)
	}

	cmd = exec.CommandContext(ctx, "docker", "rm", d.config.Container)
	cmd.Run() // Ignore error on remove

	return nil
}

var _ Launcher = (*Docker)(nil)
