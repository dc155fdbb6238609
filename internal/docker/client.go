// client.go wraps the Docker Engine SDK client used for toolchain
// preflight checks. The cross tool executes every build inside a Docker
// container, so a cross-based pipeline is dead on arrival when the daemon
// is unreachable. Checking up front turns an opaque mid-build failure into
// a clear "Docker is not running" diagnosis before any work starts.
package docker

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/crateci/internal/model"
)

// defaultPingTimeout bounds the daemon ping during preflight. 5 seconds
// covers even a slow Docker Desktop startup on macOS; a daemon that takes
// longer than that is effectively down for CI purposes.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker SDK client with automatic socket detection.
// It exposes only what the preflight check needs: construction, Ping,
// and Close.
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client with automatic socket detection.
//
// Detection priority:
//  1. DOCKER_HOST environment variable, used as-is when set
//  2. Platform-specific default socket paths (see candidateHosts)
//
// Returns a model.CLIError with ExitEnvError when no socket is found or
// the client cannot be created.
func NewClient() (*Client, error) {
	// An explicit DOCKER_HOST always wins; the SDK parses the connection
	// string itself.
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return newClientWithHost(host)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitEnvError,
			"Docker socket not found (cross runs builds in Docker)", err)
	}

	return newClientWithHost(host)
}

// newClientWithHost creates a Docker client bound to the given connection
// string. API version negotiation keeps the client compatible with
// whatever daemon version the CI host runs.
func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitEnvError,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}

	return &Client{inner: c}, nil
}

// detectDockerHost determines the Docker connection string for the current
// platform. Unix socket candidates are probed for existence only — a fast
// check that does not need a running daemon; Ping verifies connectivity.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux", "darwin":
		return detectUnixSocket(candidateSocketPaths(runtime.GOOS))

	case "windows":
		// Docker Desktop exposes a fixed named pipe on Windows. os.Stat
		// does not work on named pipes, so probe with a short dial.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// candidateSocketPaths lists the Unix socket paths probed for the given
// platform, most-preferred first.
//
// Linux has the single standard path. macOS additionally checks the
// per-user socket that newer Docker Desktop versions create when the
// /var/run symlink is absent.
func candidateSocketPaths(goos string) []string {
	paths := []string{"/var/run/docker.sock"}
	if goos == "darwin" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			paths = append(paths, homeDir+"/.docker/run/docker.sock")
		}
	}
	return paths
}

// detectUnixSocket returns the Docker host URI for the first socket path
// that exists on the filesystem.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// Ping verifies the daemon is reachable and responsive, waiting up to
// defaultPingTimeout. Returns a model.CLIError with ExitEnvError when the
// daemon does not answer.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitEnvError,
			"Docker daemon is not responding — is Docker running?", err)
	}
	return nil
}

// Close releases the client's underlying HTTP connection.
// Safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
