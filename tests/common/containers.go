package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	portalPort      = "8080/tcp"
	startupDeadline = 3 * time.Minute
)

// upstreamEnv are passed from the test environment into the container so a
// run can point the portal at real or recorded upstreams.
var upstreamEnv = []string{
	"VOX_POLYGON_API_KEY",
	"VOX_POLYGON_URL",
	"VOX_TRENDING_URL",
	"VOX_DOGCEO_URL",
	"VOX_THEDOGAPI_URL",
	"VOX_THEDOGAPI_KEY",
}

// Portal is a vox-portal container built from tests/docker/Dockerfile.
type Portal struct {
	container testcontainers.Container
	url       string
}

var (
	portalOnce sync.Once
	portal     *Portal
	portalErr  error
)

// StartPortalForTestMain starts one container per test binary. It returns
// (nil, nil) when VOX_TEST_URL points at an already running portal.
func StartPortalForTestMain() (*Portal, error) {
	if os.Getenv("VOX_TEST_URL") != "" {
		return nil, nil
	}
	portalOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startupDeadline)
		defer cancel()
		portal, portalErr = startPortal(ctx)
	})
	return portal, portalErr
}

func portalEnv() map[string]string {
	env := map[string]string{
		"VOX_ENV":         "dev",
		"VOX_SERVER_HOST": "0.0.0.0",
		"VOX_SERVER_PORT": "8080",
		"VOX_LOG_LEVEL":   "debug",
	}
	for _, k := range upstreamEnv {
		if v := os.Getenv(k); v != "" {
			env[k] = v
		}
	}
	return env
}

func startPortal(ctx context.Context) (*Portal, error) {
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			FromDockerfile: testcontainers.FromDockerfile{
				Context:    FindProjectRoot(),
				Dockerfile: "tests/docker/Dockerfile",
				Repo:       "vox-portal",
				Tag:        "test",
				KeepImage:  true,
			},
			ExposedPorts: []string{portalPort},
			Env:          portalEnv(),
			WaitingFor:   wait.ForHTTP("/api/health").WithPort(portalPort).WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		testcontainers.TerminateContainer(ctr)
		return nil, fmt.Errorf("start vox-portal container: %w", err)
	}

	endpoint, err := ctr.PortEndpoint(ctx, portalPort, "http")
	if err != nil {
		testcontainers.TerminateContainer(ctr)
		return nil, fmt.Errorf("resolve portal endpoint: %w", err)
	}
	return &Portal{container: ctr, url: endpoint}, nil
}

// URL is the base URL of the running portal.
func (p *Portal) URL() string { return p.url }

// CollectLogs saves the container output to dir/vox-portal.log.
func (p *Portal) CollectLogs(dir string) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rc, err := p.container.Logs(ctx)
	if err != nil {
		return
	}
	defer rc.Close()
	if data, err := io.ReadAll(rc); err == nil {
		os.WriteFile(filepath.Join(dir, "vox-portal.log"), data, 0o644)
	}
}

// Cleanup terminates the container.
func (p *Portal) Cleanup() {
	if p == nil {
		return
	}
	testcontainers.TerminateContainer(p.container, testcontainers.StopTimeout(30*time.Second))
}

// FindProjectRoot walks up from the working directory to go.mod.
func FindProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
