package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vox-portal.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-c", "a.toml", "-config", "b.toml", "-p", "9000", "-host", "0.0.0.0"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if o.configs.String() != "a.toml,b.toml" {
		t.Errorf("expected both config files in order, got %s", o.configs.String())
	}
	if o.port != 9000 || o.host != "0.0.0.0" {
		t.Errorf("unexpected overrides %+v", o)
	}
}

func TestRun_Version(t *testing.T) {
	var stdout bytes.Buffer
	if err := run(t.Context(), []string{"-version"}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "vox-portal dev") {
		t.Errorf("unexpected version output %q", stdout.String())
	}
}

func TestRun_InvalidConfigListsIssues(t *testing.T) {
	t.Setenv("VOX_ENV", "prod")
	t.Setenv("VOX_POLYGON_API_KEY", "")
	path := writeConfig(t, "[upstream.trending]\nurl = \"\"\n")

	var stderr bytes.Buffer
	err := run(t.Context(), []string{"-c", path}, &bytes.Buffer{}, &stderr)
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("expected errInvalidConfig, got %v", err)
	}
	for _, want := range []string{"api_key", "trending.url"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("expected %q in issue list, got %s", want, stderr.String())
		}
	}
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	t.Setenv("VOX_ENV", "dev")
	port := freePort(t)
	path := writeConfig(t, "[logging]\nlevel = \"error\"\n")

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{"-c", path, "-host", "127.0.0.1", "-port", fmt.Sprint(port)}, &bytes.Buffer{}, &bytes.Buffer{})
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/version", port)
	var resp *http.Response
	var err error
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("portal never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(shutdownGrace + time.Second):
		t.Fatal("run did not return after cancel")
	}
}
