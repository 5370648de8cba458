// Package testutils holds helpers shared by integration tests.
package testutils

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/wellnash/wellnash/internal/config"
	"github.com/wellnash/wellnash/internal/logging"
)

// ConfigForTests loads the .env.test file and returns a valid config.Provider.
// This is the definitive way to get configuration for integration tests.
func ConfigForTests(t *testing.T) config.Provider {
	t.Helper()

	root := projectRoot(t)
	env, err := godotenv.Read(filepath.Join(root, ".env.test"))
	if err != nil {
		t.Fatalf("failed to load .env.test file: %v", err)
	}

	// t.Setenv restores the previous values when the test ends.
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("invalid .env.test configuration: %v", err)
	}
	logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())
	return cfg
}

// projectRoot walks up from the working directory to the directory holding go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()
	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}
}

// NoRedirectClient returns a client that does not follow redirects, so tests
// can inspect them.
func NoRedirectClient(jar http.CookieJar) *http.Client {
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
