package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stellarlinkco/mcq-eval/api"
	"github.com/stellarlinkco/mcq-eval/internal/adapter"
	"github.com/stellarlinkco/mcq-eval/internal/config"
	"github.com/stellarlinkco/mcq-eval/internal/leaderboard"
)

func saveServerGlobals(t *testing.T) func() {
	t.Helper()

	oldOsExit := osExit
	oldStderrWriter := stderrWriter
	oldLoadConfig := loadConfig
	oldNewServer := newServer
	oldRunServer := runServer
	oldLeaderboardNewStore := leaderboardNewStore

	return func() {
		osExit = oldOsExit
		stderrWriter = oldStderrWriter
		loadConfig = oldLoadConfig
		newServer = oldNewServer
		runServer = oldRunServer
		leaderboardNewStore = oldLeaderboardNewStore
	}
}

func TestOpenLeaderboardStore_NilConfig(t *testing.T) {
	_, err := openLeaderboardStore(nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "missing config") {
		t.Fatalf("error: got %q", err)
	}
}

func TestOpenLeaderboardStore_DefaultSQLitePath(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	oldNewStore := leaderboardNewStore
	var gotPath string
	leaderboardNewStore = func(path string) (*leaderboard.Store, error) {
		gotPath = path
		return oldNewStore(":memory:")
	}

	lb, err := openLeaderboardStore(&config.Config{})
	if err != nil {
		t.Fatalf("openLeaderboardStore: %v", err)
	}
	t.Cleanup(func() { _ = lb.Close() })

	if gotPath != defaultSQLitePath {
		t.Fatalf("path: got %q want %q", gotPath, defaultSQLitePath)
	}
}

func TestOpenLeaderboardStore_SQLitePathTrim(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	oldNewStore := leaderboardNewStore
	var gotPath string
	leaderboardNewStore = func(path string) (*leaderboard.Store, error) {
		gotPath = path
		return oldNewStore(":memory:")
	}

	cfg := &config.Config{Storage: config.StorageConfig{Type: " SQlite ", Path: " \tfoo.db \n "}}
	lb, err := openLeaderboardStore(cfg)
	if err != nil {
		t.Fatalf("openLeaderboardStore: %v", err)
	}
	t.Cleanup(func() { _ = lb.Close() })

	if gotPath != "foo.db" {
		t.Fatalf("path: got %q want %q", gotPath, "foo.db")
	}
}

func TestOpenLeaderboardStore_Memory(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	oldNewStore := leaderboardNewStore
	var gotPath string
	leaderboardNewStore = func(path string) (*leaderboard.Store, error) {
		gotPath = path
		return oldNewStore(":memory:")
	}

	cfg := &config.Config{Storage: config.StorageConfig{Type: "memory", Path: "ignored"}}
	lb, err := openLeaderboardStore(cfg)
	if err != nil {
		t.Fatalf("openLeaderboardStore: %v", err)
	}
	t.Cleanup(func() { _ = lb.Close() })

	if gotPath != ":memory:" {
		t.Fatalf("path: got %q want %q", gotPath, ":memory:")
	}
}

func TestOpenLeaderboardStore_UnsupportedType(t *testing.T) {
	_, err := openLeaderboardStore(&config.Config{Storage: config.StorageConfig{Type: "wat"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "unsupported type") {
		t.Fatalf("error: got %q", err)
	}
}

func TestRunMain_Success(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	stderrBuf := &bytes.Buffer{}
	stderrWriter = stderrBuf

	cfg := &config.Config{Storage: config.StorageConfig{Type: "memory"}}
	var gotConfigPath string
	loadConfig = func(path string) (*config.Config, error) {
		gotConfigPath = path
		return cfg, nil
	}

	var gotAddr string
	runCalled := 0
	runServer = func(srv *api.Server, addr string) error {
		if srv == nil {
			t.Fatalf("runServer: nil server")
		}
		runCalled++
		gotAddr = addr
		return nil
	}

	newServer = func(c *config.Config, registry *adapter.Registry, lb *leaderboard.Store) (*api.Server, error) {
		if c != cfg {
			t.Fatalf("newServer: cfg mismatch")
		}
		if registry == nil {
			t.Fatalf("newServer: nil registry")
		}
		if _, ok := registry.Get("general_mcq"); !ok {
			t.Fatalf("newServer: general_mcq not registered")
		}
		if lb == nil {
			t.Fatalf("newServer: nil leaderboard store")
		}
		return &api.Server{}, nil
	}

	code := runMain([]string{"-addr", "127.0.0.1:9999", "-config", "cfg.yaml"})
	if code != 0 {
		t.Fatalf("exit: got %d want %d; stderr=%q", code, 0, stderrBuf.String())
	}
	if gotConfigPath != "cfg.yaml" {
		t.Fatalf("configPath: got %q want %q", gotConfigPath, "cfg.yaml")
	}
	if runCalled != 1 || gotAddr != "127.0.0.1:9999" {
		t.Fatalf("Run: called=%d addr=%q", runCalled, gotAddr)
	}
	if stderrBuf.Len() != 0 {
		t.Fatalf("stderr: got %q", stderrBuf.String())
	}
}

func TestRunMain_DefaultFlags(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	cfg := &config.Config{Storage: config.StorageConfig{Type: "memory"}}
	var gotConfigPath string
	loadConfig = func(path string) (*config.Config, error) {
		gotConfigPath = path
		return cfg, nil
	}

	var gotAddr string
	runServer = func(_ *api.Server, addr string) error {
		gotAddr = addr
		return nil
	}
	newServer = func(*config.Config, *adapter.Registry, *leaderboard.Store) (*api.Server, error) {
		return &api.Server{}, nil
	}

	if code := runMain(nil); code != 0 {
		t.Fatalf("exit: got %d want %d", code, 0)
	}
	if gotConfigPath != config.DefaultPath {
		t.Fatalf("configPath: got %q want %q", gotConfigPath, config.DefaultPath)
	}
	if gotAddr != ":8080" {
		t.Fatalf("addr: got %q want %q", gotAddr, ":8080")
	}
}

func TestRunMain_FlagParseError(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	stderrBuf := &bytes.Buffer{}
	stderrWriter = stderrBuf

	loadCalled := 0
	loadConfig = func(string) (*config.Config, error) {
		loadCalled++
		return &config.Config{}, nil
	}

	if code := runMain([]string{"-nope"}); code != 2 {
		t.Fatalf("exit: got %d want %d", code, 2)
	}
	if loadCalled != 0 {
		t.Fatalf("Load: called=%d want %d", loadCalled, 0)
	}
	if stderrBuf.Len() == 0 {
		t.Fatalf("expected parse error output")
	}
}

func TestRunMain_HelpFlag(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	stderrBuf := &bytes.Buffer{}
	stderrWriter = stderrBuf

	loadCalled := 0
	loadConfig = func(string) (*config.Config, error) {
		loadCalled++
		return &config.Config{}, nil
	}

	if code := runMain([]string{"-h"}); code != 0 {
		t.Fatalf("exit: got %d want %d", code, 0)
	}
	if loadCalled != 0 {
		t.Fatalf("Load: called=%d want %d", loadCalled, 0)
	}
}

func TestRunMain_ConfigLoadError(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	stderrBuf := &bytes.Buffer{}
	stderrWriter = stderrBuf

	loadConfig = func(string) (*config.Config, error) {
		return nil, errors.New("boom")
	}

	if code := runMain([]string{"-config", "x.yaml"}); code != 1 {
		t.Fatalf("exit: got %d want %d", code, 1)
	}
	if !strings.Contains(stderrBuf.String(), "boom") {
		t.Fatalf("stderr: got %q", stderrBuf.String())
	}
}

func TestRunMain_LeaderboardOpenError(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	stderrBuf := &bytes.Buffer{}
	stderrWriter = stderrBuf

	loadConfig = func(string) (*config.Config, error) {
		return &config.Config{Storage: config.StorageConfig{Type: "wat"}}, nil
	}
	newServer = func(*config.Config, *adapter.Registry, *leaderboard.Store) (*api.Server, error) {
		t.Fatalf("NewServer called unexpectedly")
		return nil, nil
	}

	if code := runMain(nil); code != 1 {
		t.Fatalf("exit: got %d want %d", code, 1)
	}
	if !strings.Contains(stderrBuf.String(), "unsupported type") {
		t.Fatalf("stderr: got %q", stderrBuf.String())
	}
}

func TestRunMain_NewServerError(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	stderrBuf := &bytes.Buffer{}
	stderrWriter = stderrBuf

	loadConfig = func(string) (*config.Config, error) {
		return &config.Config{Storage: config.StorageConfig{Type: "memory"}}, nil
	}
	newServer = func(*config.Config, *adapter.Registry, *leaderboard.Store) (*api.Server, error) {
		return nil, errors.New("srvfail")
	}

	if code := runMain(nil); code != 1 {
		t.Fatalf("exit: got %d want %d", code, 1)
	}
	if !strings.Contains(stderrBuf.String(), "srvfail") {
		t.Fatalf("stderr: got %q", stderrBuf.String())
	}
}

func TestRunMain_RunError(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	stderrBuf := &bytes.Buffer{}
	stderrWriter = stderrBuf

	loadConfig = func(string) (*config.Config, error) {
		return &config.Config{Storage: config.StorageConfig{Type: "memory"}}, nil
	}
	newServer = func(*config.Config, *adapter.Registry, *leaderboard.Store) (*api.Server, error) {
		return &api.Server{}, nil
	}
	runServer = func(*api.Server, string) error { return errors.New("runfail") }

	if code := runMain(nil); code != 1 {
		t.Fatalf("exit: got %d want %d", code, 1)
	}
	if !strings.Contains(stderrBuf.String(), "runfail") {
		t.Fatalf("stderr: got %q", stderrBuf.String())
	}
}

func TestMain_ExitCodePropagates(t *testing.T) {
	restore := saveServerGlobals(t)
	t.Cleanup(restore)

	stderrWriter = &bytes.Buffer{}

	loadConfig = func(string) (*config.Config, error) {
		return &config.Config{Storage: config.StorageConfig{Type: "memory"}}, nil
	}
	newServer = func(*config.Config, *adapter.Registry, *leaderboard.Store) (*api.Server, error) {
		return &api.Server{}, nil
	}
	runServer = func(*api.Server, string) error { return nil }

	oldArgs := append([]string(nil), os.Args...)
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"server", "-addr", "127.0.0.1:9999"}

	exitCode := -1
	osExit = func(code int) { exitCode = code }

	main()

	if exitCode != 0 {
		t.Fatalf("exit: got %d want %d", exitCode, 0)
	}
}
