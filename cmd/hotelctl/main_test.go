package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"hotelcore/internal/core"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOTEL_STORAGE_DRIVER", "file")
	t.Setenv("HOTEL_FILE_PATH", filepath.Join(dir, "hotel.json"))
	t.Setenv("HOTEL_LOG_LEVEL", "error")
	t.Setenv("HOTEL_METRICS_TEXTFILE", "")
	t.Setenv("HOTEL_TRACE_FILE", "")
	return dir
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLIBookingFlowPersistsAcrossInvocations(t *testing.T) {
	dir := setupEnv(t)
	steps := []struct {
		args []string
		code int
	}{
		{[]string{"add-room", "-name", "Sea view", "-price", "120", "-capacity", "2", "-misc", "wifi, minibar"}, exitOK},
		{[]string{"register", "-key", "19900101-1234", "-name", "Alice", "-age", "35"}, exitOK},
		{[]string{"add-booking", "-key", "199001011234", "-room", "1", "-message", "late arrival"}, exitOK},
		{[]string{"check-in", "-key", "199001011234"}, exitOK},
		{[]string{"check-in", "-key", "199001011234"}, exitRejected},
		{[]string{"check-out", "-key", "199001011234", "-unregister"}, exitOK},
	}
	for _, step := range steps {
		code, stdout, stderr := run(t, step.args...)
		if code != step.code {
			t.Fatalf("%v: expected exit %d, got %d (stdout %q stderr %q)", step.args, step.code, code, stdout, stderr)
		}
	}

	b, err := os.ReadFile(filepath.Join(dir, "hotel.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.Contains(string(b), `"total registrations":"1"`) {
		t.Fatalf("expected history record in document, got %s", b)
	}

	code, stdout, _ := run(t, "summary")
	if code != exitOK {
		t.Fatalf("summary exit %d", code)
	}
	want := "Total bookings: 0\nTotal rooms: 1\nVacant rooms: 1\nRegistered users: 0\n"
	if stdout != want {
		t.Fatalf("unexpected summary %q", stdout)
	}
}

func TestCLIRegisterPrefillsReturningGuest(t *testing.T) {
	setupEnv(t)
	if code, _, stderr := run(t, "register", "-key", "199001011234", "-name", "Alice", "-age", "35"); code != exitOK {
		t.Fatalf("register: %d %s", code, stderr)
	}
	if code, _, _ := run(t, "unregister", "-key", "199001011234"); code != exitOK {
		t.Fatalf("unregister: %d", code)
	}
	if code, _, _ := run(t, "register", "-key", "199001011234"); code != exitOK {
		t.Fatalf("register returning guest: %d", code)
	}
	code, stdout, _ := run(t, "-json", "users")
	if code != exitOK {
		t.Fatalf("users: %d", code)
	}
	var out struct {
		OK   bool                 `json:"ok"`
		Data map[string]core.User `json:"data"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("json: %v (%s)", err, stdout)
	}
	if !reflect.DeepEqual(out.Data, map[string]core.User{"199001011234": {Name: "Alice", Age: "35"}}) {
		t.Fatalf("unexpected users %+v", out.Data)
	}
}

func TestCLIListingsRenderText(t *testing.T) {
	setupEnv(t)
	run(t, "add-room", "-name", "A", "-price", "10", "-capacity", "1", "-misc", "wifi")
	run(t, "add-room", "-name", "B", "-price", "20", "-capacity", "2")
	run(t, "register", "-key", "199001011234", "-name", "Alice", "-age", "35")
	run(t, "add-booking", "-key", "199001011234", "-room", "2")

	_, stdout, _ := run(t, "vacant")
	if stdout != "1. A  price 10  capacity 1  vacant  [wifi]\n" {
		t.Fatalf("unexpected vacant listing %q", stdout)
	}
	_, stdout, _ = run(t, "rooms")
	if !strings.Contains(stdout, "2. B  price 20  capacity 2  occupied  guest 199001011234") {
		t.Fatalf("unexpected room listing %q", stdout)
	}
	_, stdout, _ = run(t, "bookings")
	if stdout != "199001011234  room 2  checked in: false\n" {
		t.Fatalf("unexpected bookings %q", stdout)
	}
	_, stdout, _ = run(t, "filter-rooms", "-field", "misc", "-value", "wifi", "-invert")
	if !strings.HasPrefix(stdout, "2. B") {
		t.Fatalf("unexpected filtered rooms %q", stdout)
	}
	_, stdout, _ = run(t, "history")
	if stdout != "(none)\n" {
		t.Fatalf("expected empty history, got %q", stdout)
	}
}

func TestCLIUsageErrors(t *testing.T) {
	setupEnv(t)
	cases := [][]string{
		{},
		{"teleport"},
		{"register", "-name", "Alice"},
		{"check-in", "-key", "199001011234", "extra"},
		{"add-room", "-bogus"},
		{"-nope"},
	}
	for _, args := range cases {
		if code, _, _ := run(t, args...); code != exitUsage {
			t.Fatalf("%v: expected usage exit, got %d", args, code)
		}
	}
	if code, _, _ := run(t, "-env", "missing.env", "summary"); code != exitUsage {
		t.Fatalf("expected usage exit for missing env file")
	}
	t.Setenv("HOTEL_LOG_FORMAT", "xml")
	if code, _, _ := run(t, "summary"); code != exitUsage {
		t.Fatalf("expected usage exit for bad log format")
	}
}

func TestCLIFailsOnCorruptDocument(t *testing.T) {
	dir := setupEnv(t)
	if err := os.WriteFile(filepath.Join(dir, "hotel.json"), []byte(`{"rooms":[{"state":"flooded"}]}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	code, _, stderr := run(t, "summary")
	if code != exitFailure || !strings.Contains(stderr, "load hotel document") {
		t.Fatalf("expected failure exit, got %d %q", code, stderr)
	}
}

func TestCLIWritesMetricsTextfile(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "hotel.prom")
	t.Setenv("HOTEL_METRICS_TEXTFILE", path)
	if code, _, _ := run(t, "add-room", "-price", "10", "-capacity", "1"); code != exitOK {
		t.Fatalf("add-room exit %d", code)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, want := range []string{`hotel_operations_total{operation="add_room",outcome="success"} 1`, "hotel_rooms 1"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("metrics missing %q:\n%s", want, b)
		}
	}
}

func TestCLIAppendsTraceSpans(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "trace.jsonl")
	t.Setenv("HOTEL_TRACE_FILE", path)
	run(t, "register", "-key", "199001011234", "-name", "Alice", "-age", "35")
	run(t, "register", "-key", "199001011234", "-name", "Alice", "-age", "35")
	run(t, "unregister", "-key", "199001011234")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two spans, got %d:\n%s", len(lines), b)
	}
	var span core.JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[1]), &span); err != nil {
		t.Fatalf("decode span: %v", err)
	}
	if span.Operation != "unregister" || span.Key != "199001011234" || span.Status != "success" {
		t.Fatalf("unexpected span %+v", span)
	}
}

func TestCLIEnvFileSelectsStorage(t *testing.T) {
	dir := setupEnv(t)
	envFile := filepath.Join(dir, "sqlite.env")
	if err := os.WriteFile(envFile, []byte("HOTEL_SQLITE_PATH="+filepath.Join(dir, "hotel.db")+"\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("HOTEL_STORAGE_DRIVER", "sqlite")
	t.Setenv("HOTEL_SQLITE_PATH", "")
	_ = os.Unsetenv("HOTEL_SQLITE_PATH")
	if code, _, stderr := run(t, "-env", envFile, "add-room", "-price", "10", "-capacity", "1"); code != exitOK {
		t.Fatalf("add-room exit %d: %s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "hotel.db")); err != nil {
		t.Fatalf("expected sqlite database: %v", err)
	}
	_, stdout, _ := run(t, "-env", envFile, "rooms")
	if !strings.HasPrefix(stdout, "1. ") {
		t.Fatalf("expected persisted room, got %q", stdout)
	}
}

func TestMainUsesExitFunc(t *testing.T) {
	setupEnv(t)
	var got int
	exitFunc = func(code int) { got = code }
	defer func() { exitFunc = os.Exit }()
	oldArgs := os.Args
	os.Args = []string{"hotelctl"}
	defer func() { os.Args = oldArgs }()
	main()
	if got != exitUsage {
		t.Fatalf("expected usage exit, got %d", got)
	}
}
