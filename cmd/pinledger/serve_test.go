package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pinledger/internal/core"
)

func TestParseRoute(t *testing.T) {
	route, err := parseRoute("37.7749,-122.4194; 37.7750,-122.4184;")
	if err != nil {
		t.Fatalf("parseRoute() error = %v", err)
	}
	want := []core.Coordinates{{Latitude: 37.7749, Longitude: -122.4194}, {Latitude: 37.7750, Longitude: -122.4184}}
	if len(route) != len(want) || route[0] != want[0] || route[1] != want[1] {
		t.Errorf("parseRoute() = %v, want %v", route, want)
	}

	for _, bad := range []string{"", ";", "37.7", "a,b"} {
		if _, err := parseRoute(bad); err == nil {
			t.Errorf("parseRoute(%q) should fail", bad)
		}
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExpenseCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("LOG_LEVEL", "error")

	out, err := runCLI(t, "--db", db, "expense", "add", "12.5", "Coffee")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Coffee: 12.5 $") {
		t.Errorf("add output = %q", out)
	}

	if _, err := runCLI(t, "--db", db, "expense", "add", "", "Nothing"); err == nil {
		t.Error("empty amount should fail")
	}

	out, err = runCLI(t, "--db", db, "expense", "list", "--currency", "₺")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Coffee: 12.5 ₺") || !strings.Contains(out, "Total: 12.5 ₺") {
		t.Errorf("list output = %q", out)
	}

	out, err = runCLI(t, "--db", db, "expense", "rm", "1", "--currency", "$")
	if err != nil {
		t.Fatalf("rm: %v", err)
	}
	if !strings.Contains(out, "Total: 0 $") {
		t.Errorf("rm output = %q", out)
	}

	if _, err := runCLI(t, "--db", db, "expense", "rm", "1"); err == nil {
		t.Error("removing a missing expense should fail")
	}
}

func TestDistanceAndNearby(t *testing.T) {
	out, err := runCLI(t, "distance", "37.7749", "-122.4194", "37.7749", "-122.4194")
	if err != nil || strings.TrimSpace(out) != "0.0 m" {
		t.Errorf("distance = %q, %v", out, err)
	}

	out, err = runCLI(t, "nearby", "37.7749", "-122.4194", "--radius", "50")
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "Restaurant A") || !strings.Contains(lines[0], "nearby") {
		t.Errorf("nearby output = %q", out)
	}
	if strings.Contains(lines[1], "nearby") {
		t.Errorf("Cafe B is ~88 m away and outside a 50 m radius: %q", lines[1])
	}
}

func TestNearbyReadsPlacesFileFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	placesFile := filepath.Join(dir, "places.yaml")
	if err := os.WriteFile(placesFile, []byte("places:\n  - id: 7\n    name: Kiosk\n    latitude: 10\n    longitude: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PLACES_FILE="+placesFile+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PLACES_FILE", "")
	os.Unsetenv("PLACES_FILE")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	out, err := runCLI(t, "nearby", "10", "10")
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if !strings.Contains(out, "Kiosk") || strings.Contains(out, "Restaurant A") {
		t.Errorf("nearby ignored PLACES_FILE from .env: %q", out)
	}
}

func TestServeRejectsPushWithSimulate(t *testing.T) {
	flags := serveCmd.Flags()
	t.Cleanup(func() {
		flagPush, flagSimulate = false, ""
		flags.Lookup("push").Changed = false
		flags.Lookup("simulate").Changed = false
	})

	if err := flags.Set("push", "true"); err != nil {
		t.Fatal(err)
	}
	if err := flags.Set("simulate", "37.7749,-122.4194"); err != nil {
		t.Fatal(err)
	}
	if err := serveCmd.ValidateFlagGroups(); err == nil {
		t.Error("--push together with --simulate should be rejected")
	}
}
