package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetEnvForTest unsets an environment variable and registers cleanup to
// restore its original state (including distinguishing "unset" from "set to
// empty string").
func unsetEnvForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoad_Defaults(t *testing.T) {
	// Point config at an empty directory so no file is picked up
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	unsetEnvForTest(t, "MOOR_POLL_INTERVAL")
	unsetEnvForTest(t, "MOOR_PREVIEW_LINES")
	unsetEnvForTest(t, "MOOR_DEFAULT_HOST")

	cfg := Load()

	if got := cfg.PollInterval(); got != DefaultPollInterval {
		t.Errorf("PollInterval() = %d, want %d", got, DefaultPollInterval)
	}
	if got := cfg.PreviewLines(); got != DefaultPreviewLines {
		t.Errorf("PreviewLines() = %d, want %d", got, DefaultPreviewLines)
	}
	if got := cfg.DefaultHost(); got != "" {
		t.Errorf("DefaultHost() = %q, want empty", got)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVar  string
		envVal  string
		key     string
		wantStr string
		wantInt int
	}{
		{
			name:    "default host from env",
			envVar:  "MOOR_DEFAULT_HOST",
			envVal:  "pi",
			key:     "default_host",
			wantStr: "pi",
		},
		{
			name:    "poll interval from env",
			envVar:  "MOOR_POLL_INTERVAL",
			envVal:  "30",
			key:     "poll.interval",
			wantInt: 30,
		},
		{
			name:    "preview lines from env",
			envVar:  "MOOR_PREVIEW_LINES",
			envVal:  "20",
			key:     "preview.lines",
			wantInt: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.envVal)

			cfg := Load()

			if tt.wantStr != "" {
				got := cfg.GetString(tt.key)
				if got != tt.wantStr {
					t.Errorf("GetString(%q) = %q, want %q", tt.key, got, tt.wantStr)
				}
			}
			if tt.wantInt != 0 {
				got := cfg.GetInt(tt.key)
				if got != tt.wantInt {
					t.Errorf("GetInt(%q) = %d, want %d", tt.key, got, tt.wantInt)
				}
			}
		})
	}
}

func TestConfig_All(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	unsetEnvForTest(t, "MOOR_POLL_INTERVAL")
	unsetEnvForTest(t, "MOOR_PREVIEW_LINES")

	cfg := Load()
	all := cfg.All()

	if all == nil {
		t.Fatal("All() returned nil")
	}

	if _, ok := all["poll"]; !ok {
		t.Error("All() missing 'poll' key")
	}
	if _, ok := all["preview"]; !ok {
		t.Error("All() missing 'preview' key")
	}
}

func TestHost_BaseURL(t *testing.T) {
	tests := []struct {
		name string
		host Host
		want string
	}{
		{
			name: "default port",
			host: Host{Name: "pi", Address: "192.168.1.20"},
			want: "http://192.168.1.20:8022",
		},
		{
			name: "custom port",
			host: Host{Name: "studio", Address: "studio.local", Port: 9000},
			want: "http://studio.local:9000",
		},
		{
			name: "tls",
			host: Host{Name: "vps", Address: "vps.example.com", Port: 443, TLS: true},
			want: "https://vps.example.com:443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.host.BaseURL(); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInventory_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	inv, err := LoadInventory()
	if err != nil {
		t.Fatalf("LoadInventory() on empty config error = %v", err)
	}
	if len(inv.Hosts) != 0 {
		t.Fatalf("fresh inventory has %d hosts, want 0", len(inv.Hosts))
	}

	inv.Add(Host{Name: "studio", Address: "studio.local", Port: 9000})
	inv.Add(Host{Name: "pi", Address: "192.168.1.20"})
	if err := inv.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadInventory()
	if err != nil {
		t.Fatalf("LoadInventory() error = %v", err)
	}

	if len(loaded.Hosts) != 2 {
		t.Fatalf("loaded %d hosts, want 2", len(loaded.Hosts))
	}

	// Saved sorted by name.
	if loaded.Hosts[0].Name != "pi" || loaded.Hosts[1].Name != "studio" {
		t.Errorf("hosts = %v, want sorted [pi studio]", loaded.Hosts)
	}

	h, ok := loaded.Get("studio")
	if !ok || h.Port != 9000 {
		t.Errorf("Get(studio) = %+v %v, want port 9000", h, ok)
	}
}

func TestInventory_AddReplacesExisting(t *testing.T) {
	inv := &Inventory{}
	inv.Add(Host{Name: "pi", Address: "old.local"})
	inv.Add(Host{Name: "pi", Address: "new.local"})

	if len(inv.Hosts) != 1 {
		t.Fatalf("inventory has %d hosts, want 1", len(inv.Hosts))
	}
	if inv.Hosts[0].Address != "new.local" {
		t.Errorf("address = %q, want new.local", inv.Hosts[0].Address)
	}
}

func TestInventory_Remove(t *testing.T) {
	inv := &Inventory{}
	inv.Add(Host{Name: "pi", Address: "192.168.1.20"})

	if !inv.Remove("pi") {
		t.Error("Remove(pi) = false, want true")
	}
	if inv.Remove("pi") {
		t.Error("Remove(pi) second call = true, want false")
	}
	if len(inv.Hosts) != 0 {
		t.Errorf("inventory has %d hosts, want 0", len(inv.Hosts))
	}
}

func TestInventory_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	inv := &Inventory{}
	inv.Add(Host{Name: "pi", Address: "192.168.1.20"})
	if err := inv.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(tmpDir, "moor", "hosts.yaml"))
	if err != nil {
		t.Fatalf("stat hosts.yaml: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("hosts.yaml permissions = %o, want 0600", perm)
	}
}
