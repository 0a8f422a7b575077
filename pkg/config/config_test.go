package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d; want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.Source != "file" {
		t.Errorf("Catalog.Source = %q; want file", cfg.Catalog.Source)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxLimit != 100 {
		t.Errorf("search limits = %d/%d; want 20/100", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
}

func TestLoadAppliesFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("FS_CATALOG_PATH", "/srv/catalog.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d; want file value 9000", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "/srv/catalog.json" {
		t.Errorf("Catalog.Path = %q; want env value", cfg.Catalog.Path)
	}
}

func TestLoadValidatesCatalogTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"plain identifier", "fund_schemes", false},
		{"leading underscore", "_schemes", false},
		{"injection attempt", "fund_schemes; DROP TABLE users", true},
		{"quoted", `"fund_schemes"`, true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t,
				"catalog:\n  source: postgres\n  table: '"+tt.table+"'\n")
			_, err := Load(path)
			if tt.wantErr && err == nil {
				t.Errorf("Load accepted table %q", tt.table)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Load rejected table %q: %v", tt.table, err)
			}
		})
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	path := writeConfig(t, "catalog:\n  source: s3\n")
	if _, err := Load(path); err == nil {
		t.Error("Load accepted unknown catalog source")
	}
}
