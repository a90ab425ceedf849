package utils

import (
	"context"
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	for _, k := range []string{"PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DB", "PG_SSLMODE"} {
		t.Setenv(k, "")
	}
	if got, want := BuildPostgresDSNFromEnv(), "postgres://postgres@localhost:5432/countymap?sslmode=disable"; got != want {
		t.Errorf("default DSN = %q, want %q", got, want)
	}
	t.Setenv("PG_PASSWORD", "pw")
	t.Setenv("PG_DB", "maps")
	if got, want := BuildPostgresDSNFromEnv(), "postgres://postgres:pw@localhost:5432/maps?sslmode=disable"; got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestOpenRedisDisabled(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "false")
	if c := OpenRedisFromEnv(); c != nil {
		t.Error("client returned while disabled")
	}
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert, key := filepath.Join(dir, "tls", "cert.pem"), filepath.Join(dir, "tls", "key.pem")
	if err := EnsureSelfSignedCert(cert, key, "countymap.local"); err != nil {
		t.Fatal(err)
	}
	if _, err := tls.LoadX509KeyPair(cert, key); err != nil {
		t.Fatalf("generated pair unusable: %v", err)
	}
	st, _ := os.Stat(cert)
	if err := EnsureSelfSignedCert(cert, key, "other"); err != nil {
		t.Fatal(err)
	}
	st2, _ := os.Stat(cert)
	if !st.ModTime().Equal(st2.ModTime()) {
		t.Error("existing certificate was regenerated")
	}
}

func TestLoadCatalogSources(t *testing.T) {
	ctx := context.Background()
	cat, err := LoadCatalog(ctx, "embedded", "")
	if err != nil || cat.Len() == 0 {
		t.Fatalf("embedded: %v", err)
	}
	if _, err := LoadCatalog(ctx, "geojson", ""); err == nil {
		t.Error("geojson without path accepted")
	}
	if _, err := LoadCatalog(ctx, "shapefile", ""); err == nil {
		t.Error("unknown source accepted")
	}

	path := filepath.Join(t.TempDir(), "c.geojson")
	doc := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"Solo"},
	"geometry":{"type":"Polygon","coordinates":[[[-100,31],[-99,31],[-99,32],[-100,31]]]}}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err = LoadCatalog(ctx, "geojson", path)
	if err != nil {
		t.Fatal(err)
	}
	if names := cat.Names(); len(names) != 1 || names[0] != "Solo" {
		t.Errorf("names = %v", names)
	}
}
