package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateEmbedded(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "")
	out, err := run(t, "validate")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"counties: ", "unassigned: [Bexar]", "duplicate city: Del Rio"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := run(t, "validate", "--strict"); err == nil {
		t.Error("strict validate passed with unassigned counties")
	}
}

func TestExportLayers(t *testing.T) {
	dir := t.TempDir()
	for _, layer := range []string{"counties", "regions", "cities"} {
		path := filepath.Join(dir, layer+".geojson")
		if _, err := run(t, "export", "--layer", layer, "-o", path); err != nil {
			t.Fatalf("%s: %v", layer, err)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(b, []byte(`"FeatureCollection"`)) {
			t.Errorf("%s: not a feature collection", layer)
		}
	}
	if _, err := run(t, "export", "--layer", "rivers"); err == nil {
		t.Error("unknown layer accepted")
	}
}

func TestImportRejectsPostgresSource(t *testing.T) {
	if _, err := run(t, "import", "--source", "postgres"); err == nil {
		t.Error("import from postgres accepted")
	}
}
