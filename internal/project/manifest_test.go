package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "inputs = []\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	got, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(root)
	if filepath.Dir(got) != want {
		t.Errorf("manifest dir = %q, want %q", filepath.Dir(got), want)
	}

	if _, ok, err := FindManifest(t.TempDir()); ok || err != nil {
		t.Errorf("expected no manifest, ok=%v err=%v", ok, err)
	}
}

func TestDecodeManifest(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, `
inputs = ["metrics.yaml", "pings/"]

[parser]
allow_reserved = true
expire_by_version = 12
interesting = ["interesting.yaml"]

[output]
format = "json"
dir = "generated"
clear_patterns = ["*.json"]
options = { indent = "4" }

[cache]
enabled = true

[trace]
enabled = true
protocol = "http"
endpoint = "localhost:4318"
`)
	m, err := DecodeManifest(path)
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if len(m.Config.Inputs) != 2 || m.Config.Inputs[0] != filepath.Join(m.Root, "metrics.yaml") {
		t.Errorf("inputs not resolved: %v", m.Config.Inputs)
	}
	if m.Config.Output.Dir != filepath.Join(m.Root, "generated") {
		t.Errorf("output dir = %q", m.Config.Output.Dir)
	}
	if m.Config.Output.Options["indent"] != "4" {
		t.Errorf("options = %v", m.Config.Output.Options)
	}
	cfg := m.Config.ModelConfig()
	if !cfg.AllowReserved || cfg.ExpireByVersion != 12 || len(cfg.Interesting) != 1 {
		t.Errorf("unexpected model config %+v", cfg)
	}
}

func TestDecodeManifestErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "[parser]\nallow_everything = true\n",
		"bad toml":       "inputs = [\n",
		"escaping input": "inputs = [\"../outside.yaml\"]\n",
		"bad protocol":   "[trace]\nprotocol = \"udp\"\n",
		"negative":       "[parser]\nexpire_by_version = -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), body)
			_, err := DecodeManifest(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), ManifestName) {
				t.Errorf("error should name the manifest: %v", err)
			}
		})
	}
}
