package sites

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSitesYAML = `sites:
  - name: yoyaku.io
    import_url: https://www.yoyaku.io/wp-load.php
    import_key: secret-import-key
    stock_read_url: https://www.yoyaku.io/wp-json/yoyaku/v2/stock/targeted
    recalc_url: https://www.yoyaku.io/wp-json/yoyaku/v3/stock/recalculate
    api_token: bearer-token
    cloudflare_protected: true
    imports:
      new: "852"
      preorder: "717"
      stock: "803"
      picking: "775"
      export: "526"
      delete: "810"
  - name: yydistribution.fr
    import_url: https://www.yydistribution.fr/wp-load.php
    import_key: secret-import-key
    imports:
      new: "935"
      stock: "953"
      release_date: "941"
`

func writeSitesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write sites file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	p, err := Load(writeSitesFile(t, sampleSitesYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	site, err := p.Lookup("yoyaku.io")
	if err != nil {
		t.Fatalf("Lookup(yoyaku.io) failed: %v", err)
	}
	if site.ImportURL != "https://www.yoyaku.io/wp-load.php" {
		t.Errorf("unexpected ImportURL: %s", site.ImportURL)
	}
	if !site.CloudflareProtected {
		t.Error("expected yoyaku.io to be cloudflare protected")
	}

	id, err := site.ImportID("preorder")
	if err != nil {
		t.Fatalf("ImportID(preorder) failed: %v", err)
	}
	if id != "717" {
		t.Errorf("expected import ID 717, got %s", id)
	}
}

func TestLoad_UnknownSite(t *testing.T) {
	p, err := Load(writeSitesFile(t, sampleSitesYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := p.Lookup("barcelona.yoyaku.io"); err == nil {
		t.Error("expected error for unknown site")
	}
}

func TestLoad_UnknownImportKind(t *testing.T) {
	p, err := Load(writeSitesFile(t, sampleSitesYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	site, err := p.Lookup("yydistribution.fr")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if _, err := site.ImportID("picking"); err == nil {
		t.Error("expected error for unconfigured import kind")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	if _, err := Load(writeSitesFile(t, "sites: []\n")); err == nil {
		t.Error("expected error for empty sites list")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNames_Sorted(t *testing.T) {
	p := NewProvider([]Site{
		{Name: "yydistribution.fr"},
		{Name: "barcelona.yoyaku.io"},
		{Name: "yoyaku.io"},
	})

	names := p.Names()
	want := []string{"barcelona.yoyaku.io", "yoyaku.io", "yydistribution.fr"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}
