// Package sites resolves site names to endpoint URLs and credentials.
//
// The lookup table is loaded once from a YAML file and never mutated at
// runtime; components receive a Provider at construction time instead of
// reaching for ambient globals.
package sites

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Site holds the endpoints and credentials for one WordPress/WooCommerce site.
type Site struct {
	// Name is the canonical site identifier, e.g. "yoyaku.io".
	Name string `yaml:"name"`

	// ImportURL is the WP All Import entry point, e.g.
	// "https://www.yoyaku.io/wp-load.php".
	ImportURL string `yaml:"import_url"`

	// ImportKey is the shared secret for the import endpoint.
	ImportKey string `yaml:"import_key"`

	// StockReadURL is the batched stock read endpoint
	// (yoyaku/v2/stock/targeted style).
	StockReadURL string `yaml:"stock_read_url"`

	// RecalcURL is the targeted recalculation endpoint.
	RecalcURL string `yaml:"recalc_url"`

	// APIToken is the bearer token for the stock read and recalc endpoints.
	APIToken string `yaml:"api_token"`

	// CloudflareProtected marks hosts that reject non-browser requests.
	CloudflareProtected bool `yaml:"cloudflare_protected"`

	// Imports maps an import kind (new, preorder, stock, picking, export,
	// delete, release_date) to its WP All Import numeric ID.
	Imports map[string]string `yaml:"imports"`

	// WebhookURL, if set, receives a fire-and-forget POST after a
	// completed import.
	WebhookURL string `yaml:"webhook_url,omitempty"`
}

// ImportID returns the WP All Import ID configured for the given kind.
func (s Site) ImportID(kind string) (string, error) {
	id, ok := s.Imports[kind]
	if !ok {
		return "", fmt.Errorf("site %s has no %q import configured", s.Name, kind)
	}
	return id, nil
}

// Provider is an immutable site lookup table.
type Provider struct {
	sites map[string]Site
}

type sitesFile struct {
	Sites []Site `yaml:"sites"`
}

// Load reads the sites file and builds a Provider.
func Load(path string) (*Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var f sitesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sites file %s: %w", path, err)
	}
	if len(f.Sites) == 0 {
		return nil, fmt.Errorf("sites file %s defines no sites", path)
	}

	for _, s := range f.Sites {
		if s.Name == "" {
			return nil, fmt.Errorf("sites file %s: site with empty name", path)
		}
		if s.ImportURL == "" && s.StockReadURL == "" {
			return nil, fmt.Errorf("site %s defines neither import_url nor stock_read_url", s.Name)
		}
	}

	return NewProvider(f.Sites), nil
}

// NewProvider builds a Provider from an explicit site list.
func NewProvider(list []Site) *Provider {
	m := make(map[string]Site, len(list))
	for _, s := range list {
		m[s.Name] = s
	}
	return &Provider{sites: m}
}

// Lookup returns the site with the given name.
func (p *Provider) Lookup(name string) (Site, error) {
	s, ok := p.sites[name]
	if !ok {
		return Site{}, fmt.Errorf("unknown site %q", name)
	}
	return s, nil
}

// Names returns all configured site names, sorted.
func (p *Provider) Names() []string {
	names := make([]string, 0, len(p.sites))
	for n := range p.sites {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
