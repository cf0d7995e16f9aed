package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, 22, cfg.Host.Port)
	assert.Equal(t, "root", cfg.Host.Username)
	assert.Equal(t, "/var/www/nextcloud", cfg.WebRoot)
	assert.Equal(t, "nextcloud", cfg.Database.Name)
	assert.Equal(t, "admin", cfg.Admin.User)
	assert.Equal(t, "8.3", cfg.App.PHPVersion)
	assert.Equal(t, 2, cfg.App.LogLevel)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provision.yaml")
	content := `
host:
  address: 203.0.113.7
  username: ubuntu
domain: cloud.example.com
database:
  password: generate
app:
  trusted_domains:
    - cloud.internal
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.7", cfg.Host.Address)
	assert.Equal(t, "ubuntu", cfg.Host.Username)
	assert.Equal(t, "cloud.example.com", cfg.Domain)
	assert.Equal(t, GeneratePlaceholder, cfg.Database.Password)
	assert.Equal(t, 22, cfg.Host.Port, "defaults applied after load")
}

func TestValidate(t *testing.T) {
	cfg := Config{Domain: "cloud.example.com"}
	cfg.ApplyDefaults()
	assert.Error(t, cfg.Validate(), "remote mode requires a host address")

	cfg.Host.Local = true
	assert.NoError(t, cfg.Validate())

	cfg.Domain = ""
	assert.Error(t, cfg.Validate())
}

func TestDomainIsFQDN(t *testing.T) {
	cases := map[string]bool{
		"cloud.example.com": true,
		"203.0.113.7":       false,
		"2001:db8::1":       false,
		"localhost":         false,
	}
	for domain, want := range cases {
		cfg := Config{Domain: domain}
		assert.Equal(t, want, cfg.DomainIsFQDN(), "domain %s", domain)
	}
}

func TestAllTrustedDomains(t *testing.T) {
	cfg := Config{Domain: "cloud.example.com"}
	cfg.App.TrustedDomains = []string{"cloud.internal", "cloud.example.com"}

	assert.Equal(t, []string{"cloud.example.com", "cloud.internal"}, cfg.AllTrustedDomains())
}

func TestAccessURLScheme(t *testing.T) {
	cfg := Config{Domain: "cloud.example.com"}
	assert.Equal(t, "https://cloud.example.com", cfg.AccessURL())

	cfg.Domain = "203.0.113.7"
	assert.Equal(t, "http://203.0.113.7", cfg.AccessURL())
}
