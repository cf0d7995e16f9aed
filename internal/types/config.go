package types

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GeneratePlaceholder in a credential field asks the secrets provider to
// generate a random value for it.
const GeneratePlaceholder = "generate"

type Config struct {
	Host     Host     `yaml:"host"`
	Domain   string   `yaml:"domain"`
	WebRoot  string   `yaml:"web_root"`
	DataDir  string   `yaml:"data_dir"`
	Database Database `yaml:"database"`
	Admin    Admin    `yaml:"admin"`
	App      App      `yaml:"app"`
	StateDB  string   `yaml:"state_db"`
}

type Host struct {
	Address  string `yaml:"address"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	KeyPath  string `yaml:"key_path"`
	Local    bool   `yaml:"local"`
}

type Database struct {
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type Admin struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type App struct {
	Version        string   `yaml:"version"`
	Channel        string   `yaml:"channel"`
	PHPVersion     string   `yaml:"php_version"`
	Locale         string   `yaml:"locale"`
	PhoneRegion    string   `yaml:"phone_region"`
	LogLevel       int      `yaml:"log_level"`
	TrustedDomains []string `yaml:"trusted_domains"`
	ExtraApps      []string `yaml:"extra_apps"`
	TLSEmail       string   `yaml:"tls_email"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config: %v", err)
	}

	config.ApplyDefaults()
	return &config, nil
}

func (c *Config) ApplyDefaults() {
	if c.Host.Port == 0 {
		c.Host.Port = 22
	}
	if c.Host.Username == "" {
		c.Host.Username = "root"
	}
	if c.WebRoot == "" {
		c.WebRoot = "/var/www/nextcloud"
	}
	if c.DataDir == "" {
		c.DataDir = "/var/nextcloud-data"
	}
	if c.Database.Name == "" {
		c.Database.Name = "nextcloud"
	}
	if c.Database.User == "" {
		c.Database.User = "nextcloud"
	}
	if c.Admin.User == "" {
		c.Admin.User = "admin"
	}
	if c.App.Channel == "" {
		c.App.Channel = "latest"
	}
	if c.App.PHPVersion == "" {
		c.App.PHPVersion = "8.3"
	}
	if c.App.Locale == "" {
		c.App.Locale = "en"
	}
	if c.App.LogLevel == 0 {
		c.App.LogLevel = 2
	}
}

func (c *Config) Validate() error {
	if !c.Host.Local && c.Host.Address == "" {
		return fmt.Errorf("host address is required unless running in local mode")
	}
	if c.Domain == "" {
		return fmt.Errorf("domain is required")
	}
	return nil
}

// DomainIsFQDN reports whether the configured domain is a name certbot can
// issue for. Bare IP addresses and single-label hosts get no certificate.
func (c *Config) DomainIsFQDN() bool {
	if net.ParseIP(c.Domain) != nil {
		return false
	}
	return strings.Contains(c.Domain, ".")
}

// AllTrustedDomains is the trusted_domains list written to the application
// config store: the primary domain first, then any extras from the config.
func (c *Config) AllTrustedDomains() []string {
	domains := []string{c.Domain}
	for _, d := range c.App.TrustedDomains {
		if d != c.Domain {
			domains = append(domains, d)
		}
	}
	return domains
}

// AccessURL is the URL the operator reaches the installation at.
func (c *Config) AccessURL() string {
	scheme := "http"
	if c.DomainIsFQDN() {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Domain)
}
