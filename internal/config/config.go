package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del sitio, cargada desde YAML.
// Los secretos (DSN, SMTP password, redis) pueden overridearse por env.
type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Logs struct {
		Level string `yaml:"level"`
	} `yaml:"logs"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres (único por ahora)
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	// JWT configura el codec de tokens de sesión propios (RS256).
	JWT struct {
		Issuer     string `yaml:"issuer"`
		Audience   string `yaml:"audience"`
		PrivateKey string `yaml:"private_key"` // path al PEM; sin esto no se puede firmar
		PublicKey  string `yaml:"public_key"`  // path al PEM
		AccessTTL  string `yaml:"access_ttl"`  // default 1h
	} `yaml:"jwt"`

	// Google configura la verificación de ID tokens externos.
	Google struct {
		ClientID string `yaml:"client_id"` // audience esperada
		// HostedDomain es el dominio de la organización; tokens de otro
		// dominio se rechazan en verificación.
		HostedDomain string `yaml:"hosted_domain"`
		JWKSURL      string `yaml:"jwks_url"`
		// PinnedPublicKey: path a un PEM fijo para tests/offline.
		// Si está seteado NO se consulta el JWKS remoto.
		PinnedPublicKey string `yaml:"pinned_public_key"`
	} `yaml:"google"`

	Auth struct {
		Session struct {
			CookieName string `yaml:"cookie_name"`
			TTL        string `yaml:"ttl"`
			Secure     bool   `yaml:"secure"`
		} `yaml:"session"`
		// BootstrapAdmins: emails que reciben ADMIN en su primer sign-in.
		BootstrapAdmins []string `yaml:"bootstrap_admins"`
	} `yaml:"auth"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		TLS      string `yaml:"tls"` // auto | starttls | ssl | none
	} `yaml:"smtp"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Load lee y parsea el YAML, aplica defaults y overrides de entorno.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "1h"
	}
	if c.Google.JWKSURL == "" {
		c.Google.JWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	}
	if c.Auth.Session.CookieName == "" {
		c.Auth.Session.CookieName = "socis_session"
	}
	if c.Auth.Session.TTL == "" {
		c.Auth.Session.TTL = "24h"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}

	// env overrides para secretos
	if v := env("SOCIS_DB_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := env("SOCIS_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := env("SOCIS_SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}

	return &c, nil
}

// Validate chequea lo que tiene que estar presente para arrancar.
// Config rota = el proceso no arranca; nunca un 500 por request.
func (c *Config) Validate() error {
	var missing []string
	if c.JWT.Issuer == "" {
		missing = append(missing, "jwt.issuer")
	}
	if c.JWT.Audience == "" {
		missing = append(missing, "jwt.audience")
	}
	if c.JWT.PrivateKey == "" {
		missing = append(missing, "jwt.private_key")
	}
	if c.JWT.PublicKey == "" {
		missing = append(missing, "jwt.public_key")
	}
	if c.Google.ClientID == "" {
		missing = append(missing, "google.client_id")
	}
	if c.Google.HostedDomain == "" {
		missing = append(missing, "google.hosted_domain")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: faltan claves requeridas: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SessionTTL parsea auth.session.ttl (default 24h).
func (c *Config) SessionTTL() time.Duration {
	return parseDur(c.Auth.Session.TTL, 24*time.Hour)
}

// AccessTTL parsea jwt.access_ttl (default 1h).
func (c *Config) AccessTTL() time.Duration {
	return parseDur(c.JWT.AccessTTL, time.Hour)
}

// LoginRateWindow parsea rate.login.window (default 1m).
func (c *Config) LoginRateWindow() time.Duration {
	return parseDur(c.Rate.Login.Window, time.Minute)
}

// MemoryCacheTTL parsea cache.memory.default_ttl (default 2m).
func (c *Config) MemoryCacheTTL() time.Duration {
	return parseDur(c.Cache.Memory.DefaultTTL, 2*time.Minute)
}

// IsBootstrapAdmin indica si el email está en la lista de bootstrap admins.
// Case-insensitive.
func (c *Config) IsBootstrapAdmin(email string) bool {
	for _, e := range c.Auth.BootstrapAdmins {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

func parseDur(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
