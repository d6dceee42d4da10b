package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "tenantgate.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if p := os.Getenv("TENANTGATE_CONFIG"); p != "" {
		path = p
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TENANTGATE_PORT")
	setString(&cfg.Server.Environment, "TENANTGATE_ENV")
	setString(&cfg.Server.PublicBaseURL, "TENANTGATE_PUBLIC_BASE_URL")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "TENANTGATE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "TENANTGATE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "TENANTGATE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "TENANTGATE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "TENANTGATE_PG_HEALTH_CHECK")
	setDuration(&cfg.Postgres.QueryTimeout, "TENANTGATE_PG_QUERY_TIMEOUT")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Subject, "TENANTGATE_NATS_SUBJECT")

	setString(&cfg.Logging.Level, "TENANTGATE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TENANTGATE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "TENANTGATE_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "TENANTGATE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "TENANTGATE_BREAKER_TIMEOUT")

	setFloat64(&cfg.Rate.RequestsPerSecond, "TENANTGATE_RATE_RPS")
	setInt(&cfg.Rate.Burst, "TENANTGATE_RATE_BURST")
	setDuration(&cfg.Rate.MaxIdleTime, "TENANTGATE_RATE_MAX_IDLE_TIME")

	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.OTEL.ServiceVersion, "TENANTGATE_VERSION")
	setFloat64(&cfg.OTEL.SampleRatio, "OTEL_TRACE_SAMPLE_RATIO")

	// Session cookie
	setString(&cfg.Session.CookieName, "TENANTGATE_COOKIE_NAME")
	setString(&cfg.Session.Domain, "TENANTGATE_COOKIE_DOMAIN")
	setString(&cfg.Session.SameSite, "TENANTGATE_COOKIE_SAMESITE")
	setString(&cfg.Session.TenantCookieName, "TENANTGATE_TENANT_COOKIE_NAME")
	setBool(&cfg.Session.Refresh, "TENANTGATE_SESSION_REFRESH")

	// Identity provider
	setString(&cfg.Identity.KratosURL, "KRATOS_PUBLIC_URL")
	setDuration(&cfg.Identity.Timeout, "TENANTGATE_IDENTITY_TIMEOUT")

	// Gate
	setString(&cfg.Gate.PortalURL, "TENANTGATE_PORTAL_URL")
	setString(&cfg.Gate.OnboardingURL, "TENANTGATE_ONBOARDING_URL")
	setString(&cfg.Gate.ForbiddenPath, "TENANTGATE_FORBIDDEN_PATH")
	setStrings(&cfg.Gate.PublicPaths, "TENANTGATE_PUBLIC_PATHS")
	setStrings(&cfg.Gate.PublicPrefixes, "TENANTGATE_PUBLIC_PREFIXES")
	setStrings(&cfg.Gate.AuthOnlyPaths, "TENANTGATE_AUTH_ONLY_PATHS")
	setString(&cfg.Gate.MinTier, "TENANTGATE_MIN_TIER")
	setBool(&cfg.Gate.EnforceTenancy, "TENANTGATE_ENFORCE_TENANCY")

	// Cache
	setDuration(&cfg.Cache.TenantTTL, "TENANTGATE_CACHE_TENANT_TTL")
	setInt64(&cfg.Cache.MaxTenants, "TENANTGATE_CACHE_MAX_TENANTS")

	setString(&cfg.Upstream.URL, "TENANTGATE_UPSTREAM_URL")
}

var validTiers = map[string]bool{"customer": true, "tenant": true, "system": true}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch cfg.Server.Environment {
	case EnvLocal, EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("server.environment %q must be local, development or production", cfg.Server.Environment)
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	if cfg.Session.Domain == "" && !cfg.Server.IsLocal() {
		return errors.New("session.domain is required outside local development")
	}
	if cfg.Identity.KratosURL == "" {
		return errors.New("identity.kratos_url is required")
	}
	if cfg.Identity.Timeout <= 0 {
		return errors.New("identity.timeout must be > 0")
	}
	if err := validateURL("gate.portal_url", cfg.Gate.PortalURL); err != nil {
		return err
	}
	if err := validateURL("gate.onboarding_url", cfg.Gate.OnboardingURL); err != nil {
		return err
	}
	if !strings.HasPrefix(cfg.Gate.ForbiddenPath, "/") {
		return errors.New("gate.forbidden_path must start with /")
	}
	for _, p := range cfg.Gate.AuthOnlyPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("gate.auth_only_paths entry %q must start with /", p)
		}
	}
	if !validTiers[cfg.Gate.MinTier] {
		return fmt.Errorf("gate.min_tier %q is not a known tier", cfg.Gate.MinTier)
	}
	for _, rule := range cfg.Gate.TierRules {
		if !strings.HasPrefix(rule.Prefix, "/") {
			return fmt.Errorf("gate.tier_rules prefix %q must start with /", rule.Prefix)
		}
		if !validTiers[rule.Tier] {
			return fmt.Errorf("gate.tier_rules tier %q is not a known tier", rule.Tier)
		}
	}
	if cfg.Server.PublicBaseURL != "" {
		if err := validateURL("server.public_base_url", cfg.Server.PublicBaseURL); err != nil {
			return err
		}
	}
	if cfg.Upstream.URL != "" {
		if err := validateURL("upstream.url", cfg.Upstream.URL); err != nil {
			return err
		}
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", field)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setStrings parses a comma-separated list.
func setStrings(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
