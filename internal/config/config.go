// Package config assembles runtime configuration from defaults, an optional
// .env file, PRICEWATCH_* environment variables and CLI flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/law-makers/pricewatch/internal/utils/headers"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	Quiet    bool

	// Browser
	Renderer   string
	Headless   bool
	Stealth    bool
	ChromePath string
	UserAgent  string
	Proxies    []string
	Headers    map[string]string
	PoolSize   int

	// Search behaviour
	Cap          int
	StrictBrand  bool
	Parallel     int
	WaitOverride time.Duration
	EscapeQuery  bool
	Only         []string
	RulesPath    string

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64

	// HTTP API
	Addr              string
	APIRateLimitRPS   float64
	APIRateLimitBurst int
	CORSOrigins       []string
}

// Default returns a Config populated only from the package defaults
func Default() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		Renderer:          DefaultRenderer,
		Headless:          DefaultBrowserHeadless,
		UserAgent:         DefaultUserAgent,
		Headers:           map[string]string{},
		PoolSize:          DefaultBrowserPoolSize,
		Cap:               DefaultCap,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		Addr:              DefaultAddr,
		APIRateLimitRPS:   DefaultAPIRateLimitRPS,
		APIRateLimitBurst: DefaultAPIRateLimitBurst,
	}
}

// Load builds a Config by combining defaults, the .env file, environment
// variables and CLI flags. Caller should pass the running *cobra.Command so
// both persistent and local flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	envFile := os.Getenv(EnvPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Default()
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("USER_AGENT"); ok {
		cfg.UserAgent = v
	}
	if v, ok := get("PROXY"); ok {
		cfg.Proxies = splitList(v)
	}
	if v, ok := get("CHROME_PATH"); ok {
		cfg.ChromePath = v
	}
	if v, ok := get("RENDERER"); ok {
		cfg.Renderer = v
	}
	if v, ok := get("RULES"); ok {
		cfg.RulesPath = v
	}
	if v, ok := get("ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	var err error
	if v, ok := get("HEADLESS"); ok {
		if cfg.Headless, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("%sHEADLESS: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("STEALTH"); ok {
		if cfg.Stealth, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("%sSTEALTH: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("POOL_SIZE"); ok {
		if cfg.PoolSize, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("%sPOOL_SIZE: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("CAP"); ok {
		if cfg.Cap, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("%sCAP: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("CACHE_TTL"); ok {
		if cfg.CacheTTL, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("%sCACHE_TTL: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("RATE_LIMIT_RPS"); ok {
		if cfg.APIRateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("%sRATE_LIMIT_RPS: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("HEADERS"); ok {
		h, err := headers.Parse(strings.Split(v, ";"))
		if err != nil {
			return fmt.Errorf("%sHEADERS: %w", EnvPrefix, err)
		}
		cfg.Headers = headers.Merge(cfg.Headers, h)
	}

	return nil
}

func applyFlags(cfg *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()

	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("verbose") {
		if v, _ := flags.GetBool("verbose"); v {
			cfg.LogLevel = "debug"
		}
	}
	if changed("quiet") {
		cfg.Quiet, _ = flags.GetBool("quiet")
	}
	if changed("json") {
		cfg.JSONLog, _ = flags.GetBool("json")
	}
	if changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if changed("proxy") {
		v, _ := flags.GetString("proxy")
		cfg.Proxies = splitList(v)
	}
	if changed("config") {
		cfg.RulesPath, _ = flags.GetString("config")
	}
	if changed("renderer") {
		cfg.Renderer, _ = flags.GetString("renderer")
	}
	if changed("headful") {
		if v, _ := flags.GetBool("headful"); v {
			cfg.Headless = false
		}
	}
	if changed("stealth") {
		cfg.Stealth, _ = flags.GetBool("stealth")
	}
	if changed("cap") {
		cfg.Cap, _ = flags.GetInt("cap")
	}
	if changed("strict-brand") {
		cfg.StrictBrand, _ = flags.GetBool("strict-brand")
	}
	if changed("parallel") {
		cfg.Parallel, _ = flags.GetInt("parallel")
	}
	if changed("pool-size") {
		cfg.PoolSize, _ = flags.GetInt("pool-size")
	}
	if changed("wait") {
		cfg.WaitOverride, _ = flags.GetDuration("wait")
	}
	if changed("escape-query") {
		cfg.EscapeQuery, _ = flags.GetBool("escape-query")
	}
	if changed("only") {
		v, _ := flags.GetString("only")
		cfg.Only = splitList(v)
	}
	if changed("header") {
		raw, _ := flags.GetStringArray("header")
		h, err := headers.Parse(raw)
		if err != nil {
			return err
		}
		cfg.Headers = headers.Merge(cfg.Headers, h)
	}
	if changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if changed("cors-origin") {
		cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origin")
	}
	if changed("rate-limit") {
		cfg.APIRateLimitRPS, _ = flags.GetFloat64("rate-limit")
	}
	if changed("cache-ttl") {
		cfg.CacheTTL, _ = flags.GetDuration("cache-ttl")
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
