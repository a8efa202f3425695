package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/creachadair/flatjson"
)

// EnvPrefix is the prefix of environment variables that override settings.
const EnvPrefix = "WHOSALIVE_"

// initialTokens is the initial token capacity for parsing a JSON config.
const initialTokens = 64

// configNames are the file names searched for in the user config directory.
var configNames = []string{"config.yaml", "config.yml", "config.jwcc", "config.json"}

// Find returns the path of the user configuration file, or "" if there is
// none.
func Find() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range configNames {
		path := filepath.Join(dir, "whosalive", name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load returns the default configuration updated from the file at path (if
// non-empty) and then from the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := Parse(cfg, filepath.Ext(path), data); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := LoadEnv(cfg, os.Getenv); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse updates cfg from data in the format indicated by the file extension
// ext: YAML for ".yaml" and ".yml", JSON with comments and trailing commas
// for ".json", ".jwcc" and ".hujson". Settings absent from data are not
// changed.
func Parse(cfg *Config, ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse YAML: %w", err)
		}
		return nil
	case ".json", ".jwcc", ".hujson":
		std, err := hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("parse JWCC: %w", err)
		}
		return parseJSON(cfg, std)
	default:
		return fmt.Errorf("unknown config format %q", ext)
	}
}

// jsonSettings are the members recognized in a JSON config object, and the
// functions that apply their values.
var jsonSettings = []struct {
	name string
	set  func(cfg *Config, data []byte, toks flatjson.Tokens, val int) error
}{
	{"channels", func(cfg *Config, data []byte, toks flatjson.Tokens, val int) error {
		if k := toks[val].Kind; k != flatjson.Array {
			return fmt.Errorf("got %v, want array", k)
		}
		var chans []string
		for c := toks.Children(val); c.Valid(); c = c.Next() {
			s, err := stringValue(data, c.Token())
			if err != nil {
				return err
			}
			chans = append(chans, s)
		}
		cfg.Channels = chans
		return nil
	}},
	{"interval", durationSetting(func(c *Config) *time.Duration { return &c.Interval })},
	{"timeout", durationSetting(func(c *Config) *time.Duration { return &c.Timeout })},
	{"base_url", stringSetting(func(c *Config) *string { return &c.BaseURL })},
	{"client_id", stringSetting(func(c *Config) *string { return &c.ClientID })},
	{"cache_dir", stringSetting(func(c *Config) *string { return &c.CacheDir })},
	{"log_level", stringSetting(func(c *Config) *string { return &c.LogLevel })},
}

func stringSetting(field func(*Config) *string) func(*Config, []byte, flatjson.Tokens, int) error {
	return func(cfg *Config, data []byte, toks flatjson.Tokens, val int) error {
		s, err := stringValue(data, toks[val])
		if err == nil {
			*field(cfg) = s
		}
		return err
	}
}

func durationSetting(field func(*Config) *time.Duration) func(*Config, []byte, flatjson.Tokens, int) error {
	return func(cfg *Config, data []byte, toks flatjson.Tokens, val int) error {
		d, err := durationValue(data, toks[val])
		if err == nil {
			*field(cfg) = d
		}
		return err
	}
}

// parseJSON updates cfg from a standard JSON object.
func parseJSON(cfg *Config, data []byte) error {
	p := flatjson.NewParser(make([]flatjson.Token, initialTokens))
	for {
		if _, st := p.Parse(data); st != flatjson.NotEnoughTokens {
			break
		}
		if err := p.Grow(make([]flatjson.Token, 2*p.Cap())); err != nil {
			return fmt.Errorf("parse JSON: %w", err)
		}
	}
	switch st := p.Status(); st {
	case flatjson.Success:
	case flatjson.InvalidCharacter:
		return fmt.Errorf("parse JSON: %w", p.Err())
	default:
		return fmt.Errorf("parse JSON: %v", st)
	}

	toks := p.Tokens()
	if len(toks) == 0 {
		return nil
	} else if toks[0].Kind != flatjson.Object {
		return fmt.Errorf("config is a JSON %v, not an object", toks[0].Kind)
	}

	for it := toks.Root(); it.Valid(); it = it.Next() {
		if !knownSetting(data, it.Token()) {
			return fmt.Errorf("unknown setting %q", it.Token().Text(data))
		}
	}
	for _, s := range jsonSettings {
		val, ok := toks.Lookup(data, 0, s.name)
		if !ok {
			continue
		}
		if err := s.set(cfg, data, toks, val); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func knownSetting(data []byte, key flatjson.Token) bool {
	for _, s := range jsonSettings {
		if flatjson.TextEquals(data, key, s.name) {
			return true
		}
	}
	return false
}

func stringValue(data []byte, tok flatjson.Token) (string, error) {
	if tok.Kind != flatjson.String {
		return "", fmt.Errorf("got %v, want string", tok.Kind)
	}
	s, err := tok.Unquote(data)
	return string(s), err
}

// durationValue accepts a duration string such as "90s", or a number of
// seconds.
func durationValue(data []byte, tok flatjson.Token) (time.Duration, error) {
	switch tok.Kind {
	case flatjson.String:
		return time.ParseDuration(string(tok.Text(data)))
	case flatjson.Primitive:
		secs, err := strconv.ParseFloat(string(tok.Text(data)), 64)
		if err != nil {
			return 0, err
		}
		return time.Duration(secs * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("got %v, want duration", tok.Kind)
	}
}

// LoadEnv updates cfg from environment variables, as reported by getenv.
// Variables that are unset or empty are ignored.
func LoadEnv(cfg *Config, getenv func(string) string) error {
	var errs []error
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v := getenv(EnvPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	if v := getenv(EnvPrefix + "CHANNELS"); v != "" {
		var chans []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				chans = append(chans, c)
			}
		}
		cfg.Channels = chans
	}
	dur("INTERVAL", &cfg.Interval)
	dur("TIMEOUT", &cfg.Timeout)
	str("BASE_URL", &cfg.BaseURL)
	str("CLIENT_ID", &cfg.ClientID)
	str("CACHE_DIR", &cfg.CacheDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	return errors.Join(errs...)
}
