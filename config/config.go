package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Service struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether the collaborator has an endpoint configured.
func (s Service) Enabled() bool { return s.URL != "" }

type Services struct {
	Tagger     Service `mapstructure:"tagger"`
	Summarizer Service `mapstructure:"summarizer"`
	Sentiment  Service `mapstructure:"sentiment"`
	Keyphrases Service `mapstructure:"keyphrases"`
}

type HTTP struct {
	Retries int           `mapstructure:"retries"`
	Backoff time.Duration `mapstructure:"backoff"`
}

// Rules points at optional YAML rule tables; empty paths use built-in tables.
type Rules struct {
	Lexicon   string `mapstructure:"lexicon"`
	Sentiment string `mapstructure:"sentiment"`
	Intent    string `mapstructure:"intent"`
	SOAP      string `mapstructure:"soap"`
}

// Transcript lists extra speaker roles recognised as tags besides the
// built-in ones.
type Transcript struct {
	Roles []string `mapstructure:"roles"`
}

type Narrative struct {
	MaxLength int `mapstructure:"max_length"`
	TopK      int `mapstructure:"top_k"`
}

type Cache struct {
	RedisAddr string        `mapstructure:"redis_addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type Events struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Server struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxRequestBytes int64         `mapstructure:"max_request_bytes"`
}

type Root struct {
	Pipeline struct {
		Name      string `mapstructure:"name"`
		Version   string `mapstructure:"version"`
		LogLvl    string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"pipeline"`
	Services   Services   `mapstructure:"services"`
	HTTP       HTTP       `mapstructure:"http"`
	Rules      Rules      `mapstructure:"rules"`
	Transcript Transcript `mapstructure:"transcript"`
	Narrative  Narrative  `mapstructure:"narrative"`
	Cache      Cache      `mapstructure:"cache"`
	Events     Events     `mapstructure:"events"`
	Server     Server     `mapstructure:"server"`
	Paths      struct {
		Outputs string `mapstructure:"outputs"`
	} `mapstructure:"paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "clinote")
	v.SetDefault("pipeline.version", "0.1.0")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "json")

	for _, svc := range []string{"tagger", "summarizer", "sentiment", "keyphrases"} {
		v.SetDefault("services."+svc+".url", "")
		v.SetDefault("services."+svc+".timeout", 20*time.Second)
	}
	v.SetDefault("services.summarizer.timeout", 60*time.Second)

	v.SetDefault("http.retries", 2)
	v.SetDefault("http.backoff", 200*time.Millisecond)

	v.SetDefault("rules.lexicon", "")
	v.SetDefault("rules.sentiment", "")
	v.SetDefault("rules.intent", "")
	v.SetDefault("rules.soap", "")

	v.SetDefault("transcript.roles", []string{})

	v.SetDefault("narrative.max_length", 600)
	v.SetDefault("narrative.top_k", 3)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "clinote.reports")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.max_request_bytes", 1<<20)

	v.SetDefault("paths.outputs", "outputs")
}

// Load reads configuration from path, or from the first conventional location
// that exists when path is empty. A missing file is not an error; defaults and
// CLINOTE_* environment variables still apply.
func Load(path string) (*Root, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("CLINOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("config", "config.yaml"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Root) Validate() error {
	var errs []error
	if c.Narrative.MaxLength <= 0 {
		errs = append(errs, fmt.Errorf("narrative.max_length must be positive, got %d", c.Narrative.MaxLength))
	}
	if c.Narrative.TopK <= 0 {
		errs = append(errs, fmt.Errorf("narrative.top_k must be positive, got %d", c.Narrative.TopK))
	}
	if c.HTTP.Retries < 0 {
		errs = append(errs, fmt.Errorf("http.retries must not be negative"))
	}
	for _, s := range []struct {
		name string
		svc  Service
	}{
		{"tagger", c.Services.Tagger},
		{"summarizer", c.Services.Summarizer},
		{"sentiment", c.Services.Sentiment},
		{"keyphrases", c.Services.Keyphrases},
	} {
		if s.svc.Timeout < 0 {
			errs = append(errs, fmt.Errorf("services.%s.timeout must not be negative", s.name))
		}
		if !s.svc.Enabled() {
			continue
		}
		if u, err := url.Parse(s.svc.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("services.%s.url %q is not an absolute URL", s.name, s.svc.URL))
		}
	}
	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		errs = append(errs, fmt.Errorf("events.topic is required when brokers are configured"))
	}
	return errors.Join(errs...)
}
