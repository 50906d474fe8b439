package cli

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"golang.org/x/xerrors"

	"go.nownabe.dev/whloader"
	"go.nownabe.dev/whloader/contrib/handlers"
)

// Settings is the merged configuration of one run.
// Precedence (highest to lowest): flags > env vars > defaults.
type Settings struct {
	URL       string `koanf:"url"`
	UserAgent string `koanf:"user_agent"`
	Format    string `koanf:"format"`
	SkipHead  uint   `koanf:"skip_head"`
	SkipTail  uint   `koanf:"skip_tail"`

	Platform             string `koanf:"platform"`
	Account              string `koanf:"account"`
	User                 string `koanf:"user"`
	Authenticator        string `koanf:"authenticator"`
	Password             string `koanf:"password"`
	Token                string `koanf:"token"`
	PrivateKeyPath       string `koanf:"private_key_path"`
	PrivateKeyPassphrase string `koanf:"private_key_passphrase"`
	Database             string `koanf:"database"`
	Warehouse            string `koanf:"warehouse"`
	Role                 string `koanf:"role"`
	Schema               string `koanf:"schema"`
	Table                string `koanf:"table"`

	MaxTextWidth int    `koanf:"max_text_width"`
	OnCollision  string `koanf:"on_collision"`
	TempDir      string `koanf:"temp_dir"`

	SlackToken   string `koanf:"slack_token"`
	SlackChannel string `koanf:"slack_channel"`

	LogLevel string `koanf:"log_level"`
	Pretty   bool   `koanf:"pretty"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"url":            handlers.LabResultsURL,
		"user_agent":     handlers.BrowserUserAgent,
		"format":         "csv",
		"platform":       "snowflake",
		"schema":         handlers.WaterQualitySchema,
		"table":          handlers.LabResultsTable,
		"max_text_width": whloader.DefaultMaxTextWidth,
		"on_collision":   "reject",
		"log_level":      "info",
	}
}

// envPrefixes maps SNOWFLAKE_DATABASE to database and WHLOAD_TABLE to table.
var envPrefixes = []string{"SNOWFLAKE_", "WHLOAD_"}

// LoadSettings merges defaults, the environment (after loading envFiles if they
// exist) and the explicitly set flags.
func LoadSettings(flags *pflag.FlagSet, envFiles ...string) (*Settings, error) {
	if len(envFiles) > 0 {
		_ = godotenv.Load(envFiles...)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, xerrors.Errorf("failed to load defaults: %w", err)
	}

	for _, prefix := range envPrefixes {
		prefix := prefix
		if err := k.Load(env.Provider(prefix, ".", func(s string) string {
			return strings.ToLower(strings.TrimPrefix(s, prefix))
		}), nil); err != nil {
			return nil, xerrors.Errorf("failed to load env vars: %w", err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, xerrors.Errorf("failed to load flags: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, xerrors.Errorf("unable to decode config: %w", err)
	}

	return &s, nil
}

// Config returns the destination part of s.
func (s *Settings) Config() whloader.Config {
	return whloader.Config{
		Platform:             s.Platform,
		Account:              s.Account,
		User:                 s.User,
		Authenticator:        s.Authenticator,
		Password:             s.Password,
		Token:                s.Token,
		PrivateKeyPath:       s.PrivateKeyPath,
		PrivateKeyPassphrase: s.PrivateKeyPassphrase,
		Database:             s.Database,
		Warehouse:            s.Warehouse,
		Role:                 s.Role,
		Schema:               s.Schema,
		Table:                s.Table,
	}
}

// Handler builds the handler described by s.
func (s *Settings) Handler() (*whloader.Handler, error) {
	policy, err := whloader.ParseCollisionPolicy(s.OnCollision)
	if err != nil {
		return nil, err
	}

	table := handlers.Table{Schema: s.Schema, Table: s.Table}

	var h *whloader.Handler
	switch strings.ToLower(s.Format) {
	case "", "csv":
		h = handlers.CSVDataset("whload", s.URL, s.Config(), table, s.notifier())
		if s.SkipHead > 0 || s.SkipTail > 0 {
			h.Parser = handlers.PartialCSVParser(s.SkipHead, s.SkipTail, "\n")
		}
	case "xls":
		h = handlers.XLSDataset("whload", s.URL, s.Config(), table, s.notifier())
	default:
		return nil, xerrors.Errorf("unsupported format %q", s.Format)
	}

	h.UserAgent = s.UserAgent
	h.OnCollision = policy
	h.MaxTextWidth = s.MaxTextWidth
	h.TempDir = s.TempDir

	return h, nil
}

func (s *Settings) notifier() whloader.Notifier {
	if s.SlackToken == "" || s.SlackChannel == "" {
		return nil
	}

	return &whloader.SlackNotifier{
		Token:    s.SlackToken,
		Channel:  s.SlackChannel,
		Username: "whload",
	}
}
