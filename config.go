package whloader

import (
	"crypto/rsa"
	"encoding/pem"
	"errors"
	"net/url"
	"strings"

	"github.com/snowflakedb/gosnowflake"
	"github.com/spf13/afero"
	"github.com/youmark/pkcs8"
	"golang.org/x/xerrors"
)

// Config identifies the destination table and how to reach it.
// Nothing in this package reads the environment; callers fill Config.
type Config struct {
	// Platform is "snowflake" (default) or "bigquery".
	Platform string

	Account       string
	User          string
	Authenticator string
	Password      string
	Token         string

	// PrivateKeyPath points to a PKCS#8 PEM file for key-pair authentication.
	PrivateKeyPath       string
	PrivateKeyPassphrase string

	// Database is the Snowflake database or the BigQuery project.
	Database  string
	Warehouse string
	Role      string

	// Schema is the Snowflake schema or the BigQuery dataset.
	Schema string
	Table  string
}

// Normalize upper-cases the Snowflake account, user and object names so unquoted
// identifiers match. BigQuery names are case-sensitive and left untouched.
func (c *Config) Normalize() {
	if c.dialect() != Snowflake {
		return
	}

	c.Account = strings.ToUpper(c.Account)
	c.User = strings.ToUpper(c.User)
	c.Database = strings.ToUpper(c.Database)
	c.Warehouse = strings.ToUpper(c.Warehouse)
	c.Role = strings.ToUpper(c.Role)
	c.Schema = strings.ToUpper(c.Schema)
	c.Table = strings.ToUpper(c.Table)
}

// Validate checks the fields needed for the platform.
func (c *Config) Validate() error {
	if _, err := DialectFor(c.Platform); err != nil {
		return err
	}

	var missing []string
	add := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}

	add("database", c.Database)
	add("schema", c.Schema)
	add("table", c.Table)

	if c.dialect() == Snowflake {
		add("account", c.Account)
		add("user", c.User)
	}

	if len(missing) > 0 {
		return xerrors.Errorf("missing destination config: %s", strings.Join(missing, ", "))
	}

	return nil
}

// TablePath returns the destination table.
func (c *Config) TablePath() TablePath {
	return TablePath{Database: c.Database, Schema: c.Schema, Table: c.Table}
}

func (c *Config) dialect() Dialect {
	d, err := DialectFor(c.Platform)
	if err != nil {
		return Snowflake
	}
	return d
}

// DSN builds the gosnowflake data source name.
func (c *Config) DSN(fs afero.Fs) (string, error) {
	sc := gosnowflake.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password,
		Token:     c.Token,
		Database:  c.Database,
		Schema:    c.Schema,
		Warehouse: c.Warehouse,
		Role:      c.Role,
	}

	auth, oktaURL, err := authType(c.Authenticator)
	if err != nil {
		return "", err
	}
	sc.Authenticator = auth
	sc.OktaURL = oktaURL

	if c.PrivateKeyPath != "" {
		key, err := c.privateKey(fs)
		if err != nil {
			return "", err
		}
		sc.PrivateKey = key
		sc.Authenticator = gosnowflake.AuthTypeJwt
	}

	return gosnowflake.DSN(&sc)
}

func (c *Config) privateKey(fs afero.Fs) (*rsa.PrivateKey, error) {
	b, err := afero.ReadFile(fs, c.PrivateKeyPath)
	if err != nil {
		return nil, xerrors.Errorf("failed to read private key %s: %w", c.PrivateKeyPath, err)
	}

	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("private key is not PEM encoded")
	}

	var passphrase [][]byte
	if c.PrivateKeyPassphrase != "" {
		passphrase = append(passphrase, []byte(c.PrivateKeyPassphrase))
	}

	key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, passphrase...)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse private key: %w", err)
	}

	return key, nil
}

func authType(s string) (gosnowflake.AuthType, *url.URL, error) {
	v := strings.ToLower(strings.TrimSpace(s))

	switch v {
	case "", "snowflake":
		return gosnowflake.AuthTypeSnowflake, nil, nil
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser, nil, nil
	case "oauth":
		return gosnowflake.AuthTypeOAuth, nil, nil
	case "snowflake_jwt":
		return gosnowflake.AuthTypeJwt, nil, nil
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA, nil, nil
	}

	if strings.HasPrefix(v, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return 0, nil, xerrors.Errorf("invalid okta url %s: %w", s, err)
		}
		return gosnowflake.AuthTypeOkta, u, nil
	}

	return 0, nil, xerrors.Errorf("unknown authenticator %q", s)
}
