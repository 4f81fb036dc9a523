package config

import (
	"firedoc/log"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"net/url"
	"strings"
	"time"
)

const EnvPrefix = "FIREDOC"

var validate = validator.New()

// Config is the top level configuration of firedoc
type Config struct {
	Mongo Mongo `mapstructure:"mongo"`
	Log   Log   `mapstructure:"log"`
}

// Mongo holds the connection details of the target document database
type Mongo struct {
	Scheme   string        `mapstructure:"scheme" validate:"required,oneof=mongodb mongodb+srv"`
	Host     string        `mapstructure:"host" validate:"required"`
	Port     string        `mapstructure:"port" validate:"omitempty,numeric"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Database string        `mapstructure:"database" validate:"required"`
	Options  string        `mapstructure:"options"` // retryWrites=true&w=majority
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File  string `mapstructure:"file"`
}

var defaults = map[string]interface{}{
	"mongo.scheme":   "mongodb",
	"mongo.host":     "",
	"mongo.port":     "",
	"mongo.user":     "",
	"mongo.password": "",
	"mongo.database": "firedoc",
	"mongo.options":  "",
	"mongo.timeout":  "10s",
	"log.level":      "info",
	"log.file":       "",
}

// LoadConfig loads the config file and FIREDOC_ prefixed ENV variables into a Config struct.
// A missing config.yaml is tolerated when no file is given explicitly.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Environment variables take precedence over config file
	loadDotEnv()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := validate.Struct(cfg.Log); err != nil {
		return nil, errors.Wrap(err, "invalid log config")
	}
	return &cfg, nil
}

// loadDotEnv loads environment variables from .env file
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Logger().Debug(".env file not found or unable to load")
	}
}

// Validate checks the connection details are complete
func (m Mongo) Validate() error {
	if err := validate.Struct(m); err != nil {
		return errors.Wrap(err, "invalid mongo config")
	}
	return nil
}

// URI builds the connection string, eg. mongodb+srv://<username>:<password>@host/db?retryWrites=true&w=majority
func (m Mongo) URI() string {
	addressURL := m.Scheme + "://"
	if m.User != "" {
		addressURL += url.UserPassword(m.User, m.Password).String() + "@"
	}
	addressURL += m.Host
	if m.Port != "" {
		addressURL += ":" + m.Port
	}
	addressURL += "/" + m.Database
	if m.Options != "" {
		addressURL += "?" + m.Options
	}
	return addressURL
}

// Redacted is URI without the password, safe to log
func (m Mongo) Redacted() string {
	if m.Password == "" {
		return m.URI()
	}
	masked := m
	masked.Password = "xxxxx"
	return masked.URI()
}
