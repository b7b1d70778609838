package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"qrcode-api/internal/auth"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Debug  bool
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		SecretKey     string
		Algorithm     string
		ExpireMinutes int
	}
	Paging struct {
		DefaultPerPage int
		MaxPerPage     int
	}
	Storage struct {
		Driver    string
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
		PublicURL string
		LocalDir  string
		ACL       string
	}
	AWS struct {
		Profile string
	}
	Superuser struct {
		Username string
		Email    string
		Password string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv(".env")
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix("QRCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("debug", false)
	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("database.path", "data/qrcode.db")
	v.SetDefault("auth.secretkey", "")
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.expireminutes", 60)
	v.SetDefault("paging.defaultperpage", 10)
	v.SetDefault("paging.maxperpage", 100)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicurl", "/static")
	v.SetDefault("storage.localdir", "data/static")
	v.SetDefault("storage.acl", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("superuser.username", "")
	v.SetDefault("superuser.email", "")
	v.SetDefault("superuser.password", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Auth.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.Auth.Algorithm))

	return cfg, nil
}

// Validate reports every setting that would make the server unusable.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		errs = append(errs, errors.New("auth secret key is required"))
	}
	if !auth.SupportedAlgorithm(c.Auth.Algorithm) {
		errs = append(errs, fmt.Errorf("auth algorithm %q is not supported", c.Auth.Algorithm))
	}
	if c.Auth.ExpireMinutes <= 0 {
		errs = append(errs, errors.New("auth expire minutes must be positive"))
	}
	if c.Paging.MaxPerPage < 1 {
		errs = append(errs, errors.New("paging max per page must be at least 1"))
	}
	if c.Paging.DefaultPerPage < 1 || c.Paging.DefaultPerPage > c.Paging.MaxPerPage {
		errs = append(errs, fmt.Errorf("paging default per page must be between 1 and %d", c.Paging.MaxPerPage))
	}
	switch c.Storage.Driver {
	case "s3":
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage bucket is required for the s3 driver"))
		}
	case "local":
		if c.Storage.LocalDir == "" {
			errs = append(errs, errors.New("storage local dir is required for the local driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage driver %q is not supported", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

func loadDotEnv(name string) {
	file, err := os.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
