package config

import (
	"reflect"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/order-import/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every setting of the loader. Values come from the process
// environment, optionally seeded from a dotenv file; fields left empty get
// the value of their default tag.
type Config struct {
	AppEnv  string `env:"APP_ENV" default:"dev"`
	AppName string `env:"APP_NAME" default:"order_import"`
	LogEnv  string `env:"LOG_ENV" default:"dev"`

	DBDriver      string `env:"DB_DRIVER" default:"postgres"`
	DBHost        string `env:"DB_HOST" default:"localhost"`
	DBPort        string `env:"DB_PORT" default:"5432"`
	DBUser        string `env:"DB_USER"`
	DBPassword    string `env:"DB_PASSWORD"`
	DBName        string `env:"DB_NAME" default:"order_import"`
	DBDebug       bool   `env:"DB_DEBUG"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" default:"true"`

	ImportBatchSize int `env:"IMPORT_BATCH_SIZE" default:"500"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisUsername  string        `env:"REDIS_USER"`
	RedisPassword  string        `env:"REDIS_PASS"`
	RedisDatabase  int           `env:"REDIS_DATABASE"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX"`
	LockTTL        time.Duration `env:"LOCK_TTL" default:"10m"`

	PromNamespace      string `env:"PROM_NAMESPACE" default:"order_import"`
	PromPushgatewayURL string `env:"PROM_PUSHGATEWAY_URL"`
}

func Load(path string) error {
	logger.Debug("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Debug("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	es, err := env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	if err = applyDefaults(c, es); err != nil {
		return err
	}

	config = c
	return nil
}

// applyDefaults fills every field whose variable is absent from the
// environment with the value of its default tag.
func applyDefaults(c *Config, es env.EnvSet) error {
	defaults := env.EnvSet{}
	t := reflect.TypeOf(*c)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key, def := f.Tag.Get(ConfigTagName), f.Tag.Get(ConfigDefaultTagName)
		if key == "" || def == "" {
			continue
		}
		if _, ok := es[key]; ok {
			continue
		}
		defaults[key] = def
	}
	if len(defaults) == 0 {
		return nil
	}
	if err := env.Unmarshal(defaults, c); err != nil {
		return errors.Wrap(err, "failed to apply configuration defaults")
	}
	return nil
}

func Get() *Config {
	if config == nil {
		panic("config is not initialized")
	}
	return config
}

// Set replaces the loaded configuration. Tests use it to avoid touching the
// process environment.
func Set(c *Config) {
	config = c
}
