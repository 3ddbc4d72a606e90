package conf

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-pledge/pledge/pkg/cache"
	"github.com/go-pledge/pledge/pkg/database"
	"github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	// Env selects the runtime environment: "development" or "production".
	// Defaults to production; the invite bypass code only works in development.
	Env      string
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Github   Github
}

// Github configures the platform API client.
type Github struct {
	BaseURL string `mapstructure:"baseUrl"`
	Token   string
}

// IsDevelopment reports whether the deployment runs in development mode.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load conf file error: %s", err))
		}
	})
	return cfg
}

// LoadConfigFile load conf file
func LoadConfigFile(confDir string) (AppConfig, error) {

	config := viper.New()
	config.SetConfigFile(confDir)
	config.AddConfigPath("./conf.d")
	config.SetConfigName("config")
	config.SetConfigType("toml")
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("configuration changed, re-parsing the configuration file: %s", e.Name)
		if err := config.Unmarshal(&cfg); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
		}
	})
	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	fmt.Printf("[Init] config file path: %s\n", confDir)

	return cfg, nil
}

func GetString(key string) string {
	return viper.GetString(key)
}
