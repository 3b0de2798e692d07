package config

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Reorder  ReorderConfig
	Storage  StorageConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	RateLimit      string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	ExportDir string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	PromotionTTLSeconds int
}

type ReorderConfig struct {
	Warehouses       []domain.Warehouse
	DefaultWarehouse domain.Warehouse
	Workers          int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type KafkaConfig struct {
	Brokers     string
	OrdersTopic string
	Required    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("RATE_LIMIT", "60-M")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "autopo")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("APP_EXPORT_DIR", "./data/exports")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_PROMOTION_TTL_SECONDS", 300)
		viper.SetDefault("REORDER_WAREHOUSES", string(domain.DefaultWarehouse))
		viper.SetDefault("REORDER_DEFAULT_WAREHOUSE", string(domain.DefaultWarehouse))
		viper.SetDefault("REORDER_WORKERS", 1)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PREFIX", "reorder/")
		viper.SetDefault("KAFKA_BROKERS", "")
		viper.SetDefault("KAFKA_ORDERS_TOPIC", "reorder.orders")
		viper.SetDefault("KAFKA_REQUIRED", false)

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_EXPORT_DIR"))

		defaultWarehouse := domain.ParseWarehouse(viper.GetString("REORDER_DEFAULT_WAREHOUSE"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
				RateLimit:      viper.GetString("RATE_LIMIT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				ExportDir: viper.GetString("APP_EXPORT_DIR"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				PromotionTTLSeconds: viper.GetInt("CACHE_PROMOTION_TTL_SECONDS"),
			},
			Reorder: ReorderConfig{
				Warehouses:       ParseWarehouses(viper.GetStringSlice("REORDER_WAREHOUSES"), defaultWarehouse),
				DefaultWarehouse: defaultWarehouse,
				Workers:          viper.GetInt("REORDER_WORKERS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
				Prefix:    viper.GetString("STORAGE_PREFIX"),
			},
			Kafka: KafkaConfig{
				Brokers:     viper.GetString("KAFKA_BROKERS"),
				OrdersTopic: viper.GetString("KAFKA_ORDERS_TOPIC"),
				Required:    viper.GetBool("KAFKA_REQUIRED"),
			},
		}
	})

	return instance
}

// ParseWarehouses accepts repeated or comma-separated names, drops blanks and duplicates,
// and makes sure the default warehouse comes first when it is missing.
func ParseWarehouses(raw []string, defaultWarehouse domain.Warehouse) []domain.Warehouse {
	var (
		out  []domain.Warehouse
		seen = make(map[domain.Warehouse]struct{})
	)
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			w := domain.ParseWarehouse(part)
			if w == "" {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}

	if defaultWarehouse != "" {
		if _, ok := seen[defaultWarehouse]; !ok {
			out = append([]domain.Warehouse{defaultWarehouse}, out...)
		}
	}
	return out
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
