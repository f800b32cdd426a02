package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisDeviceDB    int    `mapstructure:"REDIS_DEVICE_DB"`
	RedisReconcileDB int    `mapstructure:"REDIS_RECONCILE_QUEUE_DB"`

	// Upstream TravelLocal backend.
	BackendBaseURL string        `mapstructure:"BACKEND_BASE_URL"`
	BackendTimeout time.Duration `mapstructure:"BACKEND_TIMEOUT"`

	// Chat (STOMP over websocket).
	ChatWSURL          string        `mapstructure:"CHAT_WS_URL"`
	ChatReconnectDelay time.Duration `mapstructure:"CHAT_RECONNECT_DELAY"`

	// Calendar.
	CalendarTimezone string `mapstructure:"CALENDAR_TIMEZONE"`

	// Schedule unlock.
	UnlockPointCost int64  `mapstructure:"UNLOCK_POINT_COST"`
	UnlockCashPrice int64  `mapstructure:"UNLOCK_CASH_PRICE"`
	UnlockCurrency  string `mapstructure:"UNLOCK_CURRENCY"`
	StripeKey       string `mapstructure:"STRIPE_KEY"`

	// Public tourism data API.
	TourAPIBaseURL  string        `mapstructure:"TOUR_API_BASE_URL"`
	TourAPIKey      string        `mapstructure:"TOUR_API_KEY"`
	TourAPICacheTTL time.Duration `mapstructure:"TOUR_API_CACHE_TTL"`

	// Translation providers, tried in order.
	LibreTranslateURL string        `mapstructure:"LIBRETRANSLATE_URL"`
	LingvaURL         string        `mapstructure:"LINGVA_URL"`
	YandexURL         string        `mapstructure:"YANDEX_URL"`
	YandexAPIKey      string        `mapstructure:"YANDEX_API_KEY"`
	TranslateTimeout  time.Duration `mapstructure:"TRANSLATE_TIMEOUT"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "travellocal")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_DEVICE_DB", 1)
	viper.SetDefault("REDIS_RECONCILE_QUEUE_DB", 2)
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:8083")
	viper.SetDefault("BACKEND_TIMEOUT", "15s")
	viper.SetDefault("CHAT_WS_URL", "ws://localhost:8083/ws/websocket")
	viper.SetDefault("CHAT_RECONNECT_DELAY", "5s")
	viper.SetDefault("CALENDAR_TIMEZONE", "Asia/Seoul")
	viper.SetDefault("UNLOCK_POINT_COST", 100)
	viper.SetDefault("UNLOCK_CASH_PRICE", 1000)
	viper.SetDefault("UNLOCK_CURRENCY", "krw")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("TOUR_API_BASE_URL", "https://apis.data.go.kr/B551011/KorService1")
	viper.SetDefault("TOUR_API_KEY", "")
	viper.SetDefault("TOUR_API_CACHE_TTL", "1h")
	viper.SetDefault("LIBRETRANSLATE_URL", "https://libretranslate.com/translate")
	viper.SetDefault("LINGVA_URL", "https://lingva.ml/api/v1")
	viper.SetDefault("YANDEX_URL", "https://translate.api.cloud.yandex.net/translate/v2/translate")
	viper.SetDefault("YANDEX_API_KEY", "")
	viper.SetDefault("TRANSLATE_TIMEOUT", "5s")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// CalendarLocation resolves CALENDAR_TIMEZONE, falling back to UTC.
func CalendarLocation() *time.Location {
	loc, err := time.LoadLocation(AppConfig.CalendarTimezone)
	if err != nil || AppConfig.CalendarTimezone == "" {
		return time.UTC
	}
	return loc
}
