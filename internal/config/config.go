package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port string
	// Session state
	StateBackend  string
	StateKey      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Quote archive
	Storage     string
	DatabaseURL string
	// Providers
	Provider        string
	MarketAPIBase   string
	ReferenceAPIURL string
	DepthAPIBase    string
	DepthSymbol     string
	DepthBase       string
	DepthQuote      string
	DepthLimit      int
	ProviderTimeout time.Duration
	// Auto fetch
	AutoFetchInterval time.Duration
	// Host
	HostCapabilities string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func msDef(key string, def int) time.Duration {
	ms := atoiDef(getEnv(key, ""), def)
	if ms <= 0 {
		ms = def
	}
	return time.Duration(ms) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:               getEnv("ENV", "local"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", DefaultHTTPPort),
		StateBackend:      getEnv("STATE_BACKEND", "memory"),
		StateKey:          getEnv("STATE_KEY", DefaultStateKey),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           atoiDef(getEnv("REDIS_DB", "0"), 0),
		Storage:           getEnv("STORAGE", "none"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Provider:          getEnv("PROVIDER", "fake"),
		MarketAPIBase:     getEnv("MARKET_API_BASE", "https://api.exchangerate.host"),
		ReferenceAPIURL:   getEnv("REFERENCE_API_URL", "https://www.cbr-xml-daily.ru/daily_json.js"),
		DepthAPIBase:      getEnv("DEPTH_API_BASE", "https://api.binance.com"),
		DepthSymbol:       getEnv("DEPTH_SYMBOL", "USDTTHB"),
		DepthBase:         getEnv("DEPTH_BASE", "USDT"),
		DepthQuote:        getEnv("DEPTH_QUOTE", "THB"),
		DepthLimit:        atoiDef(getEnv("DEPTH_LIMIT", "100"), DefaultDepthLimit),
		ProviderTimeout:   msDef("PROVIDER_TIMEOUT_MS", int(DefaultProviderTimeout/time.Millisecond)),
		AutoFetchInterval: msDef("AUTO_FETCH_INTERVAL_MS", int(DefaultAutoFetchInterval/time.Millisecond)),
		HostCapabilities:  getEnv("HOST_CAPABILITIES", "none"),
	}
}
