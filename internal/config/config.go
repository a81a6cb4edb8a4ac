package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	// Call signaling
	RingTimeout      time.Duration `mapstructure:"ring_timeout"`
	CallRateLimit    int           `mapstructure:"call_rate_limit"`
	CallRateInterval time.Duration `mapstructure:"call_rate_interval"`

	// Speech recognition (Deepgram streaming)
	DeepgramAPIKey string `mapstructure:"deepgram_api_key"`
	DeepgramModel  string `mapstructure:"deepgram_model"`
	SampleRate     int    `mapstructure:"sample_rate"`

	// Translation (DeepL)
	DeepLAPIKey string `mapstructure:"deepl_api_key"`
	DeepLAPIURL string `mapstructure:"deepl_api_url"`

	// Silence gating before the recognizer
	VADEnergyThreshold float64 `mapstructure:"vad_energy_threshold"`
	VADSilenceFrames   int     `mapstructure:"vad_silence_frames"`

	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 262144)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("ring_timeout", "30s")
	v.SetDefault("call_rate_limit", 5)
	v.SetDefault("call_rate_interval", "10s")
	v.SetDefault("deepgram_model", "nova-2")
	v.SetDefault("sample_rate", 48000)
	v.SetDefault("deepl_api_url", "https://api-free.deepl.com/v2/translate")
	v.SetDefault("vad_energy_threshold", 500.0)
	v.SetDefault("vad_silence_frames", 10)
	v.SetDefault("metrics_enabled", true)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	if key := os.Getenv("DEEPGRAM_API_KEY"); key != "" {
		v.Set("deepgram_api_key", key)
	}
	if key := os.Getenv("DEEPL_API_KEY"); key != "" {
		v.Set("deepl_api_key", key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Static: %s\n", cfg.Mode, cfg.Port, cfg.StaticPath)
	return &cfg, nil
}
