package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Script ScriptConfig `mapstructure:"script"`
	Speech SpeechConfig `mapstructure:"speech"`
	Player PlayerConfig `mapstructure:"player"`
	Output OutputConfig `mapstructure:"output"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ScriptConfig configures the completion endpoint used for scripts.
// An empty APIKey means every request uses the local template.
type ScriptConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SpeechConfig struct {
	Engine          string        `mapstructure:"engine"`
	Endpoint        string        `mapstructure:"endpoint"`
	ModelID         string        `mapstructure:"model_id"`
	APIKey          string        `mapstructure:"api_key"`
	Voice           string        `mapstructure:"voice"`
	Stability       float64       `mapstructure:"stability"`
	SimilarityBoost float64       `mapstructure:"similarity_boost"`
	MaxChars        int           `mapstructure:"max_chars"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type PlayerConfig struct {
	Volume int `mapstructure:"volume"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

func SetDefaults() {
	viper.SetDefault("log.level", "warn")

	viper.SetDefault("script.endpoint", "https://api.grok.ai/v1/completions")
	viper.SetDefault("script.model", "grok-1")
	viper.SetDefault("script.api_key", "")
	viper.SetDefault("script.max_tokens", 1000)
	viper.SetDefault("script.temperature", 0.7)
	viper.SetDefault("script.timeout", 60*time.Second)

	viper.SetDefault("speech.engine", "auto") // Auto-select from available credentials
	viper.SetDefault("speech.endpoint", "https://api.elevenlabs.io")
	viper.SetDefault("speech.model_id", "eleven_monolingual_v1")
	viper.SetDefault("speech.api_key", "")
	viper.SetDefault("speech.voice", "")
	viper.SetDefault("speech.stability", 0.5)
	viper.SetDefault("speech.similarity_boost", 0.5)
	viper.SetDefault("speech.max_chars", 2000)
	viper.SetDefault("speech.timeout", 120*time.Second)

	viper.SetDefault("player.volume", 80)
	viper.SetDefault("output.dir", ".")
}

// Init points viper at the config file locations and the AUDIOVERSE_ env prefix.
// A missing config file is not an error.
func Init() error {
	viper.SetConfigName("audioverse")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.audioverse")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("audioverse")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load decodes the current viper state into a Config
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Player.Volume < 0 || cfg.Player.Volume > 100 {
		return Config{}, fmt.Errorf("player.volume must be between 0 and 100, got %d", cfg.Player.Volume)
	}
	if cfg.Speech.MaxChars <= 0 {
		return Config{}, fmt.Errorf("speech.max_chars must be positive, got %d", cfg.Speech.MaxChars)
	}

	return cfg, nil
}
