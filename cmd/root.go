package cmd

import (
	"errors"
	"log"

	"github.com/spigell/hh-matchmaker/internal/similarity"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hh-matchmaker"
)

type Config struct {
	Embedding *EmbeddingConfig  `mapstructure:"embedding"`
	Limits    similarity.Limits `mapstructure:"limits"`
}

type EmbeddingConfig struct {
	// Provider is gemini or hash. Empty picks gemini when an API key is
	// available and hash otherwise.
	Provider     string        `mapstructure:"provider"`
	Cache        bool          `mapstructure:"cache"`
	Concurrency  int           `mapstructure:"concurrency"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	Hash         *HashConfig   `mapstructure:"hash"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	ModelA     string `mapstructure:"model-a"`
	ModelB     string `mapstructure:"model-b"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type HashConfig struct {
	Dimensions int `mapstructure:"dimensions"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-matchmaker scores how well a candidate profile matches a job requirement",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("embedding.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("embedding.cache", true)
	viper.SetDefault("embedding.concurrency", 4)
	viper.SetDefault("embedding.max-log-length", 200)
	viper.SetDefault("limits.max-input-length", similarity.DefaultMaxInputLength)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-matchmaker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for match command.
	if matchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// The default config file is optional, an explicit one is not.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}

	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Embedding == nil {
		config.Embedding = &EmbeddingConfig{}
	}
	if config.Embedding.Gemini == nil {
		config.Embedding.Gemini = &GeminiConfig{}
	}
	if config.Embedding.Hash == nil {
		config.Embedding.Hash = &HashConfig{}
	}

	return config, nil
}
