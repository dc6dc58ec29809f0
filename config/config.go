// Package config centralizes the viper keys the studio runs on.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"vox.town/stt"
)

const (
	KeyBackendURL      = "backend_url"
	KeyProvider        = "stt_provider"
	KeyOpenAIAPIKey    = "openai_api_key"
	KeyElevenLabsKey   = "elevenlabs_api_key"
	KeyElevenLabsVoice = "elevenlabs_voice"
	KeyElevenLabsModel = "elevenlabs_model"
	KeyHTTPPort        = "http_port"
	KeyPublicURL       = "public_url"
	KeyExportDir       = "export_dir"
	KeyCaptureGrab     = "capture_grab"
	KeyCaptureInput    = "capture_input"
)

// Providers selectable through stt_provider.
const (
	ProviderBackend = "backend"
	ProviderOpenAI  = "openai"
)

// Init reads config.yaml from the working directory when present and lets
// the environment override everything.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault(KeyBackendURL, stt.DefaultBaseURL)
	viper.SetDefault(KeyProvider, ProviderBackend)
	viper.SetDefault(KeyHTTPPort, 8080)
	viper.SetDefault(KeyExportDir, defaultExportDir())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %s\n", err)
		}
	}
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "exports"
	}
	return filepath.Join(home, "voxpad")
}
