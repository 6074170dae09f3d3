// Package config assembles the startup configuration: environment variables
// first, SSM Parameter Store fallback for secrets when PARAM_PREFIX is set.
// A missing required value halts startup.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"namecard-agent/internal/integrations/paramstore"
)

const defaultAddr = ":8080"

// Config is the full startup configuration surface.
type Config struct {
	// Messaging channel credentials.
	ChannelSecret      string `validate:"required"`
	ChannelAccessToken string `validate:"required"`

	// Model endpoint.
	GeminiAPIKey string `validate:"required"`
	GeminiModel  string

	// Persistence and object storage.
	CardTable string `validate:"required"`
	QRBucket  string `validate:"required"`

	// HTTP listen address.
	Addr string `validate:"required"`
}

// envToParam maps environment variable names to their SSM parameter suffix
// under PARAM_PREFIX. Only secrets have a parameter-store fallback.
var envToParam = map[string]string{
	"ChannelSecret":      "channel_secret",
	"ChannelAccessToken": "channel_access_token",
	"GEMINI_API_KEY":     "gemini_api_key",
}

// Load reads the configuration. params may be nil when no parameter-store
// fallback is configured.
func Load(ctx context.Context, params paramstore.Getter, paramPrefix string) (Config, error) {
	lookup := func(envKey string) (string, error) {
		if v := os.Getenv(envKey); v != "" {
			return v, nil
		}
		suffix, ok := envToParam[envKey]
		if !ok || params == nil || paramPrefix == "" {
			return "", nil
		}
		name := strings.TrimRight(paramPrefix, "/") + "/" + suffix
		v, err := params.GetParameter(ctx, name)
		if err != nil {
			return "", fmt.Errorf("config: load %s from parameter store: %w", envKey, err)
		}
		return v, nil
	}

	cfg := Config{Addr: defaultAddr}
	for envKey, target := range map[string]*string{
		"ChannelSecret":      &cfg.ChannelSecret,
		"ChannelAccessToken": &cfg.ChannelAccessToken,
		"GEMINI_API_KEY":     &cfg.GeminiAPIKey,
	} {
		v, err := lookup(envKey)
		if err != nil {
			return Config{}, err
		}
		*target = v
	}

	cfg.GeminiModel = os.Getenv("GEMINI_MODEL")
	cfg.CardTable = os.Getenv("CARD_TABLE")
	cfg.QRBucket = os.Getenv("QR_BUCKET")
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: missing required configuration: %w", err)
	}
	return cfg, nil
}
