package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	values map[string]string
	err    error
	calls  []string
}

func (f *fakeGetter) GetParameter(_ context.Context, name string) (string, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[name]
	if !ok {
		return "", errors.New("fake: no such parameter")
	}
	return v, nil
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ChannelSecret", "secret")
	t.Setenv("ChannelAccessToken", "token")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("CARD_TABLE", "namecards")
	t.Setenv("QR_BUCKET", "qr-bucket")
}

func TestLoad_FromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("ADDR", ":9000")

	cfg, err := Load(context.Background(), nil, "")
	require.NoError(t, err)
	require.Equal(t, "secret", cfg.ChannelSecret)
	require.Equal(t, "token", cfg.ChannelAccessToken)
	require.Equal(t, "gm-key", cfg.GeminiAPIKey)
	require.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	require.Equal(t, "namecards", cfg.CardTable)
	require.Equal(t, "qr-bucket", cfg.QRBucket)
	require.Equal(t, ":9000", cfg.Addr)
}

func TestLoad_DefaultAddr(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADDR", "")

	cfg, err := Load(context.Background(), nil, "")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CARD_TABLE", "")

	_, err := Load(context.Background(), nil, "")
	require.ErrorContains(t, err, "missing required configuration")
}

func TestLoad_SecretsFallBackToParameterStore(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ChannelSecret", "")
	t.Setenv("GEMINI_API_KEY", "")

	params := &fakeGetter{values: map[string]string{
		"/namecard/channel_secret": "ssm-secret",
		"/namecard/gemini_api_key": "ssm-key",
	}}

	cfg, err := Load(context.Background(), params, "/namecard/")
	require.NoError(t, err)
	require.Equal(t, "ssm-secret", cfg.ChannelSecret)
	require.Equal(t, "ssm-key", cfg.GeminiAPIKey)
	// Values present in the environment are never fetched remotely.
	require.Equal(t, "token", cfg.ChannelAccessToken)
	require.NotContains(t, params.calls, "/namecard/channel_access_token")
}

func TestLoad_ParameterStoreFailure(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ChannelSecret", "")

	params := &fakeGetter{err: errors.New("ssm unavailable")}
	_, err := Load(context.Background(), params, "/namecard")
	require.ErrorContains(t, err, "ssm unavailable")
}

func TestLoad_NoFallbackWithoutPrefix(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ChannelSecret", "")

	params := &fakeGetter{values: map[string]string{"/namecard/channel_secret": "ssm-secret"}}
	_, err := Load(context.Background(), params, "")
	require.ErrorContains(t, err, "missing required configuration")
	require.Empty(t, params.calls)
}
