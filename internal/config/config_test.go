package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/merged-pr-stats/internal/domain"
)

var now = time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

// newViper mirrors the flag wiring of the root command.
func newViper(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(KeySince, "", "")
	flags.StringSlice(KeyRepo, nil, "")
	flags.String(KeyAPI, "rest", "")
	flags.Int(KeyMaxPages, 0, "")
	flags.Bool(KeyWaitRateLimit, false, "")
	flags.Int(KeyConcurrency, 4, "")
	require.NoError(t, flags.Parse(args))

	v := viper.New()
	require.NoError(t, v.BindPFlags(flags))
	return v
}

func clearEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_API_URL", "")
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "secret")

	cfg, err := Load(newViper(t, "--repo", "octo/a", "--repo", "octo/b,octo/a", "--since", "2024-04-01", "--max-pages", "5"), now)

	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, []domain.Repository{{Owner: "octo", Name: "a"}, {Owner: "octo", Name: "b"}}, cfg.Repositories)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), cfg.Since)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, "rest", cfg.API)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.False(t, cfg.WaitRateLimit)

	opts := cfg.GatewayOptions()
	assert.Equal(t, "secret", opts.Token)
	assert.Equal(t, 5, opts.MaxPages)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "secret")
	t.Setenv("GITHUB_REPOSITORY", "octo/hello")
	t.Setenv("GITHUB_API_URL", "http://127.0.0.1:9999/")

	cfg, err := Load(newViper(t), now)

	require.NoError(t, err)
	assert.Equal(t, []domain.Repository{{Owner: "octo", Name: "hello"}}, cfg.Repositories)
	assert.Equal(t, "http://127.0.0.1:9999/", cfg.APIURL)
	assert.Equal(t, now.Add(-domain.DefaultLookback), cfg.Since)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name         string
		token        string
		args         []string
		expectedKind domain.ErrorKind
	}{
		{name: "invalid since is reported before a missing token", token: "", args: []string{"--since", "not-a-date", "--repo", "octo/a"}, expectedKind: domain.KindInvalidDate},
		{name: "missing token", token: "", args: []string{"--repo", "octo/a"}, expectedKind: domain.KindAuthMissing},
		{name: "missing repository", token: "secret", expectedKind: domain.KindInvalidConfig},
		{name: "malformed repository", token: "secret", args: []string{"--repo", "octo"}, expectedKind: domain.KindInvalidConfig},
		{name: "unsupported api", token: "secret", args: []string{"--repo", "octo/a", "--api", "soap"}, expectedKind: domain.KindInvalidConfig},
		{name: "negative page cap", token: "secret", args: []string{"--repo", "octo/a", "--max-pages=-1"}, expectedKind: domain.KindInvalidConfig},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GITHUB_TOKEN", tc.token)

			cfg, err := Load(newViper(t, tc.args...), now)

			assert.Nil(t, cfg)
			derr, ok := domain.AsError(err)
			require.True(t, ok, "unexpected error %v", err)
			assert.Equal(t, tc.expectedKind, derr.Kind)
		})
	}
}
