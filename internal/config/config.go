// Package config resolves the run configuration from flags, the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/naka-gawa/merged-pr-stats/internal/domain"
	"github.com/naka-gawa/merged-pr-stats/internal/gateway"
)

// Keys shared by the flag set and the viper instance.
const (
	KeySince         = "since"
	KeyToken         = "token"
	KeyRepo          = "repo"
	KeyAPIURL        = "api-url"
	KeyAPI           = "api"
	KeyMaxPages      = "max-pages"
	KeyWaitRateLimit = "wait-rate-limit"
	KeyConcurrency   = "concurrency"
	KeyVerbose       = "verbose"
)

// DefaultAPIURL is the REST base URL used when GITHUB_API_URL is unset.
const DefaultAPIURL = "https://api.github.com/"

// Config is the resolved configuration of one run.
type Config struct {
	Token         string
	APIURL        string
	API           string
	Repositories  []domain.Repository
	Since         time.Time
	MaxPages      int
	WaitRateLimit bool
	Concurrency   int
	Verbose       bool
}

// GatewayOptions returns the subset of the configuration the gateway needs.
func (c *Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		Token:         c.Token,
		BaseURL:       c.APIURL,
		API:           c.API,
		MaxPages:      c.MaxPages,
		WaitRateLimit: c.WaitRateLimit,
	}
}

// Load reads the configuration from v. Values are checked in the order
// --since, token, repositories, so the first problem reported matches what
// the user is most likely to fix first. now anchors the default cutoff.
func Load(v *viper.Viper, now time.Time) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyAPI, gateway.APIREST)
	v.SetDefault(KeyConcurrency, 4)
	for key, env := range map[string]string{
		KeyToken:  "GITHUB_TOKEN",
		KeyRepo:   "GITHUB_REPOSITORY",
		KeyAPIURL: "GITHUB_API_URL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	since, err := domain.ParseSince(v.GetString(KeySince), now)
	if err != nil {
		return nil, err
	}

	token := strings.TrimSpace(v.GetString(KeyToken))
	if token == "" {
		return nil, domain.ErrAuthMissing
	}

	repos, err := parseRepositories(v.GetStringSlice(KeyRepo))
	if err != nil {
		return nil, err
	}

	api := strings.ToLower(v.GetString(KeyAPI))
	if api != gateway.APIREST && api != gateway.APIGraphQL {
		return nil, domain.NewConfigError(fmt.Sprintf("unsupported --api %q, expected %s or %s", api, gateway.APIREST, gateway.APIGraphQL))
	}
	if v.GetInt(KeyMaxPages) < 0 {
		return nil, domain.NewConfigError("--max-pages must not be negative")
	}

	return &Config{
		Token:         token,
		APIURL:        v.GetString(KeyAPIURL),
		API:           api,
		Repositories:  repos,
		Since:         since,
		MaxPages:      v.GetInt(KeyMaxPages),
		WaitRateLimit: v.GetBool(KeyWaitRateLimit),
		Concurrency:   max(v.GetInt(KeyConcurrency), 1),
		Verbose:       v.GetBool(KeyVerbose),
	}, nil
}

// parseRepositories accepts repeated values as well as comma separated lists,
// dropping duplicates while keeping first-seen order.
func parseRepositories(values []string) ([]domain.Repository, error) {
	var repos []domain.Repository
	seen := make(map[domain.Repository]bool)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			repo, err := domain.ParseRepository(part)
			if err != nil {
				return nil, err
			}
			if seen[repo] {
				continue
			}
			seen[repo] = true
			repos = append(repos, repo)
		}
	}
	if len(repos) == 0 {
		return nil, domain.NewConfigError("no repository configured; pass --repo owner/name or set GITHUB_REPOSITORY")
	}
	return repos, nil
}
