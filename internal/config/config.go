package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"longcatnode/internal/core"
	"longcatnode/internal/util"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

// DefaultRateLimit is the per-IP request budget per minute.
const DefaultRateLimit = 120

// ServerConfig server configuration
type ServerConfig struct {
	Port               string
	GinMode            string
	ClientAPIKeys      []string
	Credentials        core.Credentials
	ModelsConfigPath   string
	RateLimit          int
	CORSAllowOrigin    string
	HTTPClientSettings HTTPClientSettings
	Storage            core.StorageInterface
	Logger             core.Logger
	// Transport overrides the resty-backed upstream client when set.
	Transport core.Transport
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// LoadModelsConfig loads the model capability table.
// Entries in the file override the built-in table; a missing file yields the built-in table.
// Files ending in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadModelsConfig(path string, logger core.Logger) (core.ModelsConfig, error) {
	config := core.ModelsConfig{Models: core.DefaultModelCapabilities()}
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from config, not user input
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Models config %s not found, using built-in capability table", path)
			return config, nil
		}
		return config, fmt.Errorf("failed to read %s: %w", path, err)
	}

	loaded, err := parseModelsConfig(path, data)
	if err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for id, capability := range loaded {
		config.Models[id] = capability
	}

	logger.Info("Loaded %d model capability entries from %s", len(loaded), path)
	return config, nil
}

func parseModelsConfig(path string, data []byte) (map[string]core.ModelCapability, error) {
	var config core.ModelsConfig

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
		return config.Models, nil
	}

	if err := sonic.Unmarshal(data, &config); err != nil {
		// A plain list of ids declares models without optional capabilities.
		var modelIDs []string
		if listErr := sonic.Unmarshal(data, &modelIDs); listErr != nil {
			return nil, err
		}
		models := make(map[string]core.ModelCapability, len(modelIDs))
		for _, id := range modelIDs {
			models[id] = core.ModelCapability{}
		}
		return models, nil
	}
	return config.Models, nil
}

// BuildModelList renders the capability table as a sorted model list.
func BuildModelList(config core.ModelsConfig) core.ModelList {
	ids := make([]string, 0, len(config.Models))
	for id := range config.Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := core.ModelList{Object: core.ModelListObjectType, Data: make([]core.ModelInfo, 0, len(ids))}
	for _, id := range ids {
		capability := config.Models[id]
		list.Data = append(list.Data, core.ModelInfo{
			ID:               id,
			Object:           core.ModelObjectType,
			OwnedBy:          core.ModelOwner,
			SupportsThinking: capability.Thinking,
			SupportsTools:    capability.Tools,
		})
	}
	return list
}

// LoadServerConfigFromEnv loads server config from environment variables
func LoadServerConfigFromEnv(logger core.Logger) (ServerConfig, error) {
	clientAPIKeys := util.ParseEnvList(os.Getenv("CLIENT_API_KEYS"))
	if len(clientAPIKeys) == 0 {
		logger.Warn("CLIENT_API_KEYS environment variable is empty")
	} else {
		logger.Info("Loaded %d client API keys", len(clientAPIKeys))
	}

	credentials := LoadCredentialsFromEnv()
	if !credentials.Valid() {
		logger.Warn("LONGCAT_API_KEY is not set, upstream calls will be rejected")
	} else {
		logger.Info("Using LongCat API %s with %s", credentials.Endpoint(), util.GetKeyDisplayName(credentials.APIKey))
	}

	config := ServerConfig{
		Port:               util.GetEnvWithDefault("PORT", core.DefaultPort),
		GinMode:            util.GetEnvWithDefault("GIN_MODE", core.DefaultGinMode),
		ClientAPIKeys:      clientAPIKeys,
		Credentials:        credentials,
		ModelsConfigPath:   util.GetEnvWithDefault("MODELS_CONFIG_PATH", core.DefaultModelsConfigPath),
		RateLimit:          parseRateLimit(os.Getenv("RATE_LIMIT"), logger),
		CORSAllowOrigin:    util.GetEnvWithDefault("CORS_ALLOW_ORIGIN", "*"),
		HTTPClientSettings: DefaultHTTPClientSettings(),
	}

	return config, nil
}

// LoadCredentialsFromEnv reads LongCat credentials from LONGCAT_API_KEY and LONGCAT_BASE_URL.
func LoadCredentialsFromEnv() core.Credentials {
	return core.Credentials{
		APIKey:  strings.TrimSpace(os.Getenv("LONGCAT_API_KEY")),
		BaseURL: util.GetEnvWithDefault("LONGCAT_BASE_URL", core.DefaultBaseURL),
	}
}

func parseRateLimit(raw string, logger core.Logger) int {
	if raw == "" {
		return DefaultRateLimit
	}
	rate, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || rate <= 0 {
		logger.Warn("Invalid RATE_LIMIT value '%s', using default %d", raw, DefaultRateLimit)
		return DefaultRateLimit
	}
	return rate
}
