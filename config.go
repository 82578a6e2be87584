// Package syncauth holds the configuration shared by the persona and auth
// packages.
package syncauth

import (
	"github.com/dpup/syncauth/internal/config"
	"github.com/dpup/syncauth/logging"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Filename of the standard configuration file.
const ConfigFile = "syncauth.yaml"

// Well known configuration keys.
const (
	KeyFacebookLoginPath     = "auth.facebook.loginPath"
	KeyPersonaLoginPath      = "auth.persona.loginPath"
	KeyPersonaCodecCacheSize = "auth.persona.codecCacheSize"
	KeyLoggingFormat         = "logging.format"
)

// ConfigKeyInfo contains metadata about a known configuration key.
type ConfigKeyInfo = config.ConfigKeyInfo

// Config is a global koanf instance used to access library and application
// level configuration options.
//
// Config is loaded in the following order (later sources override earlier):
// 1. Defaults of registered keys (in init())
// 2. Auto-discovered syncauth.yaml (in init())
// 3. Environment variables with SA__ prefix (in init())
// 4. Additional sources loaded via LoadConfigFile()
//
// Environment variable transformation:
//   - SA__AUTH__PERSONA__LOGIN_PATH → auth.persona.loginPath
//   - SA__LOGGING__FORMAT → logging.format
var Config = koanf.New(".")

func init() {
	registerCoreConfigKeys()

	if err := Config.Load(confmap.Provider(config.DefaultConfigs(), "."), nil); err != nil {
		panic("error loading config defaults: " + err.Error())
	}

	// Look for a syncauth.yaml file in the current directory or any parent.
	if cfg := config.SearchForConfig(ConfigFile, "."); cfg != "" {
		if err := Config.Load(file.Provider(cfg), yaml.Parser()); err != nil {
			panic("error loading config: " + err.Error())
		}
	}

	if err := Config.Load(env.Provider(config.EnvPrefix, ".", config.TransformEnv), nil); err != nil {
		panic("error loading env config: " + err.Error())
	}
}

// RegisterConfigKeys documents configuration keys. Keys that carry a default
// are applied immediately unless a value is already present.
//
// Example:
//
//	syncauth.RegisterConfigKeys(syncauth.ConfigKeyInfo{
//	    Key:         "myapp.syncURL",
//	    Description: "Remote database to replicate with",
//	    Type:        "string",
//	})
func RegisterConfigKeys(infos ...ConfigKeyInfo) {
	config.RegisterConfigKeys(infos...)
	defaults := map[string]interface{}{}
	for _, info := range infos {
		if info.Default != nil {
			defaults[info.Key] = info.Default
		}
	}
	LoadConfigDefaults(defaults)
}

// RegisterDeprecatedKey registers a deprecated configuration key and its replacement.
func RegisterDeprecatedKey(oldKey, newKey string) {
	config.RegisterDeprecatedKey(oldKey, newKey)
}

// LoadConfigFile loads additional configuration from a YAML file into the
// global Config instance.
func LoadConfigFile(path string) error {
	return Config.Load(file.Provider(path), yaml.Parser())
}

// LoadConfigDefaults sets values for keys that are not yet configured.
// Existing values from files, env vars or earlier defaults are left alone.
func LoadConfigDefaults(defaults map[string]interface{}) {
	missing := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		if !Config.Exists(k) {
			missing[k] = v
		}
	}
	if len(missing) == 0 {
		return
	}
	if err := Config.Load(confmap.Provider(missing, "."), nil); err != nil {
		panic("error loading config defaults: " + err.Error())
	}
}

// ValidateConfig returns a human readable description of unknown or
// deprecated keys in the loaded configuration, or "" if there are none.
func ValidateConfig() string {
	return config.FormatValidationWarnings(config.ValidateConfigKeys(Config))
}

// ConfigString returns the string value for the given key.
func ConfigString(key string) string {
	return Config.String(key)
}

// ConfigInt returns the int value for the given key.
func ConfigInt(key string) int {
	return Config.Int(key)
}

// ConfigExists checks if the given key exists in the configuration.
func ConfigExists(key string) bool {
	return Config.Exists(key)
}

// ConfiguredLogger returns a logger matching the `logging.format` key.
func ConfiguredLogger() logging.Logger {
	switch ConfigString(KeyLoggingFormat) {
	case "dev":
		return logging.NewDevLogger()
	case "prod":
		return logging.NewProdLogger()
	default:
		return logging.NewNopLogger()
	}
}

func registerCoreConfigKeys() {
	config.RegisterConfigKeys(
		ConfigKeyInfo{
			Key:         KeyFacebookLoginPath,
			Description: "Login path, relative to the remote database, for Facebook tokens",
			Type:        "string",
			Default:     "_facebook",
		},
		ConfigKeyInfo{
			Key:         KeyPersonaLoginPath,
			Description: "Login path, relative to the remote database, for Persona assertions",
			Type:        "string",
			Default:     "_persona",
		},
		ConfigKeyInfo{
			Key:         KeyPersonaCodecCacheSize,
			Description: "Number of decoded assertions memoized by the default codec, 0 disables",
			Type:        "int",
			Default:     128,
		},
		ConfigKeyInfo{
			Key:         KeyLoggingFormat,
			Description: "Logger returned by ConfiguredLogger: nop, dev or prod",
			Type:        "string",
			Default:     "nop",
		},
	)
}
