// Package config parses the two configuration surfaces of kpsec: the
// free-form additional-parameters bag the host supplies per call, and the
// vaults.yaml file the CLI uses to register vaults and delegate sources.
package config

import (
	"os"

	"github.com/systmms/kpsec/internal/logging"
	"github.com/systmms/kpsec/pkg/vault"
	"gopkg.in/yaml.v3"
)

// Parameter-bag keys recognized on every operation.
const (
	ParamPath             = "path"
	ParamDefaultGroupPath = "defaultEntryGroupPath"
	ParamMasterKeyVault   = "masterKeyVault"
	ParamMasterKeySecret  = "masterKeySecretName"
)

// VaultConfig is one vault's declared configuration. It is supplied per
// call by the host and never persisted by the adapter; the engine's own
// profile registration is the only durable state.
type VaultConfig struct {
	// VaultName is the unique registration key.
	VaultName string

	// DatabasePath locates the database file.
	DatabasePath string

	// DefaultGroupPath, when set, is copied into each operation's
	// group-path field.
	DefaultGroupPath string

	// MasterKeyVault and MasterKeySecret configure delegation: the
	// master key is read as secret MasterKeySecret from the vault
	// registered as MasterKeyVault. They are required as a pair.
	MasterKeyVault  string
	MasterKeySecret string
}

// Delegated reports whether a master-key delegation is configured.
func (c VaultConfig) Delegated() bool {
	return c.MasterKeyVault != "" || c.MasterKeySecret != ""
}

// FromParams builds a VaultConfig from the host's parameter bag. Unknown
// keys are ignored; known keys with non-string values fail with
// vault.ConfigError. Pair completeness of the delegation keys is checked
// where it matters, by the resolver and the validator.
func FromParams(vaultName string, params map[string]interface{}) (VaultConfig, error) {
	cfg := VaultConfig{VaultName: vaultName}

	read := func(key string, dst *string) error {
		raw, ok := params[key]
		if !ok || raw == nil {
			return nil
		}
		s, ok := raw.(string)
		if !ok {
			return vault.ConfigError{
				Vault:   vaultName,
				Field:   key,
				Message: "expected a string value",
			}
		}
		*dst = s
		return nil
	}

	for key, dst := range map[string]*string{
		ParamPath:             &cfg.DatabasePath,
		ParamDefaultGroupPath: &cfg.DefaultGroupPath,
		ParamMasterKeyVault:   &cfg.MasterKeyVault,
		ParamMasterKeySecret:  &cfg.MasterKeySecret,
	} {
		if err := read(key, dst); err != nil {
			return VaultConfig{}, err
		}
	}

	return cfg, nil
}

// Params converts a VaultConfig back into a host-style parameter bag.
// The CLI uses it when invoking adapter operations for configured vaults.
func (c VaultConfig) Params() map[string]interface{} {
	params := map[string]interface{}{
		ParamPath: c.DatabasePath,
	}
	if c.DefaultGroupPath != "" {
		params[ParamDefaultGroupPath] = c.DefaultGroupPath
	}
	if c.MasterKeyVault != "" {
		params[ParamMasterKeyVault] = c.MasterKeyVault
	}
	if c.MasterKeySecret != "" {
		params[ParamMasterKeySecret] = c.MasterKeySecret
	}
	return params
}

// Config holds the CLI runtime configuration.
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the vaults.yaml structure.
type Definition struct {
	Version int                 `yaml:"version"`
	Vaults  map[string]VaultDef `yaml:"vaults"`
}

// VaultDef declares one registered vault or delegate source.
type VaultDef struct {
	// Type selects the source kind: "kdbx", "keychain", or
	// "aws.secretsmanager".
	Type string `yaml:"type"`

	// Config carries type-specific settings inline.
	Config map[string]interface{} `yaml:",inline"`
}

// Load reads, validates, and parses the vaults.yaml file.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return vault.ConfigError{
				Field:   "path",
				Message: "configuration file not found: " + c.Path,
			}
		}
		return err
	}

	// Validate the raw document first: the schema sees YAML's generic
	// form, which keeps inline type-specific keys visible to it.
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return vault.ConfigError{
			Field:   "path",
			Message: "invalid YAML in " + c.Path + ": " + err.Error(),
		}
	}
	if err := validateDefinition(raw); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return vault.ConfigError{
			Field:   "path",
			Message: "invalid YAML in " + c.Path + ": " + err.Error(),
		}
	}

	c.Definition = &def
	return nil
}

// VaultParams builds the adapter parameter bag for a configured kdbx vault.
func (d *Definition) VaultParams(name string) (map[string]interface{}, bool) {
	def, ok := d.Vaults[name]
	if !ok || def.Type != "kdbx" {
		return nil, false
	}
	params := make(map[string]interface{}, len(def.Config))
	for k, v := range def.Config {
		params[k] = v
	}
	return params, true
}
