package commands

import (
	"fmt"
	"path/filepath"

	"github.com/systmms/kpsec/internal/adapter"
	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/internal/engine/kdbx"
	kperrors "github.com/systmms/kpsec/internal/errors"
	"github.com/systmms/kpsec/internal/masterkey"
	"github.com/systmms/kpsec/internal/metrics"
	"github.com/systmms/kpsec/internal/params"
	"github.com/systmms/kpsec/internal/prompt"
	"github.com/systmms/kpsec/internal/registry"
	"github.com/systmms/kpsec/internal/sources"
	"github.com/systmms/kpsec/pkg/vault"
)

// runtime is the assembled object graph behind every command: one engine,
// one source registry, one resolver with its process-lifetime key cache,
// and the adapter tying them together.
type runtime struct {
	cfg      *config.Config
	engine   *kdbx.Engine
	registry *registry.Registry
	resolver *masterkey.Resolver
	adapter  *adapter.Adapter
	prompter *prompt.Terminal
}

// newRuntime loads the configuration and wires the adapter stack.
func newRuntime(cfg *config.Config) (*runtime, error) {
	if err := cfg.Load(); err != nil {
		return nil, err
	}

	metrics.InitMetrics()

	// Profile registrations live next to the vaults file so validation
	// in one run carries into the next.
	profilesPath := filepath.Join(filepath.Dir(cfg.Path), ".kpsec-profiles.yaml")
	eng, err := kdbx.NewEngine(cfg.Logger, kdbx.WithProfilesFile(profilesPath))
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry()
	reg.RegisterFactory("keychain", func(name string, bag map[string]interface{}) (vault.SecretSource, error) {
		return sources.NewKeychainSource(name, bag)
	})
	reg.RegisterFactory("aws.secretsmanager", func(name string, bag map[string]interface{}) (vault.SecretSource, error) {
		return sources.NewAWSSecretsManagerSource(name, bag)
	})

	var prompter *prompt.Terminal
	var resolverPrompter masterkey.Prompter
	if !cfg.NonInteractive {
		prompter = prompt.NewTerminal()
		if prompter.Available() {
			resolverPrompter = prompter
		}
	}

	resolver := masterkey.New(masterkey.NewCache(), resolverPrompter, reg, cfg.Logger)
	adp := adapter.New(eng, params.NewBuilder(resolver), resolver, cfg.Logger)

	// kdbx vaults are themselves secret sources, so one database can hold
	// the master key of another.
	reg.RegisterFactory("kdbx", func(name string, bag map[string]interface{}) (vault.SecretSource, error) {
		return adp.AsSource(name, bag), nil
	})
	reg.Configure(cfg.Definition.Vaults)

	return &runtime{
		cfg:      cfg,
		engine:   eng,
		registry: reg,
		resolver: resolver,
		adapter:  adp,
		prompter: prompter,
	}, nil
}

// vaultParams returns the adapter parameter bag for a configured kdbx
// vault.
func (r *runtime) vaultParams(vaultName string) (map[string]interface{}, error) {
	def, ok := r.cfg.Definition.Vaults[vaultName]
	if !ok {
		return nil, kperrors.UserError{
			Message:    fmt.Sprintf("Vault '%s' is not configured", vaultName),
			Suggestion: "Run 'kpsec vaults' to list configured vaults",
		}
	}
	if def.Type != "kdbx" {
		return nil, kperrors.UserError{
			Message:    fmt.Sprintf("Vault '%s' has type '%s'; secret operations need a kdbx vault", vaultName, def.Type),
			Suggestion: "Delegate-only vaults (keychain, aws.secretsmanager) hold master keys, not entries",
		}
	}

	bag, ok := r.cfg.Definition.VaultParams(vaultName)
	if !ok {
		return nil, kperrors.UserError{
			Message: fmt.Sprintf("Vault '%s' has no usable configuration", vaultName),
		}
	}
	return bag, nil
}
