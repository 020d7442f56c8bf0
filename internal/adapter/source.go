package adapter

import (
	"context"

	"github.com/systmms/kpsec/pkg/vault"
)

// vaultSource exposes one configured vault as a secret source, so another
// vault can delegate its master key here.
type vaultSource struct {
	adapter   *Adapter
	vaultName string
	bag       map[string]interface{}
}

// AsSource adapts a vault into a vault.SecretSource bound to the given
// parameter bag. Reads go through the full read path, recycle-bin
// filtering and key resolution included.
func (a *Adapter) AsSource(vaultName string, bag map[string]interface{}) vault.SecretSource {
	return &vaultSource{adapter: a, vaultName: vaultName, bag: bag}
}

// ReadSecret implements vault.SecretSource.
func (s *vaultSource) ReadSecret(ctx context.Context, name string) (vault.Secret, error) {
	return s.adapter.Read(ctx, name, s.vaultName, s.bag)
}
