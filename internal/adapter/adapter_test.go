package adapter_test

import (
	"bytes"
	"testing"

	"github.com/systmms/kpsec/internal/adapter"
	"github.com/systmms/kpsec/internal/logging"
	"github.com/systmms/kpsec/internal/masterkey"
	"github.com/systmms/kpsec/internal/params"
	"github.com/systmms/kpsec/tests/fakes"
)

// fixture wires an adapter to fakes for one test.
type fixture struct {
	engine   *fakes.FakeEngine
	prompter *fakes.FakePrompter
	lookup   *fakes.FakeSourceLookup
	cache    *masterkey.Cache
	adapter  *adapter.Adapter
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		engine:   fakes.NewFakeEngine(),
		prompter: &fakes.FakePrompter{Key: []byte("hunter2")},
		lookup:   &fakes.FakeSourceLookup{},
		cache:    masterkey.NewCache(),
		logs:     &bytes.Buffer{},
	}
	log := logging.NewWithWriter(false, true, f.logs)
	resolver := masterkey.New(f.cache, f.prompter, f.lookup, log)
	f.adapter = adapter.New(f.engine, params.NewBuilder(resolver), resolver, log)
	return f
}

func bag(path string) map[string]interface{} {
	return map[string]interface{}{"path": path}
}
