package selection

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBackend struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	getErr error
	setErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]byte)}
}

func (f *fakeBackend) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeBackend) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func TestRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, zap.NewNop())
	require.Empty(t, store.Load())

	store.Upsert("itsm", []string{"ServiceNow", "Zendesk"}, []string{"Foo"})
	store.Upsert("dex", []string{"Nexthink"}, nil)

	reloaded := NewStore(backend, zap.NewNop())
	got := reloaded.Load()

	require.Len(t, got, 2)
	assert.Equal(t, ToolSelection{
		Category:      "itsm",
		SelectedTools: []string{"ServiceNow", "Zendesk"},
		CustomTools:   []string{"Foo"},
	}, got[0])
	assert.Equal(t, ToolSelection{
		Category:      "dex",
		SelectedTools: []string{"Nexthink"},
		CustomTools:   []string{},
	}, got[1])
}

func TestUpsertIsIdempotent(t *testing.T) {
	store := NewStore(newFakeBackend(), nil)
	store.Load()

	store.Upsert("rpa", []string{"UiPath"}, []string{"X"})
	store.Upsert("rpa", []string{"UiPath"}, []string{"X"})

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, []string{"UiPath"}, snapshot[0].SelectedTools)
}

func TestUpsertReplacesInPlace(t *testing.T) {
	store := NewStore(newFakeBackend(), nil)
	store.Load()

	store.Upsert("idp", []string{"Rossum"}, nil)
	store.Upsert("dex", nil, nil)
	store.Upsert("aiops", []string{"Splunk"}, nil)
	store.Upsert("dex", []string{"ControlUp"}, []string{"Custom"})

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "idp", snapshot[0].Category)
	assert.Equal(t, "dex", snapshot[1].Category)
	assert.Equal(t, "aiops", snapshot[2].Category)
	assert.Equal(t, []string{"ControlUp"}, snapshot[1].SelectedTools)
	assert.Equal(t, []string{"Custom"}, snapshot[1].CustomTools)
}

func TestUpsertCopiesInput(t *testing.T) {
	store := NewStore(newFakeBackend(), nil)
	store.Load()

	tools := []string{"Slack"}
	store.Upsert("collaboration", tools, nil)
	tools[0] = "mutated"

	sel, ok := store.Get("collaboration")
	require.True(t, ok)
	assert.Equal(t, []string{"Slack"}, sel.SelectedTools)
}

func TestMountingDoesNotOverwritePriorSession(t *testing.T) {
	prior := []byte(`[{"category":"itsm","selectedTools":["ServiceNow"],"customTools":[]}]`)
	backend := newFakeBackend()
	backend.data[LiveKey] = prior
	backend.getErr = errors.New("transient read failure")

	store := NewStore(backend, nil)
	assert.Empty(t, store.Load())

	assert.Equal(t, 0, backend.sets, "an empty store must not be written")
	assert.Equal(t, prior, backend.data[LiveKey])
}

func TestLoadMissingOrMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"missing", nil},
		{"not json", []byte("{{{")},
		{"wrong shape", []byte(`{"category":"itsm"}`)},
		{"empty category", []byte(`[{"category":"","selectedTools":[]}]`)},
		{"duplicate category", []byte(`[{"category":"a"},{"category":"a"}]`)},
		{"null", []byte("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			if tt.data != nil {
				backend.data[LiveKey] = tt.data
			}
			store := NewStore(backend, zap.NewNop())

			got := store.Load()
			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestLoadNormalizesMissingLists(t *testing.T) {
	backend := newFakeBackend()
	backend.data[LiveKey] = []byte(`[{"category":"itsm"}]`)

	got := NewStore(backend, nil).Load()
	require.Len(t, got, 1)
	assert.Equal(t, []string{}, got[0].SelectedTools)
	assert.Equal(t, []string{}, got[0].CustomTools)
}

func TestStorageFailuresAreLoggedAndSwallowed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	backend := newFakeBackend()
	backend.getErr = errors.New("disk gone")
	backend.setErr = errors.New("disk full")

	store := NewStore(backend, zap.New(core))

	assert.Empty(t, store.Load())
	store.Upsert("itsm", []string{"ServiceNow"}, nil)
	store.CommitFinal(store.Snapshot())

	// in-memory state is still authoritative
	sel, ok := store.Get("itsm")
	require.True(t, ok)
	assert.Equal(t, []string{"ServiceNow"}, sel.SelectedTools)

	assert.Equal(t, 1, logs.FilterMessage("Failed to read saved selections").Len())
	assert.Equal(t, 2, logs.FilterMessage("Failed to persist selections").Len())
}

func TestCommitFinalIsIndependent(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil)
	store.Load()

	_, ok := store.LoadFinal()
	assert.False(t, ok)

	store.Upsert("itsm", []string{"ServiceNow"}, nil)
	store.CommitFinal(store.Snapshot())
	store.Upsert("itsm", []string{"Zendesk"}, nil)

	final, ok := store.LoadFinal()
	require.True(t, ok)
	require.Len(t, final, 1)
	assert.Equal(t, []string{"ServiceNow"}, final[0].SelectedTools)

	live := NewStore(backend, nil).Load()
	require.Len(t, live, 1)
	assert.Equal(t, []string{"Zendesk"}, live[0].SelectedTools)
}

func TestStoreIsAListener(t *testing.T) {
	store := NewStore(newFakeBackend(), nil)
	store.Load()

	var l Listener = store
	l.OnSelectionChange(ToolSelection{Category: "ipaas", SelectedTools: []string{"Zapier"}})

	sel, ok := store.Get("ipaas")
	require.True(t, ok)
	assert.Equal(t, 1, sel.Count())
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore(newFakeBackend(), nil)
	store.Load()
	store.Upsert("dex", []string{"Nexthink"}, nil)

	snap := store.Snapshot()
	snap[0].SelectedTools[0] = "mutated"

	sel, _ := store.Get("dex")
	assert.Equal(t, "Nexthink", sel.SelectedTools[0])
}

func TestSnapshotUsesBrowserFieldNames(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil)
	store.Load()
	store.Upsert("dex", []string{"Nexthink"}, []string{"Foo"})

	assert.JSONEq(t,
		`[{"category":"dex","selectedTools":["Nexthink"],"customTools":["Foo"]}]`,
		string(backend.data[LiveKey]),
	)
}
