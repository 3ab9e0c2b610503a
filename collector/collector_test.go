package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzaremba/oswatch/schema"
	"github.com/pzaremba/oswatch/types"
)

// fakeManager is a ResourceManager returning canned instances.
type fakeManager struct {
	name      string
	instances []any
	err       error
	calls     int
}

func (m *fakeManager) List(ctx context.Context) ([]any, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.instances, nil
}

// fakeHolder exposes named sub-objects like a client provider does.
type fakeHolder struct {
	children map[string]any
}

func (h *fakeHolder) Attribute(name string) (any, bool) {
	v, ok := h.children[name]
	return v, ok
}

func holderWith(services map[string]map[string]any) *fakeHolder {
	children := make(map[string]any, len(services))
	for name, managers := range services {
		sub := make(map[string]any, len(managers))
		for mName, mgr := range managers {
			sub[mName] = mgr
		}
		children[name] = &fakeHolder{children: sub}
	}
	return &fakeHolder{children: children}
}

func TestResolveManagerFirstMatchWins(t *testing.T) {
	tenants := &fakeManager{name: "tenants"}
	projects := &fakeManager{name: "projects"}
	holder := holderWith(map[string]map[string]any{
		"keystone": {"tenants": tenants, "projects": projects},
	})

	sch, err := schema.Lookup(types.KindTenant)
	require.NoError(t, err)

	mgr, err := ResolveManager(holder, sch.ManagerPaths)
	require.NoError(t, err)
	assert.Same(t, tenants, mgr)
}

func TestResolveManagerFallsBackInOrder(t *testing.T) {
	projects := &fakeManager{name: "projects"}
	holder := holderWith(map[string]map[string]any{
		"keystone": {"projects": projects},
	})

	sch, err := schema.Lookup(types.KindTenant)
	require.NoError(t, err)

	mgr, err := ResolveManager(holder, sch.ManagerPaths)
	require.NoError(t, err)
	assert.Same(t, projects, mgr)
}

func TestResolveManagerExhaustion(t *testing.T) {
	holder := holderWith(map[string]map[string]any{
		"cinder": {"volumes": &fakeManager{}},
	})

	sch, err := schema.Lookup(types.KindTenant)
	require.NoError(t, err)

	_, err = ResolveManager(holder, sch.ManagerPaths)
	assert.ErrorIs(t, err, ErrManagerUnavailable)
}

func TestResolveManagerSkipsNonManagers(t *testing.T) {
	servers := &fakeManager{}
	holder := holderWith(map[string]map[string]any{
		"nova": {"servers": "not a manager"},
	})

	_, err := ResolveManager(holder, [][]string{{"nova", "servers"}})
	assert.ErrorIs(t, err, ErrManagerUnavailable)

	holder.children["nova"] = &fakeHolder{children: map[string]any{"servers": servers}}
	mgr, err := ResolveManager(holder, [][]string{{"nova", "servers"}})
	require.NoError(t, err)
	assert.Same(t, servers, mgr)
}

func TestExtractUnknownKind(t *testing.T) {
	c := New(zerolog.Nop())

	_, err := c.Extract(context.Background(), &fakeHolder{}, types.Kind("subnet"))
	assert.ErrorIs(t, err, schema.ErrNotFound)
}

func TestExtractManagerUnavailableNamesKind(t *testing.T) {
	c := New(zerolog.Nop())

	_, err := c.Extract(context.Background(), &fakeHolder{}, types.KindVM)
	require.ErrorIs(t, err, ErrManagerUnavailable)
	assert.Contains(t, err.Error(), "vm")
}

func TestExtractVMRecord(t *testing.T) {
	servers := &fakeManager{instances: []any{
		map[string]any{
			"id":                     "i-1",
			"status":                 "ACTIVE",
			"hostId":                 "h1",
			"created":                "t0",
			"OS-EXT-STS:power_state": 1,
			"flavor":                 map[string]any{"id": "f1"},
			"image":                  map[string]any{"id": "im1"},
		},
	}}
	holder := holderWith(map[string]map[string]any{
		"nova": {"servers": servers},
	})

	c := New(zerolog.Nop())
	records, err := c.Extract(context.Background(), holder, types.KindVM)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "i-1", rec["id"])
	assert.Equal(t, "ACTIVE", rec["status"])
	assert.Equal(t, "h1", rec["host_id"])
	assert.Equal(t, "t0", rec["created_at"])
	assert.Equal(t, 1, rec["power_state"])
	assert.Equal(t, "f1", rec["flavor_id"])
	assert.Equal(t, "im1", rec["image_id"])
	assert.True(t, types.IsAbsent(rec["tenant_id"]), "missing field records the absent sentinel")
}

func TestExtractPreservesInstanceOrder(t *testing.T) {
	servers := &fakeManager{instances: []any{
		map[string]any{"id": "i-1"},
		map[string]any{"id": "i-2"},
		map[string]any{"id": "i-3"},
	}}
	holder := holderWith(map[string]map[string]any{
		"nova": {"servers": servers},
	})

	c := New(zerolog.Nop())
	records, err := c.Extract(context.Background(), holder, types.KindVM)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "i-1", records[0]["id"])
	assert.Equal(t, "i-2", records[1]["id"])
	assert.Equal(t, "i-3", records[2]["id"])
}

func TestExtractUpstreamFailure(t *testing.T) {
	cause := errors.New("compute API unreachable")
	servers := &fakeManager{err: cause}
	holder := holderWith(map[string]map[string]any{
		"nova": {"servers": servers},
	})

	c := New(zerolog.Nop())
	records, err := c.Extract(context.Background(), holder, types.KindVM)

	assert.Nil(t, records, "no partial results on upstream failure")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, types.KindVM, upstream.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestExtractNormalizesMapperInstances(t *testing.T) {
	flavors := &fakeManager{instances: []any{
		mapperInstance{m: map[string]any{"id": "f1", "ram": 512, "vcpus": 2, "disk": 10, "swap": 0}},
	}}
	holder := holderWith(map[string]map[string]any{
		"nova": {"flavors": flavors},
	})

	c := New(zerolog.Nop())
	records, err := c.Extract(context.Background(), holder, types.KindFlavor)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "f1", records[0]["id"])
	assert.Equal(t, 512, records[0]["ram"])
	assert.Equal(t, 0, records[0]["swap"])
	assert.True(t, types.IsAbsent(records[0]["ephemeral"]))
}

type mapperInstance struct {
	m map[string]any
}

func (i mapperInstance) ToMap() map[string]any {
	return i.m
}
