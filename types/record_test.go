package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsentSentinel(t *testing.T) {
	assert.True(t, IsAbsent(Absent))
	assert.False(t, IsAbsent(nil))
	assert.False(t, IsAbsent(""))
	assert.False(t, IsAbsent(0))
}

func TestAbsentMarshalsAsNull(t *testing.T) {
	rec := Record{"status": "ACTIVE", "tenant_id": Absent}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var round map[string]any
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, "ACTIVE", round["status"])
	assert.Nil(t, round["tenant_id"])
}

type mappedInstance struct {
	id string
}

func (m mappedInstance) ToMap() map[string]any {
	return map[string]any{"id": m.id}
}

func TestNormalizePrefersToMap(t *testing.T) {
	got := Normalize(mappedInstance{id: "i-1"})
	assert.Equal(t, map[string]any{"id": "i-1"}, got)
}

func TestNormalizePassesThroughMappings(t *testing.T) {
	m := map[string]any{"id": "i-2"}
	assert.Equal(t, m, Normalize(m))
}

func TestNormalizeReflectsStructFields(t *testing.T) {
	inst := struct {
		ID      string `json:"id"`
		Status  string `json:"status,omitempty"`
		Skipped string `json:"-"`
		Plain   int
		hidden  bool
	}{ID: "i-3", Status: "ACTIVE", Skipped: "x", Plain: 7, hidden: true}

	got := Normalize(&inst)
	assert.Equal(t, map[string]any{"id": "i-3", "status": "ACTIVE", "Plain": 7}, got)
}

func TestNormalizeNonStructYieldsEmptyMapping(t *testing.T) {
	assert.Empty(t, Normalize(42))
	assert.Empty(t, Normalize(nil))
	var p *struct{ X int }
	assert.Empty(t, Normalize(p))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("vm")
	require.NoError(t, err)
	assert.Equal(t, KindVM, k)

	_, err = ParseKind("subnet")
	assert.Error(t, err)
}

func TestAllKindsAreValid(t *testing.T) {
	for _, k := range AllKinds() {
		assert.True(t, k.Valid(), "kind %s", k)
	}
}
