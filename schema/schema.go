// Package schema holds the static registry describing how each
// tracked resource kind is collected: where its resource manager
// lives on a client holder and which nested fields make up a record.
package schema

import (
	"errors"
	"fmt"

	"github.com/pzaremba/oswatch/types"
)

// ErrNotFound is returned when a resource kind is not registered.
var ErrNotFound = errors.New("resource kind not registered")

// Schema describes collection for one resource kind.
type Schema struct {
	// Attrs maps an output field name to the depth-exact key path
	// that extracts it from a raw instance mapping.
	Attrs map[string][]string

	// ManagerPaths lists candidate attribute paths from a client
	// holder to a resource manager, in preference order. Multiple
	// candidates absorb API version differences, e.g. identity v2
	// "tenants" versus v3 "projects".
	ManagerPaths [][]string
}

var registry = map[types.Kind]Schema{
	types.KindVM: {
		Attrs: map[string][]string{
			"id":          {"id"},
			"status":      {"status"},
			"tenant_id":   {"tenant_id"},
			"host_id":     {"hostId"},
			"created_at":  {"created"},
			"power_state": {"OS-EXT-STS:power_state"},
			"flavor_id":   {"flavor", "id"},
			"image_id":    {"image", "id"},
		},
		ManagerPaths: [][]string{{"nova", "servers"}},
	},
	types.KindFlavor: {
		Attrs: map[string][]string{
			"id":        {"id"},
			"ram":       {"ram"},
			"vcpus":     {"vcpus"},
			"ephemeral": {"OS-FLV-EXT-DATA:ephemeral"},
			"disk":      {"disk"},
			"swap":      {"swap"},
		},
		ManagerPaths: [][]string{{"nova", "flavors"}},
	},
	types.KindTenant: {
		Attrs: map[string][]string{
			"id":           {"id"},
			"enabled_flag": {"enabled"},
		},
		ManagerPaths: [][]string{
			{"keystone", "tenants"},
			{"keystone", "projects"},
		},
	},
	types.KindImage: {
		Attrs: map[string][]string{
			"id":         {"id"},
			"minDisk":    {"minDisk"},
			"minRam":     {"minRam"},
			"sizeBytes":  {"OS-EXT-IMG-SIZE:size"},
			"created_at": {"created"},
			"updated_at": {"updated"},
		},
		ManagerPaths: [][]string{{"nova", "images"}},
	},
	types.KindVolume: {
		Attrs: map[string][]string{
			"id":                {"id"},
			"availability_zone": {"availability_zone"},
			"encrypted_flag":    {"encrypted"},
			"bootable_flag":     {"bootable"},
			"status":            {"status"},
			"volume_type":       {"volume_type"},
			"size":              {"size"},
			"host":              {"os-vol-host-attr:host"},
			"snapshot_id":       {"snapshot_id"},
			"attachments":       {"attachments"},
			"tenant_id":         {"os-vol-tenant-attr:tenant_id"},
		},
		ManagerPaths: [][]string{{"cinder", "volumes"}},
	},
}

func init() {
	if err := validate(); err != nil {
		panic(err)
	}
}

// Lookup returns the schema for kind or ErrNotFound.
func Lookup(kind types.Kind) (Schema, error) {
	s, ok := registry[kind]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrNotFound, kind)
	}
	return s, nil
}

// Kinds returns every registered kind in stable order.
func Kinds() []types.Kind {
	kinds := make([]types.Kind, 0, len(registry))
	for _, k := range types.AllKinds() {
		if _, ok := registry[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// validate rejects degenerate registry entries at load time. Key-path
// depth against live instances cannot be checked here, but empty
// tables and empty segments are always authoring bugs.
func validate() error {
	for kind, s := range registry {
		if len(s.Attrs) == 0 {
			return fmt.Errorf("schema %s: no attributes declared", kind)
		}
		if len(s.ManagerPaths) == 0 {
			return fmt.Errorf("schema %s: no resource manager paths declared", kind)
		}
		for name, path := range s.Attrs {
			if len(path) == 0 {
				return fmt.Errorf("schema %s: attribute %q has an empty key path", kind, name)
			}
			for _, seg := range path {
				if seg == "" {
					return fmt.Errorf("schema %s: attribute %q has an empty path segment", kind, name)
				}
			}
		}
		for _, path := range s.ManagerPaths {
			if len(path) == 0 {
				return fmt.Errorf("schema %s: empty resource manager path", kind)
			}
			for _, seg := range path {
				if seg == "" {
					return fmt.Errorf("schema %s: resource manager path has an empty segment", kind)
				}
			}
		}
	}
	return nil
}
