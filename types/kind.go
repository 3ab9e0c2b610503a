package types

import "fmt"

// Kind identifies one of the cloud entity types tracked for usage
// statistics.
type Kind string

const (
	KindVM     Kind = "vm"
	KindFlavor Kind = "flavor"
	KindTenant Kind = "tenant"
	KindImage  Kind = "image"
	KindVolume Kind = "volume"
)

// AllKinds returns every tracked kind in stable order.
func AllKinds() []Kind {
	return []Kind{KindVM, KindFlavor, KindTenant, KindImage, KindVolume}
}

// Valid reports whether k is one of the tracked kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindVM, KindFlavor, KindTenant, KindImage, KindVolume:
		return true
	}
	return false
}

// ParseKind converts a config or CLI string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown resource kind %q", s)
	}
	return k, nil
}
