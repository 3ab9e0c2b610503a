package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2"
)

// collectionManager fetches one API collection's detail listing and
// yields raw instances as plain mappings, so vendor-extension keys
// like "OS-EXT-STS:power_state" survive extraction.
type collectionManager struct {
	client   *gophercloud.ServiceClient
	segments []string
	key      string
}

// List fetches the collection in one call and returns the decoded
// instances in API order.
func (m *collectionManager) List(ctx context.Context) ([]any, error) {
	var body map[string]any
	_, err := m.client.Get(ctx, m.client.ServiceURL(m.segments...), &body, nil)
	if err != nil {
		return nil, err
	}

	items, ok := body[m.key].([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected payload shape: missing %q collection", m.key)
	}
	return items, nil
}
