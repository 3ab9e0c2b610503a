// Package openstack builds the OpenStack client holder: lazily
// constructed nova, cinder and keystone service clients exposed as
// named attributes for resource manager resolution.
package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/rs/zerolog"

	"github.com/pzaremba/oswatch/config"
)

// ClientProvider authenticates once against keystone and hands out
// service clients on demand. Construction of each service client is
// memoized on first use; the provider is not safe for concurrent use,
// matching the synchronous collection model.
type ClientProvider struct {
	cfg    config.OpenStack
	region string
	logger zerolog.Logger

	provider *gophercloud.ProviderClient
	nova     *computeService
	cinder   *volumeService
	keystone *identityService
}

// NewClientProvider authenticates against the configured identity
// endpoint and returns a provider ready for attribute resolution.
func NewClientProvider(ctx context.Context, cfg config.OpenStack, region string, logger zerolog.Logger) (*ClientProvider, error) {
	ao := gophercloud.AuthOptions{
		IdentityEndpoint: cfg.AuthURL,
		Username:         cfg.Username,
		Password:         cfg.Password,
		TenantName:       cfg.Tenant,
		DomainName:       cfg.Domain,
		AllowReauth:      true,
	}

	pc, err := openstack.AuthenticatedClient(ctx, ao)
	if err != nil {
		return nil, fmt.Errorf("authenticating against %s: %w", cfg.AuthURL, err)
	}

	return &ClientProvider{
		cfg:      cfg,
		region:   region,
		logger:   logger,
		provider: pc,
	}, nil
}

// Attribute implements pathwalk.AttributeGetter. Unknown names and
// services missing from the catalog read as unresolved so manager
// resolution can fall through to the next candidate path.
func (p *ClientProvider) Attribute(name string) (any, bool) {
	switch name {
	case "nova":
		if p.nova == nil {
			client, err := openstack.NewComputeV2(p.provider, p.endpointOpts())
			if err != nil {
				p.logger.Warn().Err(err).Msg("compute service unavailable")
				return nil, false
			}
			p.nova = &computeService{client: client}
		}
		return p.nova, true
	case "cinder":
		if p.cinder == nil {
			client, err := openstack.NewBlockStorageV3(p.provider, p.endpointOpts())
			if err != nil {
				p.logger.Warn().Err(err).Msg("block storage service unavailable")
				return nil, false
			}
			p.cinder = &volumeService{client: client}
		}
		return p.cinder, true
	case "keystone":
		if p.keystone == nil {
			p.keystone = newIdentityService(p.provider, p.endpointOpts(), p.logger)
		}
		return p.keystone, true
	}
	return nil, false
}

func (p *ClientProvider) endpointOpts() gophercloud.EndpointOpts {
	return gophercloud.EndpointOpts{Region: p.region}
}

// computeService exposes the nova resource managers.
type computeService struct {
	client *gophercloud.ServiceClient
}

func (s *computeService) Attribute(name string) (any, bool) {
	switch name {
	case "servers":
		return &collectionManager{client: s.client, segments: []string{"servers", "detail"}, key: "servers"}, true
	case "flavors":
		return &collectionManager{client: s.client, segments: []string{"flavors", "detail"}, key: "flavors"}, true
	case "images":
		// nova's image proxy keeps the original attribute shapes
		// (minDisk, OS-EXT-IMG-SIZE:size) the image schema expects.
		return &collectionManager{client: s.client, segments: []string{"images", "detail"}, key: "images"}, true
	}
	return nil, false
}

// volumeService exposes the cinder resource managers.
type volumeService struct {
	client *gophercloud.ServiceClient
}

func (s *volumeService) Attribute(name string) (any, bool) {
	if name == "volumes" {
		return &collectionManager{client: s.client, segments: []string{"volumes", "detail"}, key: "volumes"}, true
	}
	return nil, false
}

// identityService exposes tenants (identity v2) or projects (identity
// v3) depending on which versions the deployment serves. The schema's
// ordered manager paths pick whichever resolves first.
type identityService struct {
	v2 *gophercloud.ServiceClient
	v3 *gophercloud.ServiceClient
}

func newIdentityService(pc *gophercloud.ProviderClient, eo gophercloud.EndpointOpts, logger zerolog.Logger) *identityService {
	s := &identityService{}
	if client, err := openstack.NewIdentityV3(pc, eo); err == nil {
		s.v3 = client
	} else {
		logger.Debug().Err(err).Msg("identity v3 unavailable")
	}
	if client, err := openstack.NewIdentityV2(pc, eo); err == nil {
		s.v2 = client
	} else {
		logger.Debug().Err(err).Msg("identity v2 unavailable")
	}
	return s
}

func (s *identityService) Attribute(name string) (any, bool) {
	switch name {
	case "tenants":
		if s.v2 != nil {
			return &collectionManager{client: s.v2, segments: []string{"tenants"}, key: "tenants"}, true
		}
	case "projects":
		if s.v3 != nil {
			return &collectionManager{client: s.v3, segments: []string{"projects"}, key: "projects"}, true
		}
	}
	return nil, false
}
