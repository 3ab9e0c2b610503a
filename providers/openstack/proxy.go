package openstack

import (
	"os"

	"github.com/rs/zerolog"
)

// WithProxy runs fn with the http_proxy environment variable pointed
// at proxy and restores the previous value afterwards. Collection
// traffic to a cluster's management network goes through a per-cluster
// proxy; nothing else in the process should.
func WithProxy(logger zerolog.Logger, proxy string, fn func() error) error {
	old, had := os.LookupEnv("http_proxy")
	if had {
		logger.Warn().
			Str("old", old).
			Str("new", proxy).
			Msg("http_proxy already set, will be restored afterwards")
	}

	if err := os.Setenv("http_proxy", proxy); err != nil {
		return err
	}
	defer func() {
		if had {
			_ = os.Setenv("http_proxy", old)
		} else {
			_ = os.Unsetenv("http_proxy")
		}
	}()

	return fn()
}
