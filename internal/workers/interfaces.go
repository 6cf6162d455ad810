// Package workers provides the background workers of the sync client and
// the Workers aggregate that runs them together.
package workers

import (
	"context"

	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// Worker is a background job. Run blocks until ctx is done.
type Worker interface {
	Run(ctx context.Context)
}

// HealthChecker probes the server's health endpoint.
type HealthChecker interface {
	CheckHealth(ctx context.Context, healthURL string) error
}

// ConnectivityTracker is the online state the health poller restores.
type ConnectivityTracker interface {
	IsOnline() bool
	GoOnline()
}

// CommitSource is the data store as seen by the cache persister.
type CommitSource interface {
	Subscribe(buffer int) (<-chan store.CommitEvent, func())
	Get(collection string, id int) (models.BaseModel, bool)
}
