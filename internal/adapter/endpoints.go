package adapter

import (
	"fmt"
	"sync"

	"github.com/MKhiriev/go-assembly-sync/models"
)

// EndpointRegistry holds the named endpoints streams can be opened against.
// Endpoints are immutable once registered.
type EndpointRegistry struct {
	mu        sync.RWMutex
	endpoints map[string]models.Endpoint
}

func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{endpoints: make(map[string]models.Endpoint)}
}

// Register adds an endpoint. Registering an identical definition again is a
// no-op; a different definition under the same name is rejected.
func (r *EndpointRegistry) Register(endpoint models.Endpoint) error {
	if endpoint.Name == "" || endpoint.URL == "" {
		return fmt.Errorf("%w: name and url are required", ErrInvalidEndpoint)
	}
	endpoint.Method = endpoint.NormalizedMethod()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.endpoints[endpoint.Name]; ok {
		if existing == endpoint {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrEndpointConflict, endpoint.Name)
	}

	r.endpoints[endpoint.Name] = endpoint
	return nil
}

// Get looks an endpoint up by name.
func (r *EndpointRegistry) Get(name string) (models.Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	endpoint, ok := r.endpoints[name]
	if !ok {
		return models.Endpoint{}, fmt.Errorf("%w: %s", ErrEndpointNotFound, name)
	}
	return endpoint, nil
}
