package service

import (
	"github.com/MKhiriev/go-assembly-sync/internal/adapter"
	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
)

// ClientServices is the wired sync core of the client.
type ClientServices struct {
	Mapper        *CollectionMapper
	Builder       *ModelRequestBuilder
	Connectivity  *ConnectivityService
	Communication *CommunicationManager
	Autoupdate    *AutoupdateService
}

// NewClientServices wires the sync core and registers the autoupdate
// endpoint of cfg.
func NewClientServices(
	cfg config.ClientAdapter,
	transport adapter.StreamTransport,
	dataStore ModelStore,
	stats StatsRecorder,
	log *logger.Logger,
) (*ClientServices, error) {
	mapper := NewCollectionMapper()
	if err := RegisterDefaultCollections(mapper); err != nil {
		return nil, err
	}
	builder := NewModelRequestBuilder(mapper)

	connectivity := NewConnectivityService(log.ForComponent("connectivity"))
	manager := NewCommunicationManager(transport, adapter.NewEndpointRegistry(), connectivity, log.ForComponent("communication"))

	autoupdateURL, err := cfg.AutoupdateURL()
	if err != nil {
		return nil, err
	}
	healthURL, err := cfg.HealthURL()
	if err != nil {
		return nil, err
	}
	if err = manager.RegisterEndpoint(AutoupdateEndpoint, autoupdateURL, healthURL, "POST"); err != nil {
		return nil, err
	}

	return &ClientServices{
		Mapper:        mapper,
		Builder:       builder,
		Connectivity:  connectivity,
		Communication: manager,
		Autoupdate:    NewAutoupdateService(manager, dataStore, mapper, builder, stats, log.ForComponent("autoupdate")),
	}, nil
}
