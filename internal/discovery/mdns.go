package discovery

import (
	"fmt"
	"os"

	"github.com/grandcat/zeroconf"

	"github.com/pokearena/arena/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type the arena advertises under, so
	// LAN clients can find the SSH endpoint without knowing the address
	ServiceType = "_ssh._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// Advertise registers the arena's SSH endpoint on the local network and
// returns a function that withdraws the advertisement.
func Advertise(instance string, port int) (func(), error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "arena"
	}

	server, err := zeroconf.Register(
		instance,
		ServiceType,
		ServiceDomain,
		port,
		[]string{"app=pokearena", "host=" + hostname},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising via mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)

	return func() {
		server.Shutdown()
		logging.Info("mDNS advertisement withdrawn", zap.String("instance", instance))
	}, nil
}
