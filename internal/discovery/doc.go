// Package discovery advertises the arena server on the local network.
//
// The server registers a multicast DNS (mDNS) service record of type
// "_ssh._tcp" so LAN clients can locate the SSH endpoint without knowing
// the host address. TXT records carry the application name and hostname.
//
// # Usage Example
//
//	stop, err := discovery.Advertise("Pokemon Arena", 2222)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stop()
//
// Advertisement is best effort: a registration failure is worth a warning,
// never a refusal to serve.
package discovery
