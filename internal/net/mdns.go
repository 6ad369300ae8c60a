package net

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	pkglog "SharedBoard/internal/log"

	"github.com/hashicorp/mdns"
)

const serviceType = "_sharedboard._tcp"

// Advertise announces a relay listening on port until the returned server
// is shut down.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"SharedBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	l := pkglog.L()
	l.Info().Str("service", serviceType).Int("port", port).Msg("advertising relay")
	return server, nil
}

// Browse looks for advertised relays for up to timeout and returns their
// host:port addresses, without duplicates, in discovery order.
func Browse(ctx context.Context, timeout time.Duration) ([]string, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	var found []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr := net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))
			if !seen[addr] {
				seen[addr] = true
				found = append(found, addr)
			}
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-done
	if err != nil {
		return found, fmt.Errorf("mdns query: %w", err)
	}
	return found, nil
}
