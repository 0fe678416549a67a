// Package discovery advertises the relay on the local network over
// mDNS/DNS-SD so UI clients can find the WebSocket endpoint.
package discovery

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/grandcat/zeroconf"
)

const (
	ServiceType = "_scanrelay._tcp"
	domain      = "local."
)

// Advertiser is a running mDNS registration.
type Advertiser struct {
	server *zeroconf.Server
}

// TXT builds the TXT records published next to the service.
func TXT(version, wsPath string, channels []string) []string {
	txt := []string{"version=" + version, "path=" + wsPath}
	for _, c := range channels {
		txt = append(txt, "channel="+c)
	}
	return txt
}

// Advertise registers instance on port. An empty instance uses the hostname.
func Advertise(instance string, port int, txt []string) (*Advertiser, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("hostname: %w", err)
		}
		instance = "scanrelay on " + host
	}

	server, err := zeroconf.Register(instance, ServiceType, domain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("register mdns service: %w", err)
	}

	slog.Info("advertising via mdns", "instance", instance, "service", ServiceType, "port", port)
	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	slog.Info("mdns advertisement stopped")
}
