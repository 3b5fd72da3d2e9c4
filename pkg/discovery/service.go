package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

const (
	DefaultServiceType = "_chat-preview._tcp"
	DefaultDomain      = "local"
)

type ServiceInfo struct {
	Name   string // instance name
	Type   string // service type, e.g. "_chat-preview._tcp"
	Domain string // domain, e.g. "local"
	Addr   net.IP
	Port   int
}

// URL is the HTTP base URL of the peer.
func (s ServiceInfo) URL() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(s.Addr.String(), strconv.Itoa(s.Port)))
}

// Result carries either a snapshot of the visible services or an error.
type Result struct {
	Services []ServiceInfo
	Err      error
}

type Adapter interface {
	Announce(ctx context.Context, service ServiceInfo) error
	Discover(ctx context.Context, service string) <-chan Result
}
