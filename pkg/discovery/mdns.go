package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/brutella/dnssd"
)

var ErrNoPeers = errors.New("no chat peers found")

type MDNSAdapter struct{}

func (m *MDNSAdapter) Announce(ctx context.Context, serviceInfo ServiceInfo) error {
	cfg := dnssd.Config{
		Name:   serviceInfo.Name,
		Type:   serviceInfo.Type,
		Domain: serviceInfo.Domain,
		Text:   map[string]string{"desc": "Chat preview inbox"},
		Port:   serviceInfo.Port,
	}

	service, err := dnssd.NewService(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mDNS service: %w", err)
	}

	rp, err := dnssd.NewResponder()
	if err != nil {
		return fmt.Errorf("failed to create mDNS responder: %w", err)
	}

	if _, err = rp.Add(service); err != nil {
		return fmt.Errorf("failed to add mDNS service: %w", err)
	}

	if err = rp.Respond(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("failed to respond to mDNS service: %w", err)
	}
	return nil
}

// Discover browses for service and emits a sorted snapshot whenever a peer
// appears or disappears. The channel closes when ctx is done.
func (m *MDNSAdapter) Discover(ctx context.Context, service string) <-chan Result {
	var (
		mu      sync.Mutex
		entries = make(map[string]ServiceInfo)
		outCh   = make(chan Result, 10)
	)

	sendSnapshot := func() {
		mu.Lock()
		snapshot := make([]ServiceInfo, 0, len(entries))
		for _, entry := range entries {
			snapshot = append(snapshot, entry)
		}
		mu.Unlock()
		sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Name < snapshot[j].Name })
		select {
		case outCh <- Result{Services: snapshot}:
		default:
		}
	}

	key := func(e dnssd.BrowseEntry) string {
		return fmt.Sprintf("%s:%s:%s", e.Name, e.Type, e.Domain)
	}

	addFn := func(e dnssd.BrowseEntry) {
		if len(e.IPs) == 0 {
			slog.Debug("Ignoring peer without address", "name", e.Name)
			return
		}
		mu.Lock()
		entries[key(e)] = ServiceInfo{
			Name:   e.Name,
			Type:   e.Type,
			Domain: e.Domain,
			Addr:   e.IPs[0],
			Port:   e.Port,
		}
		mu.Unlock()
		sendSnapshot()
	}

	rmvFn := func(e dnssd.BrowseEntry) {
		mu.Lock()
		delete(entries, key(e))
		mu.Unlock()
		sendSnapshot()
	}

	go func() {
		defer close(outCh)
		if err := dnssd.LookupType(ctx, service, addFn, rmvFn); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			select {
			case outCh <- Result{Err: fmt.Errorf("mDNS lookup failed: %w", err)}:
			default:
			}
		}
	}()

	return outCh
}

// ServiceName is the fully qualified browse name for a service type.
func ServiceName(serviceType string) string {
	return fmt.Sprintf("%s.%s.", serviceType, DefaultDomain)
}

// FirstPeer waits up to timeout for the first peer that adapter reports.
func FirstPeer(ctx context.Context, adapter Adapter, serviceType string, timeout time.Duration) (ServiceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for res := range adapter.Discover(ctx, ServiceName(serviceType)) {
		if res.Err != nil {
			return ServiceInfo{}, res.Err
		}
		if len(res.Services) > 0 {
			return res.Services[0], nil
		}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ServiceInfo{}, fmt.Errorf("after %s: %w", timeout, ErrNoPeers)
	}
	if err := ctx.Err(); err != nil {
		return ServiceInfo{}, err
	}
	return ServiceInfo{}, ErrNoPeers
}
