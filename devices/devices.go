// Package devices discovers Chromecast receivers on the local network
// over mDNS, for the -t flag and the GUI device picker.
package devices

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/pkg/errors"
)

const (
	googlecastService = "_googlecast._tcp"
	queryTimeout      = 750 * time.Millisecond
)

var (
	ErrNoDeviceAvailable  = errors.New("discover: no chromecast devices found")
	ErrDeviceNotAvailable = errors.New("device picker: requested device not available")
)

// Device is one discovered Chromecast receiver.
type Device struct {
	Name        string
	Addr        string // host:port
	IsAudioOnly bool
}

// mdnsQuery is swapped out in tests.
var mdnsQuery = mdns.Query

// Discover browses for Chromecast devices and returns them sorted by
// name. It blocks for roughly the query timeout, or until ctx is
// cancelled.
func Discover(ctx context.Context) ([]Device, error) {
	entriesCh := make(chan *mdns.ServiceEntry, 256)
	collected := make(map[string]Device)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entriesCh {
			if d, ok := deviceFromEntry(entry); ok {
				collected[d.Addr] = d
			}
		}
	}()

	params := mdns.DefaultParams(googlecastService)
	params.Entries = entriesCh
	params.Timeout = queryTimeout
	params.DisableIPv6 = true
	params.WantUnicastResponse = true
	params.Logger = log.New(io.Discard, "", 0)

	// The query owns entriesCh, so on cancellation it is left to finish
	// in the background; its timeout bounds how long that takes.
	queryDone := make(chan error, 1)
	go func() {
		err := mdnsQuery(params)
		close(entriesCh)
		queryDone <- err
	}()

	var err error
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err = <-queryDone:
		<-done
	}

	if err != nil {
		return nil, fmt.Errorf("discover query error: %w", err)
	}
	if len(collected) == 0 {
		return nil, ErrNoDeviceAvailable
	}

	devices := make([]Device, 0, len(collected))
	for _, d := range collected {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })

	return devices, nil
}

// FindByName resolves a device by its friendly name, case-insensitively.
func FindByName(ctx context.Context, name string) (Device, error) {
	devices, err := Discover(ctx)
	if err != nil {
		return Device{}, err
	}
	for _, d := range devices {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return Device{}, ErrDeviceNotAvailable
}

func deviceFromEntry(entry *mdns.ServiceEntry) (Device, bool) {
	if entry == nil || entry.AddrV4 == nil {
		return Device{}, false
	}
	if !strings.Contains(entry.Name, "_googlecast") {
		return Device{}, false
	}

	d := Device{
		Name: entry.Name,
		Addr: fmt.Sprintf("%s:%d", entry.AddrV4, entry.Port),
	}

	for _, txt := range entry.InfoFields {
		if after, ok := strings.CutPrefix(txt, "fn="); ok {
			d.Name = after
			break
		}
	}
	if idx := strings.Index(d.Name, "._googlecast"); idx > 0 {
		d.Name = d.Name[:idx]
	}

	for _, txt := range entry.InfoFields {
		if after, ok := strings.CutPrefix(txt, "ca="); ok {
			d.IsAudioOnly = isAudioOnlyCapability(after)
			break
		}
	}

	return d, true
}

// The ca TXT record is a capability bitmask; bit 0 is video output.
func isAudioOnlyCapability(ca string) bool {
	var mask int
	if _, err := fmt.Sscanf(ca, "%d", &mask); err != nil {
		return false
	}
	return mask&1 == 0
}

// sharedDiscovery caches the last discovery result for UIs that refresh
// often.
var (
	cacheMu     sync.Mutex
	cached      []Device
	cachedAt    time.Time
	cacheMaxAge = 30 * time.Second
)

// CachedDiscover returns the last discovery result when it is fresh
// enough, otherwise it performs a new discovery.
func CachedDiscover(ctx context.Context) ([]Device, error) {
	cacheMu.Lock()
	if time.Since(cachedAt) < cacheMaxAge && len(cached) > 0 {
		out := make([]Device, len(cached))
		copy(out, cached)
		cacheMu.Unlock()
		return out, nil
	}
	cacheMu.Unlock()

	devices, err := Discover(ctx)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	cached = devices
	cachedAt = time.Now()
	cacheMu.Unlock()

	return devices, nil
}
