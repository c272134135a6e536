package devices

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestDeviceFromEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *mdns.ServiceEntry
		want  Device
		ok    bool
	}{
		{
			name: "friendly name from TXT",
			entry: &mdns.ServiceEntry{
				Name:       "Chromecast-abc123._googlecast._tcp.local.",
				AddrV4:     net.IPv4(192, 168, 1, 50),
				Port:       8009,
				InfoFields: []string{"id=abc", "fn=Living Room", "ca=4101"},
			},
			want: Device{Name: "Living Room", Addr: "192.168.1.50:8009"},
			ok:   true,
		},
		{
			name: "audio only device",
			entry: &mdns.ServiceEntry{
				Name:       "Chromecast-Audio._googlecast._tcp.local.",
				AddrV4:     net.IPv4(192, 168, 1, 51),
				Port:       8009,
				InfoFields: []string{"fn=Kitchen Speaker", "ca=2052"},
			},
			want: Device{Name: "Kitchen Speaker", Addr: "192.168.1.51:8009", IsAudioOnly: true},
			ok:   true,
		},
		{
			name: "name trimmed without TXT",
			entry: &mdns.ServiceEntry{
				Name:   "Bedroom._googlecast._tcp.local.",
				AddrV4: net.IPv4(192, 168, 1, 52),
				Port:   8009,
			},
			want: Device{Name: "Bedroom", Addr: "192.168.1.52:8009"},
			ok:   true,
		},
		{
			name: "non googlecast entry ignored",
			entry: &mdns.ServiceEntry{
				Name:   "printer._ipp._tcp.local.",
				AddrV4: net.IPv4(192, 168, 1, 53),
				Port:   631,
			},
			ok: false,
		},
		{
			name:  "nil entry ignored",
			entry: nil,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := deviceFromEntry(tt.entry)
			if ok != tt.ok {
				t.Fatalf("deviceFromEntry() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Fatalf("deviceFromEntry() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDiscoverSortsAndDeduplicates(t *testing.T) {
	origQuery := mdnsQuery
	t.Cleanup(func() { mdnsQuery = origQuery })

	mdnsQuery = func(params *mdns.QueryParam) error {
		entries := []*mdns.ServiceEntry{
			{
				Name:       "b._googlecast._tcp.local.",
				AddrV4:     net.IPv4(10, 0, 0, 2),
				Port:       8009,
				InfoFields: []string{"fn=Bedroom"},
			},
			{
				Name:       "a._googlecast._tcp.local.",
				AddrV4:     net.IPv4(10, 0, 0, 1),
				Port:       8009,
				InfoFields: []string{"fn=Attic"},
			},
			{
				// Same address announced twice.
				Name:       "a._googlecast._tcp.local.",
				AddrV4:     net.IPv4(10, 0, 0, 1),
				Port:       8009,
				InfoFields: []string{"fn=Attic"},
			},
		}
		for _, e := range entries {
			params.Entries <- e
		}
		return nil
	}

	devices, err := Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() err = %v, want nil", err)
	}

	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	if devices[0].Name != "Attic" || devices[1].Name != "Bedroom" {
		t.Errorf("devices not sorted by name: %+v", devices)
	}
}

func TestDiscoverNoDevices(t *testing.T) {
	origQuery := mdnsQuery
	t.Cleanup(func() { mdnsQuery = origQuery })

	mdnsQuery = func(params *mdns.QueryParam) error { return nil }

	if _, err := Discover(context.Background()); err != ErrNoDeviceAvailable {
		t.Fatalf("Discover() err = %v, want ErrNoDeviceAvailable", err)
	}
}

func TestDiscoverHonorsContextCancellation(t *testing.T) {
	origQuery := mdnsQuery
	t.Cleanup(func() { mdnsQuery = origQuery })

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	mdnsQuery = func(params *mdns.QueryParam) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := Discover(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Discover() err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > queryTimeout {
		t.Errorf("Discover() took %v after cancellation, want an early return", elapsed)
	}
}
