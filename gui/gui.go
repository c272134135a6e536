//go:build !(android || ios)
// +build !android,!ios

package gui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	"github.com/skratchdot/open-golang/open"
	"golang.org/x/time/rate"

	"github.com/icewatch/icewatch/cast"
	"github.com/icewatch/icewatch/devices"
	"github.com/icewatch/icewatch/player"
	"github.com/icewatch/icewatch/status"
)

const localBackendName = "Local (mpv)"

// FyneScreen .
type FyneScreen struct {
	Current      fyne.Window
	PlayStop     *widget.Button
	Refresh      *widget.Button
	OpenStatus   *widget.Button
	CheckVersion *widget.Button
	MountList    *widget.List
	DeviceSelect *widget.Select
	Totals       *widget.Label

	session     *player.Session
	localPlayer player.Player
	client      *status.Client
	origin      string
	version     string

	mu         sync.Mutex
	ready      bool
	snapshot   *status.Snapshot
	selected   int
	castClient *cast.Client
}

// playStopLabel routes the session's label updates back onto the fyne
// thread. The button caption is derived from session state at refresh
// time, so an update only needs to schedule a refresh.
type playStopLabel struct {
	scr *FyneScreen
}

func (l *playStopLabel) SetLabel(string) {
	fyne.Do(func() {
		l.scr.refreshPlayStop()
		l.scr.MountList.Refresh()
	})
}

// InitFyneNewScreen .
func InitFyneNewScreen(version string, session *player.Session, local player.Player, client *status.Client, origin string) *FyneScreen {
	w := app.New().NewWindow("Icewatch")
	return &FyneScreen{
		Current:     w,
		session:     session,
		localPlayer: local,
		client:      client,
		origin:      origin,
		version:     version,
		selected:    -1,
	}
}

// Start builds the window and runs the fyne main loop. Blocks until the
// window is closed.
func Start(ctx context.Context, s *FyneScreen) {
	w := s.Current

	tabs := container.NewAppTabs(
		container.NewTabItem("Streams", mainWindow(ctx, s)),
		container.NewTabItem("Settings", settingsWindow(s)),
		container.NewTabItem("About", aboutWindow(s)),
	)
	tabs.SetTabLocation(container.TabLocationTop)

	w.SetContent(tabs)
	w.Resize(fyne.NewSize(720, 480))
	w.CenterOnScreen()
	w.ShowAndRun()
}

// UpdateSnapshot feeds a fresh snapshot to the window. Safe to call from
// the poller goroutine.
func (s *FyneScreen) UpdateSnapshot(snap *status.Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	if s.selected >= len(snap.Mounts) {
		s.selected = len(snap.Mounts) - 1
	}
	// The poller can outrun window construction; the snapshot is stashed
	// above and applied by mainWindow once the widgets exist. Digest
	// suppression means no second delivery would come for an unchanged
	// document, so the stash must not be dropped.
	ready := s.ready
	s.mu.Unlock()
	if !ready {
		return
	}

	fyne.Do(func() {
		s.Totals.SetText(fmt.Sprintf("Listeners: %d    Sources: %d", snap.TotalListeners, snap.TotalSources))
		s.MountList.Refresh()
		s.refreshPlayStop()
	})
}

func mainWindow(ctx context.Context, s *FyneScreen) fyne.CanvasObject {
	list := new(widget.List)

	totals := widget.NewLabel("Waiting for status...")

	playstop := widget.NewButtonWithIcon(player.LabelPlay, theme.MediaPlayIcon(), func() {
		go s.playStopSelected(ctx)
	})
	playstop.Disable()

	// Manual refreshes hit the relay directly, so cap how often one can
	// be fired regardless of how fast the button is clicked.
	throttle := rate.Every(3 * time.Second)
	r := rate.NewLimiter(throttle, 1)
	refresh := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		if !r.Allow() {
			return
		}
		go s.manualRefresh(ctx)
	})

	openstatus := widget.NewButtonWithIcon("Open status page", theme.ComputerIcon(), func() {
		go func() {
			if err := open.Run(s.client.URL()); err != nil {
				fyne.Do(func() {
					check(s.Current, errors.Wrap(err, "open status page"))
				})
			}
		}()
	})

	probe := widget.NewButtonWithIcon("Probe", theme.SearchIcon(), func() {
		go s.probeSelected(ctx)
	})

	deviceselect := widget.NewSelect([]string{localBackendName}, func(name string) {
		go s.switchBackend(ctx, name)
	})
	deviceselect.SetSelected(localBackendName)
	devicelabel := widget.NewLabel("Play on:")

	list = widget.NewList(
		func() int {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.snapshot == nil {
				return 0
			}
			return len(s.snapshot.Mounts)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.MediaMusicIcon()), widget.NewLabel(""))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.snapshot == nil || i >= len(s.snapshot.Mounts) {
				return
			}
			m := s.snapshot.Mounts[i]
			label := o.(*fyne.Container).Objects[1].(*widget.Label)
			label.SetText(fmt.Sprintf("%s  [%s, %d listeners]  %s", m.Path, m.Status, m.Listeners, m.NowPlaying))

			icon := o.(*fyne.Container).Objects[0].(*widget.Icon)
			cur, _ := s.session.Current()
			if cur != "" && cur == status.StreamURL(s.origin, m.Path) {
				icon.SetResource(theme.MediaPlayIcon())
				return
			}
			icon.SetResource(theme.MediaMusicIcon())
		})

	list.OnSelected = func(id widget.ListItemID) {
		s.mu.Lock()
		s.selected = id
		s.mu.Unlock()
		playstop.Enable()
		s.refreshPlayStop()
	}

	list.OnUnselected = func(id widget.ListItemID) {
		s.mu.Lock()
		if s.selected == id {
			s.selected = -1
		}
		s.mu.Unlock()
	}

	s.Totals = totals
	s.PlayStop = playstop
	s.Refresh = refresh
	s.OpenStatus = openstatus
	s.MountList = list
	s.DeviceSelect = deviceselect

	s.mu.Lock()
	s.ready = true
	pending := s.snapshot
	s.mu.Unlock()

	// A snapshot that arrived while the window was still being built was
	// stashed without a repaint; deliver it now.
	if pending != nil {
		s.UpdateSnapshot(pending)
	}

	// Device list auto-refresh.
	go s.refreshDeviceList(ctx)

	controls := container.NewHBox(playstop, probe, refresh, openstatus)
	top := container.NewVBox(totals, controls, container.NewBorder(nil, nil, devicelabel, nil, deviceselect))
	return container.NewBorder(top, nil, nil, nil, list)
}

// selectedStreamURL derives the stream URL for the highlighted mount.
func (s *FyneScreen) selectedStreamURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil || s.selected < 0 || s.selected >= len(s.snapshot.Mounts) {
		return ""
	}
	return status.StreamURL(s.origin, s.snapshot.Mounts[s.selected].Path)
}

func (s *FyneScreen) playStopSelected(ctx context.Context) {
	url := s.selectedStreamURL()
	if url == "" {
		fyne.Do(func() {
			check(s.Current, errors.New("please select a stream"))
		})
		return
	}
	s.session.Toggle(ctx, url, &playStopLabel{scr: s})
}

// refreshPlayStop recomputes the button caption for the highlighted row.
// Must run on the fyne thread.
func (s *FyneScreen) refreshPlayStop() {
	url := s.selectedStreamURL()
	cur, playing := s.session.Current()
	if playing && url == cur {
		s.PlayStop.SetText(player.LabelStop)
		s.PlayStop.SetIcon(theme.MediaStopIcon())
		return
	}
	s.PlayStop.SetText(player.LabelPlay)
	s.PlayStop.SetIcon(theme.MediaPlayIcon())
}

// probeSelected sniffs the head of the highlighted mount's stream and
// reports the detected audio type.
func (s *FyneScreen) probeSelected(ctx context.Context) {
	url := s.selectedStreamURL()
	if url == "" {
		fyne.Do(func() {
			check(s.Current, errors.New("please select a stream"))
		})
		return
	}

	res, err := status.ProbeMount(ctx, url)
	fyne.Do(func() {
		if err != nil {
			check(s.Current, errors.Wrap(err, "probe"))
			return
		}
		msg := "Detected type: " + res.MIME
		if !res.IsAudio {
			msg += " (not audio)"
		}
		dialog.ShowInformation("Stream probe", msg, s.Current)
	})
}

func (s *FyneScreen) manualRefresh(ctx context.Context) {
	snap, err := s.client.Fetch(ctx)
	if err != nil {
		fyne.Do(func() {
			check(s.Current, errors.Wrap(err, "refresh"))
		})
		return
	}
	s.UpdateSnapshot(snap)
}

// refreshDeviceList keeps the backend dropdown in sync with the
// Chromecast devices on the network. The local mpv entry is always
// first.
func (s *FyneScreen) refreshDeviceList(ctx context.Context) {
	update := func() {
		found, err := devices.CachedDiscover(ctx)
		if err != nil && !errors.Is(err, devices.ErrNoDeviceAvailable) {
			return
		}

		names := []string{localBackendName}
		for _, d := range found {
			names = append(names, d.Name)
		}

		fyne.Do(func() {
			sel := s.DeviceSelect.Selected
			s.DeviceSelect.Options = names
			s.DeviceSelect.Refresh()

			var present bool
			for _, n := range names {
				if n == sel {
					present = true
					break
				}
			}
			// The device we were casting to dropped off the network.
			if !present {
				s.DeviceSelect.SetSelected(localBackendName)
			}
		})
	}

	update()
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			update()
		}
	}
}

// switchBackend moves playback to the named Chromecast, or back to the
// local mpv backend.
func (s *FyneScreen) switchBackend(ctx context.Context, name string) {
	if name == localBackendName {
		s.session.SwitchPlayer(s.localPlayer)

		s.mu.Lock()
		old := s.castClient
		s.castClient = nil
		s.mu.Unlock()

		if old != nil {
			old.Close()
		}
		return
	}

	dev, err := devices.FindByName(ctx, name)
	if err != nil {
		fyne.Do(func() {
			check(s.Current, errors.Wrap(err, "device lookup"))
			s.DeviceSelect.SetSelected(localBackendName)
		})
		return
	}

	c, err := cast.NewClient(dev.Addr)
	if err == nil {
		err = c.Connect()
	}
	if err != nil {
		fyne.Do(func() {
			check(s.Current, errors.Wrap(err, "chromecast connect"))
			s.DeviceSelect.SetSelected(localBackendName)
		})
		return
	}

	s.session.SwitchPlayer(c)

	s.mu.Lock()
	old := s.castClient
	s.castClient = c
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

func check(win fyne.Window, err error) {
	if err != nil {
		dialog.ShowError(err, win)
	}
}
