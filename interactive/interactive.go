// Package interactive is the terminal front end: a tcell screen that
// renders the live mount list and maps arrow keys to selection and
// playback.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/encoding"
	"github.com/mattn/go-runewidth"

	"github.com/icewatch/icewatch/player"
	"github.com/icewatch/icewatch/status"
)

const (
	waitingMsg     = "Waiting for status..."
	placeholderMsg = "No mounts are currently connected."
)

// NewScreen .
type NewScreen struct {
	Current tcell.Screen
	session *player.Session
	origin  string

	snapshot *status.Snapshot
	selected int
}

// snapshotEvent carries a fresh snapshot onto the UI event loop.
type snapshotEvent struct {
	tcell.EventTime
	snap *status.Snapshot
}

// refreshEvent asks for a repaint after playback state changed outside
// the event loop (stream end, confirmed start).
type refreshEvent struct {
	tcell.EventTime
}

// rowLabel is the per-row play/stop handle handed to the session. Row
// captions are derived from session state at draw time, so a caption
// change only needs to schedule a repaint.
type rowLabel struct {
	scr *NewScreen
	url string
}

func (l *rowLabel) SetLabel(string) {
	ev := &refreshEvent{}
	ev.SetEventNow()
	l.scr.Current.PostEvent(ev)
}

// InitTcellNewScreen .
func InitTcellNewScreen(session *player.Session, origin string) (*NewScreen, error) {
	s, e := tcell.NewScreen()
	if e != nil {
		return nil, errors.New("can't start new interactive screen")
	}
	return &NewScreen{
		Current: s,
		session: session,
		origin:  origin,
	}, nil
}

// UpdateSnapshot hands a snapshot to the event loop. Safe to call from
// the poller goroutine.
func (p *NewScreen) UpdateSnapshot(snap *status.Snapshot) {
	ev := &snapshotEvent{snap: snap}
	ev.SetEventNow()
	p.Current.PostEvent(ev)
}

// InterInit - Start the interactive terminal. Blocks until the user
// quits or ctx is cancelled.
func (p *NewScreen) InterInit(ctx context.Context) error {
	encoding.Register()
	s := p.Current
	if err := s.Init(); err != nil {
		return fmt.Errorf("interactive init error: %w", err)
	}

	defStyle := tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite)
	s.SetStyle(defStyle)

	go func() {
		<-ctx.Done()
		s.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	p.draw()

	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventResize:
			s.Sync()
			p.draw()
		case *snapshotEvent:
			p.snapshot = ev.snap
			p.selected = clampSelection(p.selected, len(ev.snap.Mounts))
			p.rebindActive()
			p.draw()
		case *refreshEvent:
			p.draw()
		case *tcell.EventInterrupt:
			s.Fini()
			return nil
		case *tcell.EventKey:
			if p.handleKey(ctx, ev) {
				p.session.Stop()
				s.Fini()
				return nil
			}
			p.draw()
		case nil:
			return nil
		}
	}
}

// handleKey reports whether the user asked to quit.
func (p *NewScreen) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	count := p.mountCount()

	switch ev.Key() {
	case tcell.KeyEscape:
		return true
	case tcell.KeyUp:
		if count > 0 {
			p.selected = moveSelection(p.selected, -1, count)
		}
	case tcell.KeyDown:
		if count > 0 {
			p.selected = moveSelection(p.selected, +1, count)
		}
	case tcell.KeyRight:
		p.startSelected(ctx)
	case tcell.KeyLeft:
		p.session.Stop()
	case tcell.KeyEnter:
		p.toggleSelected(ctx)
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return true
		}
	}
	return false
}

func (p *NewScreen) mountCount() int {
	if p.snapshot == nil {
		return 0
	}
	return len(p.snapshot.Mounts)
}

func (p *NewScreen) selectedMount() (status.Mount, bool) {
	if p.snapshot == nil || p.selected >= len(p.snapshot.Mounts) {
		return status.Mount{}, false
	}
	return p.snapshot.Mounts[p.selected], true
}

func (p *NewScreen) startSelected(ctx context.Context) {
	m, ok := p.selectedMount()
	if !ok {
		return
	}
	url := status.StreamURL(p.origin, m.Path)
	p.session.Start(ctx, url, &rowLabel{scr: p, url: url})
}

func (p *NewScreen) toggleSelected(ctx context.Context) {
	m, ok := p.selectedMount()
	if !ok {
		return
	}
	url := status.StreamURL(p.origin, m.Path)
	p.session.Toggle(ctx, url, &rowLabel{scr: p, url: url})
}

// After a rebuild the session's active handle points at a row that no
// longer exists; hand it a fresh one for the still-playing stream.
func (p *NewScreen) rebindActive() {
	cur, ok := p.session.Current()
	if !ok {
		return
	}
	p.session.Rebind(cur, &rowLabel{scr: p, url: cur})
}

func (p *NewScreen) emitStr(x, y int, style tcell.Style, str string) {
	s := p.Current
	for _, c := range str {
		var comb []rune
		w := runewidth.RuneWidth(c)
		if w == 0 {
			comb = []rune{c}
			c = ' '
			w = 1
		}
		s.SetContent(x, y, c, comb, style)
		x += w
	}
}

// draw repaints the whole screen from the latest snapshot. The list is
// replaced in full, never patched.
func (p *NewScreen) draw() {
	s := p.Current
	s.Clear()

	boldStyle := tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite).Bold(true)
	selStyle := tcell.StyleDefault.
		Background(tcell.ColorWhite).
		Foreground(tcell.ColorBlack)

	p.emitStr(1, 1, tcell.StyleDefault, "Press ESC or q to exit. Up/Down select, Right plays, Left stops, Enter toggles.")

	if p.snapshot == nil {
		p.emitStr(1, 3, boldStyle, waitingMsg)
		s.Show()
		return
	}

	totals := "Listeners: " + strconv.Itoa(p.snapshot.TotalListeners) +
		"  Sources: " + strconv.Itoa(p.snapshot.TotalSources)
	p.emitStr(1, 3, boldStyle, totals)

	if len(p.snapshot.Mounts) == 0 {
		p.emitStr(1, 5, tcell.StyleDefault, placeholderMsg)
		s.Show()
		return
	}

	playingURL, _ := p.session.Current()
	rows := buildRows(p.snapshot, p.origin, p.selected, playingURL)

	for i, r := range rows {
		style := tcell.StyleDefault
		if r.Selected {
			style = selStyle
		}
		line := fmt.Sprintf("[%s] %-20s %-10s %4d  %s", r.Label, r.Path, r.Status, r.Listeners, r.NowPlaying)
		p.emitStr(1, 5+i, style, line)
	}

	s.Show()
}

// Fini releases the screen. Method to implement the screen interface.
func (p *NewScreen) Fini() {
	p.Current.Fini()
}
