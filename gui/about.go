//go:build !(android || ios)
// +build !android,!ios

package gui

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
)

func aboutWindow(s *FyneScreen) fyne.CanvasObject {
	richhead := widget.NewRichTextFromMarkdown(`
# Icewatch

Watch your Icecast relay and play its streams locally or on a Chromecast

---

## License
MIT

## Version

` + s.version)

	for i := range richhead.Segments {
		if seg, ok := richhead.Segments[i].(*widget.TextSegment); ok {
			seg.Style.Alignment = fyne.TextAlignCenter
		}
		if seg, ok := richhead.Segments[i].(*widget.HyperlinkSegment); ok {
			seg.Alignment = fyne.TextAlignCenter
		}
	}

	githubbutton := widget.NewButton("Github page", func() {
		go func() {
			u, _ := url.Parse("https://github.com/icewatch/icewatch")
			_ = fyne.CurrentApp().OpenURL(u)
		}()
	})

	checkversion := widget.NewButton("Check version", func() {
		go checkVersion(s)
	})

	s.CheckVersion = checkversion

	return container.NewVBox(richhead, container.NewCenter(container.NewHBox(githubbutton, checkversion)))
}

func checkVersion(s *FyneScreen) {
	fyne.Do(func() { s.CheckVersion.Disable() })
	defer fyne.Do(func() { s.CheckVersion.Enable() })

	errRedirectChecker := errors.New("redirect")
	errVersioncomp := errors.New("failed to get version info - on develop or non-compiled version")
	errVersionGet := errors.New("failed to get version info - check your internet connection")

	if _, err := parseVersion(s.version); err != nil {
		fyne.Do(func() { dialog.ShowError(errVersioncomp, s.Current) })
		return
	}

	req, err := http.NewRequest("GET", "https://github.com/icewatch/icewatch/releases/latest", nil)
	if err != nil {
		fyne.Do(func() { dialog.ShowError(errVersionGet, s.Current) })
		return
	}

	client := &http.Client{
		Timeout: 3 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return errRedirectChecker
		},
	}

	response, err := client.Do(req)
	if err != nil && !errors.Is(err, errRedirectChecker) {
		fyne.Do(func() { dialog.ShowError(errVersionGet, s.Current) })
		return
	}
	defer response.Body.Close()

	if !errors.Is(err, errRedirectChecker) {
		fyne.Do(func() { dialog.ShowError(errVersionGet, s.Current) })
		return
	}

	loc, err := response.Location()
	if err != nil {
		fyne.Do(func() { dialog.ShowError(errVersionGet, s.Current) })
		return
	}

	latest := strings.Trim(filepath.Base(loc.Path), "v")
	cmp, err := compareVersions(latest, s.version)
	if err != nil {
		fyne.Do(func() { dialog.ShowError(errVersionGet, s.Current) })
		return
	}

	fyne.Do(func() {
		if cmp > 0 {
			dialog.ShowInformation("Version checker", "New version: "+latest, s.Current)
			return
		}
		dialog.ShowInformation("Version checker", "No new version", s.Current)
	})
}
