//go:build !(android || ios)
// +build !android,!ios

package gui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"

	"github.com/icewatch/icewatch/internal/config"
)

type numericalEntry struct {
	widget.Entry
}

func newNumericalEntry() *numericalEntry {
	e := &numericalEntry{}
	e.ExtendBaseWidget(e)
	return e
}

func (e *numericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

func settingsWindow(s *FyneScreen) fyne.CanvasObject {
	w := s.Current

	cfg, err := config.GetAppConfig()
	if err != nil {
		check(w, errors.Wrap(err, "load settings"))
		return widget.NewLabel("Settings unavailable.")
	}

	themeText := widget.NewLabel("Theme")
	dropdownTheme := widget.NewSelect([]string{"Default", "Light", "Dark"}, func(t string) {
		cfg.Theme = t
		cfg.ApplyAppConfig()
		if err := cfg.SaveAppConfig(); err != nil {
			check(w, errors.Wrap(err, "save settings"))
		}
	})
	dropdownTheme.PlaceHolder = cfg.Theme

	statusText := widget.NewLabel("Status URL")
	statusEntry := widget.NewEntry()
	statusEntry.SetText(cfg.StatusURL)

	originText := widget.NewLabel("Stream origin")
	originEntry := widget.NewEntry()
	originEntry.SetText(cfg.StreamOrigin)

	pollText := widget.NewLabel("Poll interval (ms)")
	pollEntry := newNumericalEntry()
	pollEntry.SetText(strconv.Itoa(cfg.PollMS))

	playerText := widget.NewLabel("mpv binary")
	playerEntry := widget.NewEntry()
	playerEntry.SetText(cfg.Player)

	save := widget.NewButton("Save", func() {
		cfg.StatusURL = statusEntry.Text
		cfg.StreamOrigin = originEntry.Text
		cfg.Player = playerEntry.Text

		ms, err := strconv.Atoi(pollEntry.Text)
		if err != nil || ms <= 0 {
			ms = config.DefaultPollMS
			pollEntry.SetText(strconv.Itoa(ms))
		}
		cfg.PollMS = ms

		if err := cfg.SaveAppConfig(); err != nil {
			check(w, errors.Wrap(err, "save settings"))
			return
		}
	})

	restartNote := widget.NewLabel("URL and poll changes take effect on restart.")

	form := container.New(layout.NewFormLayout(),
		themeText, dropdownTheme,
		statusText, statusEntry,
		originText, originEntry,
		pollText, pollEntry,
		playerText, playerEntry,
	)

	return container.NewVBox(form, container.NewCenter(save), restartNote)
}
