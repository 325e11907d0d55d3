package main

import (
	"errors"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/ncruces/zenity"

	"github.com/6gh/regolith-wallpaper/internal/config"
)

// pathEditor is the inline form used to choose the wallpapers folder.
type pathEditor struct {
	Box *gtk.Box

	entry        *gtk.Entry
	cancelButton *gtk.Button
	current      string
	onSet        func(path string)
}

func newPathEditor(current string, onSet func(path string)) *pathEditor {
	e := &pathEditor{current: current, onSet: onSet}

	e.Box = gtk.NewBox(gtk.OrientationVertical, 8)
	e.Box.AddCSSClass("path-editor")
	e.Box.SetMarginTop(10)
	e.Box.SetMarginStart(20)
	e.Box.SetMarginEnd(20)

	label := gtk.NewLabel("Wallpapers path")
	label.SetHAlign(gtk.AlignStart)
	e.Box.Append(label)

	row := gtk.NewBox(gtk.OrientationHorizontal, 4)
	e.entry = gtk.NewEntry()
	e.entry.SetHExpand(true)
	e.entry.SetPlaceholderText("~/Pictures/wallpapers")
	e.entry.SetText(current)
	e.entry.ConnectActivate(e.submit)
	row.Append(e.entry)

	browseButton := gtk.NewButtonFromIconName("folder-open")
	browseButton.SetTooltipText("Browse")
	browseButton.ConnectClicked(e.browse)
	row.Append(browseButton)
	e.Box.Append(row)

	buttons := gtk.NewBox(gtk.OrientationHorizontal, 4)
	buttons.SetHAlign(gtk.AlignEnd)

	e.cancelButton = gtk.NewButtonWithLabel("Cancel")
	e.cancelButton.ConnectClicked(e.cancel)
	e.cancelButton.SetSensitive(current != "")
	buttons.Append(e.cancelButton)

	okButton := gtk.NewButtonWithLabel("Ok")
	okButton.AddCSSClass("suggested-action")
	okButton.ConnectClicked(e.submit)
	buttons.Append(okButton)
	e.Box.Append(buttons)

	return e
}

// Path returns the last accepted path, "" when none was set yet.
func (e *pathEditor) Path() string {
	return e.current
}

func (e *pathEditor) Focus() {
	e.entry.SetText(e.current)
	e.cancelButton.SetSensitive(e.current != "")
	e.entry.GrabFocus()
}

func (e *pathEditor) submit() {
	input := e.entry.Text()
	if _, err := config.ExistingPath(input); err != nil {
		log.Warn("Rejected wallpapers path", "path", input, "err", err)
		updateGUIStatusError("Invalid path")
		return
	}

	// the config keeps what the user typed, ~ included
	e.current = input
	e.cancelButton.SetSensitive(true)
	if e.onSet != nil {
		e.onSet(input)
	}
}

func (e *pathEditor) cancel() {
	if e.current == "" {
		return
	}
	e.entry.SetText(e.current)
	showPathEditor(false)
}

// browse opens a directory chooser without blocking the GTK main loop.
func (e *pathEditor) browse() {
	options := []zenity.Option{
		zenity.Title("Select the wallpapers folder"),
		zenity.Directory(),
	}
	if dir, err := config.ResolvePath(e.entry.Text()); err == nil && e.entry.Text() != "" {
		options = append(options, zenity.Filename(dir+string(filepath.Separator)))
	}

	go func() {
		dir, err := zenity.SelectFile(options...)
		if errors.Is(err, zenity.ErrCanceled) {
			return
		}
		if err != nil {
			log.Error("Folder chooser failed", "err", err)
			updateGUIStatusError(err.Error())
			return
		}

		glib.IdleAdd(func() {
			e.entry.SetText(dir)
		})
	}()
}
