package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/6gh/regolith-wallpaper/internal/config"
)

var Dialog *gtk.Window = nil
var reloadRequired bool = false
var currentRequired bool = false

func showOptionsDialog() {
	reloadRequired = false
	currentRequired = false

	Dialog = gtk.NewWindow()
	Dialog.SetTitle("Options")
	Dialog.SetDefaultSize(600, 400)
	Dialog.SetHExpand(true)
	Dialog.SetVExpand(true)

	Dialog.Connect("close-request", func() bool {
		Config.Validate()
		saveConfig()
		if reloadRequired {
			reloadGallery()
		}
		if currentRequired || reloadRequired {
			loadCurrentWallpaper(highlightAlways)
		}
		return false
	})

	notebook := gtk.NewNotebook()

	notebook.AppendPage(createGeneralPage(), gtk.NewLabel("General"))
	notebook.AppendPage(createRegolithPage(), gtk.NewLabel("Regolith"))

	Dialog.SetChild(notebook)
	Dialog.SetTransientFor(&MainWindow.Window)
	Dialog.SetModal(true)
	Dialog.SetDestroyWithParent(true)
	Dialog.SetVisible(true)
}

func newPage() *gtk.Box {
	page := gtk.NewBox(gtk.OrientationVertical, 0)
	page.SetMarginTop(10)
	page.SetMarginBottom(10)
	page.SetMarginStart(10)
	page.SetMarginEnd(10)
	page.SetSpacing(10)
	page.SetHExpand(true)
	page.SetVExpand(true)
	page.SetHAlign(gtk.AlignFill)
	return page
}

func newHeading(text string) *gtk.Label {
	label := gtk.NewLabel("")
	label.SetMarkup("<b>" + text + "</b>")
	label.SetHExpand(true)
	label.SetHAlign(gtk.AlignStart)
	label.SetMarginTop(10)
	label.SetMarginBottom(10)
	return label
}

// newSpinRow returns a labelled spin button, onChange gets the new value.
func newSpinRow(text string, min, max float64, value int, onChange func(int)) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 8)

	label := gtk.NewLabel(text)
	label.SetHExpand(true)
	label.SetHAlign(gtk.AlignStart)
	row.Append(label)

	spin := gtk.NewSpinButtonWithRange(min, max, 1)
	spin.SetValue(float64(value))
	spin.ConnectValueChanged(func() {
		onChange(spin.ValueAsInt())
	})
	row.Append(spin)
	return row
}

func createGeneralPage() *gtk.Box {
	generalPage := newPage()

	generalPage.Append(newHeading("Loading"))

	generalPage.Append(newSpinRow("Max images (0 = no limit)", 0, 100000, Config.General.MaxImages, func(v int) {
		Config.General.MaxImages = v
		reloadRequired = true
	}))
	generalPage.Append(newSpinRow("Thumbnail size (px)", 32, 1024, Config.General.ThumbnailSize, func(v int) {
		Config.General.ThumbnailSize = v
		reloadRequired = true
	}))
	generalPage.Append(newSpinRow("Decoding workers", 1, 64, Config.General.Workers, func(v int) {
		Config.General.Workers = v
	}))

	generalPage.Append(newHeading("Toggleables"))

	watchToggle := gtk.NewCheckButtonWithLabel("Reload when files change (applies after restart)")
	watchToggle.SetHAlign(gtk.AlignStart)
	watchToggle.SetActive(Config.UI.WatchFiles)
	watchToggle.Connect("toggled", func() {
		Config.UI.WatchFiles = watchToggle.Active()
	})
	generalPage.Append(watchToggle)

	generalPage.Append(newHeading("Quick Actions"))

	restoreButton := gtk.NewButtonWithLabel("Restore Last Applied")
	restoreButton.SetHAlign(gtk.AlignStart)
	restoreButton.SetSensitive(Config.UI.LastApplied != "")
	restoreButton.SetTooltipText(Config.UI.LastApplied)
	restoreButton.Connect("clicked", func() {
		log.Info("Restoring last applied wallpaper...", "wallpaper", Config.UI.LastApplied)
		markSelected(Config.UI.LastApplied)
		applyWallpaperAsync(Config.UI.LastApplied)
	})
	generalPage.Append(restoreButton)

	clearCacheButton := gtk.NewButtonWithLabel("Clear Thumbnail Cache")
	clearCacheButton.SetHAlign(gtk.AlignStart)
	clearCacheButton.Connect("clicked", func() {
		// NewAlertDialog is not available in gotk4 yet, see
		// https://github.com/diamondburned/gotk4/issues/165
		dialog := gtk.NewMessageDialog(Dialog, gtk.DialogModal, gtk.MessageWarning, gtk.ButtonsYesNo)
		dialog.SetTitle("Confirm Clear")
		message := "Delete all cached thumbnails? They are recreated on the next load."
		if dialogBox, ok := dialog.MessageArea().(*gtk.Box); ok {
			dialogBox.Append(gtk.NewLabel(message))
		} else {
			dialog.SetTitle(message)
		}

		dialog.Connect("response", func(response gtk.ResponseType) {
			if response == gtk.ResponseYes {
				if err := thumbnailer().ClearCache(); err != nil {
					updateGUIStatusError(err.Error())
				} else {
					reloadRequired = true
				}
			}
			dialog.Destroy()
		})

		dialog.SetVisible(true)
	})
	generalPage.Append(clearCacheButton)

	return generalPage
}

func createRegolithPage() *gtk.Box {
	regolithPage := newPage()

	regolithPage.Append(newHeading("Xresources File"))

	xresourcesBox := gtk.NewBox(gtk.OrientationHorizontal, 4)
	xresourcesBox.SetHExpand(true)

	xresourcesEntry := gtk.NewEntry()
	xresourcesEntry.SetText(Config.Regolith.XresourcesFile)
	xresourcesEntry.SetHExpand(true)
	xresourcesEntry.SetHAlign(gtk.AlignFill)
	xresourcesEntry.SetPlaceholderText(config.DefaultXresources)
	xresourcesEntry.Connect("changed", func() {
		Config.Regolith.XresourcesFile = xresourcesEntry.Text()
		currentRequired = true
	})

	xresourcesButton := gtk.NewButtonFromIconName("document-open")
	xresourcesButton.SetHAlign(gtk.AlignStart)
	xresourcesButton.SetSizeRequest(24, 24)
	xresourcesButton.Connect("clicked", func() {
		fileDialog := gtk.NewFileDialog()
		fileDialog.SetTitle("Select the Regolith Xresources file")
		fileDialog.SetAcceptLabel("Select")
		fileDialog.SetModal(true)
		if current, err := Config.XresourcesPath(); err == nil {
			fileDialog.SetInitialFile(gio.NewFileForPath(current))
		}
		fileDialog.Open(context.TODO(), Dialog, func(result gio.AsyncResulter) {
			selectedFile, err := fileDialog.OpenFinish(result)
			if err != nil {
				log.Debug("No Xresources file selected", "err", err)
				return
			}
			if selectedFile.Path() != "" {
				xresourcesEntry.SetText(selectedFile.Path())
			}
		})
	})
	xresourcesBox.Append(xresourcesButton)
	xresourcesBox.Append(xresourcesEntry)
	regolithPage.Append(xresourcesBox)

	regolithPage.Append(newHeading("Refresh Command"))

	refreshEntry := gtk.NewEntry()
	refreshEntry.SetText(strings.Join(Config.Regolith.RefreshCommand, " "))
	refreshEntry.SetHExpand(true)
	refreshEntry.SetHAlign(gtk.AlignFill)
	refreshEntry.SetPlaceholderText(strings.Join(config.NewDefault().Regolith.RefreshCommand, " "))
	refreshEntry.Connect("changed", func() {
		// split on whitespace, an empty entry falls back to the default on close
		Config.Regolith.RefreshCommand = strings.Fields(refreshEntry.Text())
	})
	regolithPage.Append(refreshEntry)

	regolithPage.Append(newHeading("Post Command"))

	postCommandEntry := gtk.NewEntry()
	postCommandEntry.SetText(Config.Regolith.PostCommand)
	postCommandEntry.SetHExpand(true)
	postCommandEntry.SetHAlign(gtk.AlignFill)
	postCommandEntry.SetPlaceholderText("Command run after the look was refreshed (%wallpaper% = image path), leave empty to disable")
	postCommandEntry.Connect("changed", func() {
		Config.Regolith.PostCommand = postCommandEntry.Text()
	})
	regolithPage.Append(postCommandEntry)

	discardProcessLogsToggle := gtk.NewCheckButtonWithLabel("Discard Post Command Logs (stdout to /dev/null)")
	discardProcessLogsToggle.SetHAlign(gtk.AlignStart)
	discardProcessLogsToggle.SetActive(Config.Regolith.DiscardProcessLogs)
	discardProcessLogsToggle.Connect("toggled", func() {
		Config.Regolith.DiscardProcessLogs = discardProcessLogsToggle.Active()
	})
	regolithPage.Append(discardProcessLogsToggle)

	return regolithPage
}
