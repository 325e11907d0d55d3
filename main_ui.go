package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gdkpixbuf/v2"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/pkg/browser"

	"github.com/6gh/regolith-wallpaper/internal/regolith"
	"github.com/6gh/regolith-wallpaper/internal/wallpapers"
	"github.com/6gh/regolith-wallpaper/internal/watch"
)

const currentPreviewSize = 240

var MainWindow *gtk.ApplicationWindow = nil
var ScrolledWindow *gtk.ScrolledWindow = nil
var WallpaperList *gtk.FlowBox = nil
var StatusText *gtk.Label = nil
var EditPathButton *gtk.Button = nil
var CurrentWallpaperBox *gtk.Box = nil
var CurrentWallpaperImage *gtk.Image = nil
var CurrentWallpaperError *gtk.Label = nil
var PathEditor *pathEditor = nil

var Gallery wallpapers.Gallery
var CurrentWallpaper string = ""

// How loadCurrentWallpaper updates the grid selection.
type highlightMode int

const (
	highlightNever highlightMode = iota
	highlightAlways
	// only when the wallpaper differs from CurrentWallpaper, i.e. it was edited elsewhere
	highlightChanged
)

var loadGeneration int
var cancelLoad context.CancelFunc = func() {}

var watcher *watch.Watcher = nil
var watchedDir string = ""
var cancelWatch context.CancelFunc = func() {}

// Main function to create the GTK application and set up the main window.
func activate(app *gtk.Application) {
	MainWindow = gtk.NewApplicationWindow(app)
	MainWindow.SetTitle("regolith-wallpaper")
	setupStyling()

	title := gtk.NewLabel("")
	title.SetMarkup("<span weight=\"bold\" size=\"large\">Regolith wallpaper picker</span>")
	title.SetHAlign(gtk.AlignStart)
	title.SetMarginTop(20)
	title.SetMarginStart(20)
	title.SetMarginEnd(20)

	//ANCHOR - Top control bar
	// Controls relating to the list itself: path, random, options

	topControlBar := gtk.NewBox(gtk.OrientationHorizontal, 0)
	topControlBar.SetHAlign(gtk.AlignStart)
	topControlBar.SetMarginTop(10)
	topControlBar.SetMarginStart(20)
	topControlBar.SetMarginEnd(20)
	topControlBar.SetSpacing(4)

	EditPathButton = gtk.NewButtonWithLabel("Edit wallpapers path")
	EditPathButton.ConnectClicked(func() {
		showPathEditor(true)
	})
	topControlBar.Append(EditPathButton)

	refreshButton := gtk.NewButtonWithLabel("Refresh")
	refreshButton.ConnectClicked(func() {
		log.Info("Refreshing wallpapers...")
		reloadGallery()
	})
	topControlBar.Append(refreshButton)

	randomButton := gtk.NewButtonWithLabel("Random")
	randomButton.ConnectClicked(func() {
		applyRandomWallpaper()
	})
	topControlBar.Append(randomButton)

	optionsButton := gtk.NewButtonWithLabel("Options")
	optionsButton.ConnectClicked(func() {
		log.Info("Opening options dialog...")
		showOptionsDialog()
	})
	topControlBar.Append(optionsButton)

	//ANCHOR - Wallpaper path editor
	// Shown on start when no path is configured, or via "Edit wallpapers path"

	PathEditor = newPathEditor(Config.General.WallpapersPath, onWallpapersPathSet)

	//ANCHOR - Current wallpaper
	// The wallpaper currently written in the Regolith config

	CurrentWallpaperBox = gtk.NewBox(gtk.OrientationVertical, 4)
	CurrentWallpaperBox.SetMarginStart(20)
	CurrentWallpaperBox.SetMarginEnd(20)
	CurrentWallpaperBox.SetMarginTop(10)
	currentLabel := gtk.NewLabel("Current wallpaper")
	currentLabel.SetHAlign(gtk.AlignStart)
	CurrentWallpaperImage = gtk.NewImageFromIconName("image-x-generic-symbolic")
	CurrentWallpaperImage.SetPixelSize(currentPreviewSize)
	CurrentWallpaperImage.SetHAlign(gtk.AlignStart)
	CurrentWallpaperError = gtk.NewLabel("")
	CurrentWallpaperError.SetHAlign(gtk.AlignStart)
	CurrentWallpaperError.AddCSSClass("error")
	CurrentWallpaperError.SetVisible(false)
	CurrentWallpaperBox.Append(currentLabel)
	CurrentWallpaperBox.Append(CurrentWallpaperImage)
	CurrentWallpaperBox.Append(CurrentWallpaperError)

	//ANCHOR - Wallpaper list

	WallpaperList = gtk.NewFlowBox()
	WallpaperList.SetSelectionMode(gtk.SelectionNone)
	WallpaperList.SetActivateOnSingleClick(true)
	WallpaperList.SetHomogeneous(true)
	WallpaperList.SetColumnSpacing(12)
	WallpaperList.SetRowSpacing(12)
	WallpaperList.SetMaxChildrenPerLine(8)
	WallpaperList.SetHAlign(gtk.AlignCenter)
	WallpaperList.SetVAlign(gtk.AlignStart)
	WallpaperList.SetMarginTop(10)
	WallpaperList.SetMarginBottom(10)
	WallpaperList.SetMarginStart(10)
	WallpaperList.SetMarginEnd(10)
	// thumbnails arrive out of order, keep them in folder order
	WallpaperList.SetSortFunc(func(child1, child2 *gtk.FlowBoxChild) int {
		return itemID(child1) - itemID(child2)
	})
	WallpaperList.ConnectChildActivated(func(child *gtk.FlowBoxChild) {
		if child == nil {
			return
		}
		selectAndApply(itemID(child))
	})

	ScrolledWindow = gtk.NewScrolledWindow()
	ScrolledWindow.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	ScrolledWindow.SetMinContentHeight(400)
	ScrolledWindow.SetMinContentWidth(800)
	ScrolledWindow.SetHExpand(true)
	ScrolledWindow.SetVExpand(true)
	ScrolledWindow.SetChild(WallpaperList)

	//ANCHOR - Status bar
	// Set this via updateGUIStatusText / updateGUIStatusError

	StatusText = gtk.NewLabel("")
	StatusText.SetHAlign(gtk.AlignFill)
	StatusText.SetXAlign(0)
	StatusText.AddCSSClass("status-bar")

	vBox := gtk.NewBox(gtk.OrientationVertical, 0)
	vBox.Append(title)
	vBox.Append(topControlBar)
	vBox.Append(PathEditor.Box)
	vBox.Append(CurrentWallpaperBox)
	vBox.Append(ScrolledWindow)
	vBox.Append(StatusText)

	MainWindow.SetChild(vBox)
	MainWindow.SetDefaultSize(1200, 800)
	MainWindow.SetVisible(true)

	startWatching()
	loadCurrentWallpaper(highlightAlways)

	if PathEditor.Path() == "" {
		showPathEditor(true)
	} else {
		showPathEditor(false)
		reloadGallery()
	}
}

// Stops the background work when the application quits.
func shutdown() {
	cancelLoad()
	cancelWatch()
	if watcher != nil {
		watcher.Close()
	}
}

// Helper function to provide custom CSS to the entire application.
func setupStyling() {
	settings := gtk.SettingsGetDefault()
	if settings != nil {
		settings.SetObjectProperty("gtk-application-prefer-dark-theme", true)
	}

	cssProvider := gtk.NewCSSProvider()
	css := `
		.wallpaper-item {
			border: 2px solid transparent;
			border-radius: 4px;
			padding: 10px;
		}

		.wallpaper-item.selected {
			border-color: rgb(26, 191, 77);
		}

		.path-editor {
			border: 1px solid white;
			padding: 30px;
		}

		.status-bar {
			background-color: rgb(41, 54, 51);
			padding: 5px 10px;
		}

		.error {
			color: rgb(230, 51, 51);
		}
		`

	cssProvider.LoadFromString(css)
	gtk.StyleContextAddProviderForDisplay(
		gdk.DisplayGetDefault(),
		cssProvider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}

// Updates the status bar with an informational message.
func updateGUIStatusText(message string) {
	if StatusText != nil {
		glib.IdleAdd(func() {
			StatusText.RemoveCSSClass("error")
			StatusText.SetText(message)
		})
	}
}

// Updates the status bar with an error message, shown in red.
func updateGUIStatusError(message string) {
	if StatusText != nil {
		glib.IdleAdd(func() {
			StatusText.AddCSSClass("error")
			StatusText.SetText(message)
		})
	}
}

func showPathEditor(show bool) {
	PathEditor.Box.SetVisible(show)
	EditPathButton.SetVisible(!show)
	CurrentWallpaperBox.SetVisible(!show)
	if show {
		PathEditor.Focus()
	}
}

func onWallpapersPathSet(path string) {
	Config.General.WallpapersPath = path
	saveConfig()

	showPathEditor(false)
	updateGUIStatusText(fmt.Sprintf("Path set to %q", path))
	reloadGallery()
}

// Sets the image from a file on the main thread, decoding it on a goroutine.
func setImageFromFileAsync(file string, targetImage *gtk.Image, pixelSize int) {
	go func() {
		pixbuf, err := gdkpixbuf.NewPixbufFromFile(file)
		if err != nil {
			log.Error("Error creating GdkPixbuf", "file", file, "err", err)
			return
		}

		// convert to paintable as image.SetFromPixbuf is deprecated
		paintable := gdk.NewTextureForPixbuf(pixbuf)

		glib.IdleAdd(func() {
			targetImage.SetFromPaintable(paintable)
			targetImage.SetPixelSize(pixelSize)
		})
	}()
}

func thumbnailer() wallpapers.Thumbnailer {
	return wallpapers.Thumbnailer{CacheDir: CacheDir, Size: Config.General.ThumbnailSize}
}

// Reads the wallpaper from the Regolith config and shows it in the "Current wallpaper" box.
// Depending on highlight, the matching grid item is selected as well.
func loadCurrentWallpaper(highlight highlightMode) {
	xresources, err := Config.XresourcesPath()
	if err != nil {
		showCurrentWallpaperError(err)
		return
	}
	th := thumbnailer()

	go func() {
		current, err := regolith.ReadWallpaper(xresources)
		if err != nil {
			log.Error("Failed to get wallpaper path from current regolith configuration", "err", err)
			glib.IdleAdd(func() {
				followCurrentWallpaper("", highlightNever)
				showCurrentWallpaperError(err)
			})
			return
		}

		thumbnail, err := th.Thumbnail(current)
		if err != nil {
			log.Error("Failed to load image from wallpaper path from current regolith configuration", "err", err)
			glib.IdleAdd(func() {
				followCurrentWallpaper(current, highlight)
				showCurrentWallpaperError(err)
			})
			return
		}

		glib.IdleAdd(func() {
			followCurrentWallpaper(current, highlight)
			CurrentWallpaperError.SetVisible(false)
			CurrentWallpaperImage.SetTooltipText(current)
		})
		setImageFromFileAsync(thumbnail, CurrentWallpaperImage, currentPreviewSize)
	}()
}

// Stores current as CurrentWallpaper and updates the grid selection.
func followCurrentWallpaper(current string, highlight highlightMode) {
	previous := CurrentWallpaper
	CurrentWallpaper = current

	switch highlight {
	case highlightAlways:
		markSelected(current)
	case highlightChanged:
		if _, ok := Gallery.Follow(previous, current); ok {
			refreshSelectionStyles()
		}
	}
}

func showCurrentWallpaperError(err error) {
	CurrentWallpaperImage.SetFromIconName("image-missing-symbolic")
	CurrentWallpaperError.SetText(err.Error())
	CurrentWallpaperError.SetVisible(true)
}

// Forces a full reload of the wallpaper grid from the wallpapers folder.
//
// Any load still running is cancelled. Thumbnails are created on worker
// goroutines and appended to the grid as they finish.
func reloadGallery() {
	cancelLoad()
	loadGeneration++
	generation := loadGeneration

	Gallery.Clear()
	WallpaperList.RemoveAll()

	dir, err := Config.WallpapersDir()
	if err != nil {
		updateGUIStatusError(err.Error())
		return
	}
	if dir == "" {
		return
	}
	watchWallpapersDir(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancelLoad = cancel

	maxImages := Config.General.MaxImages
	loader := wallpapers.Loader{Thumbnailer: thumbnailer(), Workers: Config.General.Workers}
	updateGUIStatusText("Loading wallpapers from " + dir + "...")

	go func() {
		paths, err := wallpapers.List(ctx, dir)
		if err != nil {
			glib.IdleAdd(func() {
				if staleLoad(generation) {
					return
				}
				updateGUIStatusError(err.Error())
			})
			return
		}
		paths = wallpapers.Limit(paths, maxImages)

		failed := 0
		err = loader.Load(ctx, paths, func(item wallpapers.Item) {
			glib.IdleAdd(func() {
				if staleLoad(generation) {
					return
				}
				Gallery.Add(item)
				appendWallpaperItem(item)
			})
		}, func(path string, err error) {
			glib.IdleAdd(func() {
				if staleLoad(generation) {
					return
				}
				failed++
				updateGUIStatusError(err.Error())
			})
		})
		if err != nil {
			log.Debug("Wallpaper loading stopped", "err", err)
			return
		}

		glib.IdleAdd(func() {
			if staleLoad(generation) {
				return
			}
			markSelected(CurrentWallpaper)
			if failed == 0 {
				updateGUIStatusText(fmt.Sprintf("%d wallpapers loaded. Click one to apply it.", Gallery.Len()))
			}
		})
	}()
}

// Reports whether a newer reloadGallery replaced the load started as generation.
func staleLoad(generation int) bool {
	return generation != loadGeneration
}

// Adds one thumbnail to the grid.
func appendWallpaperItem(item wallpapers.Item) {
	image := gtk.NewImageFromIconName("image-x-generic-symbolic")
	image.SetPixelSize(Config.General.ThumbnailSize)
	image.SetHAlign(gtk.AlignCenter)
	image.SetVAlign(gtk.AlignCenter)
	image.SetTooltipText(filepath.Base(item.Path))

	child := gtk.NewFlowBoxChild()
	child.SetName(strconv.Itoa(item.ID))
	child.AddCSSClass("wallpaper-item")
	child.SetChild(image)

	attachContextMenu(child, item)

	WallpaperList.Append(child)
	setImageFromFileAsync(item.Thumbnail, image, Config.General.ThumbnailSize)
}

// Right click menu of a grid item.
func attachContextMenu(child *gtk.FlowBoxChild, item wallpapers.Item) {
	group := "wallpaper" + strconv.Itoa(item.ID)
	actionGroup := gio.NewSimpleActionGroup()

	applyAction := gio.NewSimpleAction("apply", nil)
	applyAction.Connect("activate", func(_ *gio.SimpleAction, _ any) {
		selectAndApply(item.ID)
	})
	actionGroup.AddAction(&applyAction.Action)

	openDirectoryAction := gio.NewSimpleAction("open_directory", nil)
	openDirectoryAction.Connect("activate", func(_ *gio.SimpleAction, _ any) {
		dir := filepath.Dir(item.Path)
		go func() {
			if err := browser.OpenFile(dir); err != nil {
				log.Error("Error opening folder", "path", dir, "err", err)
				updateGUIStatusError(err.Error())
			}
		}()
	})
	actionGroup.AddAction(&openDirectoryAction.Action)

	copyPathAction := gio.NewSimpleAction("copy_path", nil)
	copyPathAction.Connect("activate", func(_ *gio.SimpleAction, _ any) {
		gdk.DisplayGetDefault().Clipboard().SetText(item.Path)
		updateGUIStatusText("Copied " + item.Path)
	})
	actionGroup.AddAction(&copyPathAction.Action)

	child.InsertActionGroup(group, actionGroup)

	gesture := gtk.NewGestureClick()
	gesture.SetButton(3)
	child.AddController(gesture)
	gesture.ConnectReleased(func(nPress int, x, y float64) {
		if nPress != 1 {
			return
		}

		menuModel := gio.NewMenu()
		menuModel.Append("Apply Wallpaper", group+".apply")
		menuModel.Append("Open Containing Folder", group+".open_directory")
		menuModel.Append("Copy Path to Clipboard", group+".copy_path")

		contextMenu := gtk.NewPopoverMenuFromModel(menuModel)
		contextMenu.SetParent(child)

		// show it where the user clicked
		rect := gdk.NewRectangle(int(x), int(y), 1, 1)
		contextMenu.SetPointingTo(&rect)
		contextMenu.SetPosition(gtk.PosBottom)
		contextMenu.SetHasArrow(true)

		contextMenu.Popup()
	})
}

func itemID(child *gtk.FlowBoxChild) int {
	id, err := strconv.Atoi(child.Name())
	if err != nil {
		return -1
	}
	return id
}

// Mirrors the Gallery selection onto the grid's CSS classes.
func refreshSelectionStyles() {
	if WallpaperList == nil {
		return
	}
	selected, ok := Gallery.Selected()
	for i := 0; ; i++ {
		child := WallpaperList.ChildAtIndex(i)
		if child == nil {
			break
		}
		if ok && itemID(child) == selected.ID {
			child.AddCSSClass("selected")
		} else {
			child.RemoveCSSClass("selected")
		}
	}
}

// Highlights the grid item showing path, e.g. the current wallpaper.
func markSelected(path string) {
	if path == "" {
		return
	}
	Gallery.SelectPath(path)
	refreshSelectionStyles()
}

// Toggles the selection of the item and writes it to the Regolith config.
func selectAndApply(id int) {
	item, ok := Gallery.Select(id)
	refreshSelectionStyles()
	if !ok {
		log.Warn("No wallpaper loaded for the activated child", "id", id)
		return
	}
	applyWallpaperAsync(item.Path)
}

func applyRandomWallpaper() {
	path, err := wallpapers.PickRandom(Gallery.Paths(), nil)
	if err != nil {
		updateGUIStatusError("No wallpapers loaded to pick from.")
		return
	}
	markSelected(path)
	applyWallpaperAsync(path)
}

// Applies the wallpaper on a goroutine and reports the result in the status bar.
func applyWallpaperAsync(path string) {
	xresources, err := Config.XresourcesPath()
	if err != nil {
		updateGUIStatusError(err.Error())
		return
	}
	refreshCommand := Config.Regolith.RefreshCommand
	postCommand := Config.Regolith.PostCommand
	discardLogs := Config.Regolith.DiscardProcessLogs

	// the watcher sees our own write before the refresh command returns
	CurrentWallpaper = path

	updateGUIStatusText("Applying " + filepath.Base(path) + "...")
	go func() {
		err := applyWallpaper(context.Background(), xresources, refreshCommand, postCommand, discardLogs, path)
		if err != nil {
			log.Error("Failed to apply wallpaper", "wallpaper", path, "err", err)
			updateGUIStatusError(err.Error())
			glib.IdleAdd(func() { loadCurrentWallpaper(highlightNever) })
			return
		}

		glib.IdleAdd(func() {
			Config.UI.LastApplied = path
			loadCurrentWallpaper(highlightNever)
		})
		updateGUIStatusText("Wallpaper set to " + path)
	}()
}

// Starts the file watcher for the Regolith config and the wallpapers folder.
func startWatching() {
	if !Config.UI.WatchFiles {
		return
	}

	var err error
	watcher, err = watch.New(func(path string) {
		glib.IdleAdd(func() { onWatchedChange(path) })
	})
	if err != nil {
		log.Warn("File watching disabled", "err", err)
		watcher = nil
		return
	}

	if xresources, err := Config.XresourcesPath(); err == nil {
		if err := watcher.AddFile(xresources); err != nil {
			log.Warn("Cannot watch regolith config", "path", xresources, "err", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancelWatch = cancel
	go watcher.Run(ctx)
}

func watchWallpapersDir(dir string) {
	if watcher == nil || dir == watchedDir {
		return
	}
	if watchedDir != "" {
		watcher.Remove(watchedDir)
	}
	if err := watcher.AddDir(dir); err != nil {
		log.Warn("Cannot watch wallpapers folder", "path", dir, "err", err)
		watchedDir = ""
		return
	}
	watchedDir = dir
}

func onWatchedChange(path string) {
	if path == watchedDir {
		log.Info("Wallpapers folder changed, reloading", "path", path)
		reloadGallery()
		return
	}
	log.Info("Regolith config changed, reloading current wallpaper", "path", path)
	loadCurrentWallpaper(highlightChanged)
}
