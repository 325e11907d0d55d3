package wallpapers

import (
	"slices"
	"sync"
)

// Item is one image shown in the picker grid.
type Item struct {
	ID        int
	Path      string
	Thumbnail string
	Selected  bool
}

// Gallery holds the loaded items and which one is selected.
// At most one item is selected at a time.
type Gallery struct {
	mu    sync.RWMutex
	items []Item
}

func (g *Gallery) Add(item Item) {
	g.mu.Lock()
	defer g.mu.Unlock()

	item.Selected = false
	// thumbnails finish out of order, keep the slice sorted by ID
	i, _ := slices.BinarySearchFunc(g.items, item.ID, func(it Item, id int) int {
		return it.ID - id
	})
	g.items = slices.Insert(g.items, i, item)
}

func (g *Gallery) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = nil
}

func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.items)
}

// Items returns a copy of the items ordered by ID.
func (g *Gallery) Items() []Item {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.items)
}

// Get returns the item with the given ID.
func (g *Gallery) Get(id int) (Item, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, item := range g.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Select toggles the selection of the item with the given ID and unselects
// every other item. The returned item reflects its new state.
func (g *Gallery) Select(id int) (Item, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var found Item
	ok := false
	for i := range g.items {
		if g.items[i].ID == id {
			g.items[i].Selected = !g.items[i].Selected
			found = g.items[i]
			ok = true
		} else {
			g.items[i].Selected = false
		}
	}
	return found, ok
}

// SelectPath selects the item showing path, if loaded, without toggling.
func (g *Gallery) SelectPath(path string) (Item, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var found Item
	ok := false
	for i := range g.items {
		g.items[i].Selected = !ok && g.items[i].Path == path
		if g.items[i].Selected {
			found = g.items[i]
			ok = true
		}
	}
	return found, ok
}

// Follow selects the item showing current when the wallpaper changed from
// previous. An unchanged wallpaper leaves the selection alone, so an item the
// user toggled off stays off after its own write is read back.
func (g *Gallery) Follow(previous, current string) (Item, bool) {
	if current == "" || current == previous {
		return Item{}, false
	}
	return g.SelectPath(current)
}

// Selected returns the currently selected item.
func (g *Gallery) Selected() (Item, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, item := range g.items {
		if item.Selected {
			return item, true
		}
	}
	return Item{}, false
}

// Paths returns the image paths of every loaded item.
func (g *Gallery) Paths() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	paths := make([]string, 0, len(g.items))
	for _, item := range g.items {
		paths = append(paths, item.Path)
	}
	return paths
}
