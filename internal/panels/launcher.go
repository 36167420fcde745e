package panels

import (
	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// Launcher browses the content catalog. The persistent variant ignores
// close requests so it stays on the wall.
type Launcher struct {
	*viewer.Base
	persistent bool
	folder     int
}

func newLauncher(persistent bool) viewer.Constructor {
	return func(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
		tag := viewer.TypeLauncher
		if persistent {
			tag = viewer.TypeLauncherPersistent
		}
		l := &Launcher{persistent: persistent}
		l.Base = viewer.NewBase(env, viewer.Spec{
			Type:         tag,
			Capabilities: viewer.Capabilities{Resize: true},
			MaxInstances: 1,
			DefaultSize:  launcherSize,
		}, l)
		fixSize(l.Base, launcherSize)
		return l, nil
	}
}

// RequestClose is ignored by the persistent launcher.
func (l *Launcher) RequestClose() {
	if l.persistent {
		return
	}
	l.Base.RequestClose()
}

// Persistent reports whether the launcher ignores close requests.
func (l *Launcher) Persistent() bool { return l.persistent }

// Open descends into the folder with id. Zero returns to the root.
func (l *Launcher) Open(id int) {
	if id != 0 && l.Env().Catalog.Lookup(id) == nil {
		l.Logger().Warn("launcher folder not found", "id", id)
		return
	}
	l.folder = id
}

// Up returns to the parent folder.
func (l *Launcher) Up() {
	cat := l.Env().Catalog
	cur := cat.Lookup(l.folder)
	l.folder = 0
	if parent := cat.Parent(cur); parent != nil {
		l.folder = parent.ID
	}
}

func (l *Launcher) Folder() int { return l.folder }

// Items lists the entries of the current folder.
func (l *Launcher) Items() []*content.Model {
	cat := l.Env().Catalog
	if l.folder != 0 {
		if m := cat.Lookup(l.folder); m != nil {
			return m.Children
		}
		return nil
	}
	var roots []*content.Model
	for _, m := range cat.All() {
		if m.ParentID == 0 {
			roots = append(roots, m)
		}
	}
	return roots
}
