package content

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// PresentationState tracks which presentation and slide are on screen.
type PresentationState struct {
	PresentationID int `json:"presentation_id"`
	SlideID        int `json:"slide_id"`
}

// catalogFile is the on-disk shape of a catalog.
type catalogFile struct {
	Nodes []*Model `yaml:"nodes" toml:"nodes"`
}

// Catalog indexes a content tree by id and uid and holds the current
// presentation state.
type Catalog struct {
	mu      sync.RWMutex
	roots   []*Model
	byID    map[int]*Model
	byUID   map[string]*Model
	current PresentationState
}

// NewCatalog indexes the given root nodes. Children inherit their parent's id
// when ParentID is unset.
func NewCatalog(roots []*Model) *Catalog {
	c := &Catalog{
		roots: roots,
		byID:  make(map[int]*Model),
		byUID: make(map[string]*Model),
	}
	for _, r := range roots {
		c.index(r, 0)
	}
	return c
}

func (c *Catalog) index(m *Model, parentID int) {
	if m == nil {
		return
	}
	if m.ParentID == 0 {
		m.ParentID = parentID
	}
	if m.ID != 0 {
		c.byID[m.ID] = m
	}
	if m.UID != "" {
		c.byUID[m.UID] = m
	}
	for _, child := range m.Children {
		c.index(child, m.ID)
	}
}

// LoadCatalog reads a catalog from a .yaml/.yml or .toml file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	var file catalogFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%s: failed to parse toml: %w", path, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
		}
	}

	return NewCatalog(file.Nodes), nil
}

// Lookup returns the node with id, or nil.
func (c *Catalog) Lookup(id int) *Model {
	if c == nil || id == 0 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// LookupUID returns the node with uid, or nil.
func (c *Catalog) LookupUID(uid string) *Model {
	if c == nil || uid == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byUID[uid]
}

// Parent returns m's parent node, or nil.
func (c *Catalog) Parent(m *Model) *Model {
	if m == nil {
		return nil
	}
	return c.Lookup(m.ParentID)
}

// References resolves a named reference list on m.
func (c *Catalog) References(m *Model, key string) []*Model {
	if m == nil {
		return nil
	}
	var out []*Model
	for _, id := range m.References[key] {
		if ref := c.Lookup(id); ref != nil {
			out = append(out, ref)
		}
	}
	return out
}

// All returns every indexed node ordered by id.
func (c *Catalog) All() []*Model {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Model, 0, len(c.byID))
	for _, m := range c.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Current returns the presentation state.
func (c *Catalog) Current() PresentationState {
	if c == nil {
		return PresentationState{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetCurrent replaces the presentation state.
func (c *Catalog) SetCurrent(s PresentationState) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
}
