package content

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/viewwall/internal/geom"
)

// ResourceType classifies how a resource is played back.
type ResourceType string

const (
	ResourceImage   ResourceType = "image"
	ResourceVideo   ResourceType = "video"
	ResourcePDF     ResourceType = "pdf"
	ResourceWeb     ResourceType = "web"
	ResourceYouTube ResourceType = "youtube"
	ResourceStream  ResourceType = "stream"
	ResourceCapture ResourceType = "capture"
)

// cropEpsilon is the tolerance used when comparing crop rectangles.
const cropEpsilon = 1e-6

// Resource is a single piece of media referenced by a content model.
type Resource struct {
	ID     string       `yaml:"id,omitempty" toml:"id,omitempty" json:"id,omitempty"`
	Path   string       `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
	Type   ResourceType `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Width  float64      `yaml:"width,omitempty" toml:"width,omitempty" json:"width,omitempty"`
	Height float64      `yaml:"height,omitempty" toml:"height,omitempty" json:"height,omitempty"`
	Pages  int          `yaml:"pages,omitempty" toml:"pages,omitempty" json:"pages,omitempty"`
	// Crop is normalized to [0,1]; nil means the full frame.
	Crop *geom.Rect `yaml:"crop,omitempty" toml:"crop,omitempty" json:"crop,omitempty"`
}

// Empty reports whether the resource points at nothing. Streams are never
// empty since they carry no path.
func (r Resource) Empty() bool {
	return r.ID == "" && r.Path == "" && r.Type != ResourceStream
}

// CropRect returns the normalized crop, defaulting to the full frame.
func (r Resource) CropRect() geom.Rect {
	if r.Crop == nil || r.Crop.Empty() {
		return geom.Rect{Width: 1, Height: 1}
	}
	return *r.Crop
}

// Aspect returns the width/height ratio of the uncropped media.
func (r Resource) Aspect() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 1
	}
	return r.Width / r.Height
}

// CroppedAspect returns the aspect ratio after the crop is applied.
func (r Resource) CroppedAspect() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 1
	}
	c := r.CropRect()
	return (r.Width * c.Width) / (r.Height * c.Height)
}

// FileBacked reports whether the resource should exist on local disk.
func (r Resource) FileBacked() bool {
	switch r.Type {
	case ResourceWeb, ResourceYouTube, ResourceStream, ResourceCapture:
		return false
	}
	return r.Path != ""
}

// PixelExact reports whether the resource renders at fixed pixel dimensions
// rather than scaling by aspect.
func (r Resource) PixelExact() bool {
	return r.Type == ResourceWeb || r.Type == ResourceYouTube
}

// Equal reports whether two resources reference the same media.
func (r Resource) Equal(o Resource) bool {
	if r.ID != o.ID || r.Path != o.Path || r.Type != o.Type {
		return false
	}
	return r.CropRect().ApproxEqual(o.CropRect(), cropEpsilon)
}

// SameFrame reports whether two resources share a path and crop within
// floating-point tolerance. Background matching uses this looser check.
func (r Resource) SameFrame(o Resource) bool {
	if r.Path != o.Path {
		return false
	}
	a, b := r.CropRect(), o.CropRect()
	return math.Abs(a.X-b.X) <= cropEpsilon &&
		math.Abs(a.Y-b.Y) <= cropEpsilon &&
		math.Abs(a.Right()-b.Right()) <= cropEpsilon &&
		math.Abs(a.Bottom()-b.Bottom()) <= cropEpsilon
}

// Resolver decides whether a resource's backing data is reachable.
type Resolver interface {
	Exists(r Resource) bool
}

// FileResolver checks file-backed resources on disk. Relative paths are
// resolved against Root.
type FileResolver struct {
	Root string
}

// Exists implements Resolver.
func (f FileResolver) Exists(r Resource) bool {
	if !r.FileBacked() {
		return true
	}
	path := os.ExpandEnv(r.Path)
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// NewResource builds a resource for path, guessing its type from the
// extension or URL scheme.
func NewResource(path string) Resource {
	return Resource{Path: path, Type: GuessType(path)}
}

// GuessType classifies path by extension or URL scheme. Unknown local files
// are treated as images.
func GuessType(path string) ResourceType {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "youtube.com/") || strings.Contains(lower, "youtu.be/"):
		return ResourceYouTube
	case strings.HasPrefix(lower, "rtsp://") || strings.HasPrefix(lower, "rtmp://") || strings.HasPrefix(lower, "udp://"):
		return ResourceStream
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return ResourceWeb
	}
	switch filepath.Ext(lower) {
	case ".pdf":
		return ResourcePDF
	case ".mp4", ".mov", ".m4v", ".webm", ".mkv", ".avi", ".mp3", ".wav":
		return ResourceVideo
	case ".html", ".htm":
		return ResourceWeb
	}
	return ResourceImage
}
