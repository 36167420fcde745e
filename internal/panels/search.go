package panels

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// maxSearchResults caps a result list.
const maxSearchResults = 50

// Result is one ranked search hit.
type Result struct {
	Model *content.Model
	// Score is 1 for an exact substring match and falls toward 0 with edit
	// distance.
	Score float64
}

// Search ranks catalog entries against a typed query. The select-media
// variants only offer resources usable as ambient or background media.
type Search struct {
	*viewer.Base
	query   string
	results []Result
	accept  func(content.Resource) bool
}

func newSearch(tag string) viewer.Constructor {
	return func(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
		s := &Search{accept: filterFor(tag)}
		s.Base = viewer.NewBase(env, viewer.Spec{Type: tag, MaxInstances: 1, DefaultSize: searchSize}, s)
		fixSize(s.Base, searchSize)
		return s, nil
	}
}

func filterFor(tag string) func(content.Resource) bool {
	switch tag {
	case viewer.TypeSelectMediaAmbient:
		return func(r content.Resource) bool {
			return r.Type == content.ResourceVideo || r.Type == content.ResourceImage
		}
	case viewer.TypeSelectMediaBackground:
		return func(r content.Resource) bool {
			return !r.Empty() && !r.PixelExact() && r.Type != content.ResourcePDF
		}
	}
	return func(content.Resource) bool { return true }
}

// Query replaces the query and recomputes the results.
func (s *Search) Query(q string) []Result {
	s.query = q
	s.results = rank(s.Env().Catalog.All(), q, s.accept)
	return s.results
}

func (s *Search) Results() []Result { return s.results }
func (s *Search) Text() string      { return s.query }

// Title is the heading shown above the results.
func (s *Search) Title() string {
	switch s.Type() {
	case viewer.TypeSelectMediaAmbient:
		return "Select Ambient Mode Media"
	case viewer.TypeSelectMediaBackground:
		return "Select Background Media"
	}
	return "Search"
}

func rank(models []*content.Model, q string, accept func(content.Resource) bool) []Result {
	q = strings.ToUpper(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []Result
	for _, m := range models {
		if m.Name == "" || !accept(m.Media()) {
			continue
		}
		if sc := score(q, strings.ToUpper(m.Name)); sc > 0 {
			out = append(out, Result{Model: m, Score: sc})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Model.Name < out[j].Model.Name
	})
	if len(out) > maxSearchResults {
		out = out[:maxSearchResults]
	}
	return out
}

// score compares the query against a name, or against the best matching
// word of the name. Anything under 0.6 similarity is dropped.
func score(q, name string) float64 {
	if strings.Contains(name, q) {
		return 1
	}
	best := similarity(q, name)
	for _, word := range strings.Fields(name) {
		if s := similarity(q, word); s > best {
			best = s
		}
	}
	if best < 0.6 {
		return 0
	}
	// Keep fuzzy hits below every substring hit.
	return best * 0.99
}

func similarity(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
