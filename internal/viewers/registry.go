package viewers

import (
	"fmt"
	"slices"
	"sort"

	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/evidence"
)

// DefaultOrder is the tab order when configuration names none. Later tabs
// win preference ties, so markdown beats text for .md files.
var DefaultOrder = []string{NameHex, NameStrings, NameText, NameMarkdown, NameMetadata}

// Deps are the collaborators the built-in viewers need.
type Deps struct {
	Source           ContentSource
	Contents         evidence.ContentRepository
	DataSources      evidence.DataSourceRepository
	StringsMinLength int
	MarkdownStyle    string
}

// Registry maps viewer names to factories.
type Registry struct {
	factories map[string]contentview.Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]contentview.Factory)}
}

// NewDefaultRegistry registers every built-in viewer.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry()
	r.mustRegister(NameHex, func() contentview.Viewer { return NewHex(deps.Source) })
	r.mustRegister(NameStrings, func() contentview.Viewer { return NewStrings(deps.Source, deps.StringsMinLength) })
	r.mustRegister(NameText, func() contentview.Viewer { return NewText(deps.Source) })
	r.mustRegister(NameMarkdown, func() contentview.Viewer { return NewMarkdown(deps.Source, deps.MarkdownStyle) })
	r.mustRegister(NameMetadata, func() contentview.Viewer { return NewMetadata(deps.Contents, deps.DataSources) })
	return r
}

func (r *Registry) mustRegister(name string, fn func() contentview.Viewer) {
	if err := r.Register(contentview.FactoryFunc{FactoryName: name, Fn: fn}); err != nil {
		panic(err)
	}
}

// Register adds f. Names must be unique.
func (r *Registry) Register(f contentview.Factory) error {
	if _, exists := r.factories[f.Name()]; exists {
		return fmt.Errorf("viewer %q already registered", f.Name())
	}
	r.factories[f.Name()] = f
	return nil
}

// Names returns registered names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ordered returns factories in the given order. Unknown or repeated names
// are errors. An empty list selects DefaultOrder.
func (r *Registry) Ordered(names []string) ([]contentview.Factory, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}
	out := make([]contentview.Factory, 0, len(names))
	for i, name := range names {
		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown viewer %q (available: %v)", name, r.Names())
		}
		if slices.Contains(names[:i], name) {
			return nil, fmt.Errorf("viewer %q listed twice", name)
		}
		out = append(out, f)
	}
	return out, nil
}
