package httpserver

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/agrotern2025/agrotern/internal/i18n"
	"github.com/agrotern2025/agrotern/internal/nav"
)

const layoutTemplate = "base"

// Renderer executes the page and fragment templates. Every page file gets its
// own clone of the shared layouts and partials, so pages can each define
// "content". In dev mode templates are reparsed on each call.
type Renderer struct {
	fsys   fs.FS
	dev    bool
	bundle *i18n.Bundle

	mu    sync.Mutex
	cache *templateSet
}

type templateSet struct {
	shared *template.Template
	pages  map[string]*template.Template
}

// NewRenderer parses the templates found in fsys. Parsing happens eagerly
// unless dev is set.
func NewRenderer(fsys fs.FS, bundle *i18n.Bundle, dev bool) (*Renderer, error) {
	r := &Renderer{fsys: fsys, dev: dev, bundle: bundle}
	if dev {
		return r, nil
	}
	set, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.cache = set
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"t": func(lang, key string) string {
			if r.bundle == nil {
				return key
			}
			return r.bundle.T(lang, key)
		},
		"crumb": func(lang string, c nav.Crumb) string {
			if c.LabelKey != "" && r.bundle != nil {
				return r.bundle.T(lang, c.LabelKey)
			}
			return c.Label
		},
	}
}

func (r *Renderer) parse() (*templateSet, error) {
	var shared, pages []string
	err := fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		if strings.HasPrefix(p, "pages/") {
			pages = append(pages, p)
		} else {
			shared = append(shared, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(shared) == 0 {
		return nil, fmt.Errorf("no layout or partial templates found")
	}

	base, err := template.New("_root").Funcs(r.funcs()).ParseFS(r.fsys, shared...)
	if err != nil {
		return nil, fmt.Errorf("parse shared templates: %w", err)
	}
	set := &templateSet{shared: base, pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(r.fsys, p); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", p, err)
		}
		set.pages[strings.TrimSuffix(path.Base(p), ".tmpl")] = clone
	}
	return set, nil
}

func (r *Renderer) templates() (*templateSet, error) {
	if r.dev {
		return r.parse()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		set, err := r.parse()
		if err != nil {
			return nil, err
		}
		r.cache = set
	}
	return r.cache, nil
}

// Page renders the base layout with the named page's content into a buffer.
func (r *Renderer) Page(name string, data any) ([]byte, error) {
	set, err := r.templates()
	if err != nil {
		return nil, err
	}
	t, ok := set.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		return nil, fmt.Errorf("execute page %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Fragment executes a shared template by name.
func (r *Renderer) Fragment(w io.Writer, name string, data any) error {
	set, err := r.templates()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := set.shared.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute fragment %s: %w", name, err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
