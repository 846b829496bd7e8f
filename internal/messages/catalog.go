package messages

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// catalog groups
const (
	GroupSystem = "system"
	GroupErrors = "errors"
)

// system message keys
const (
	SessionStarted = "session_started"
	SessionEnded   = "session_ended"
	Greeting       = "greeting"
)

// error message keys
const (
	BadRequest      = "bad_request"
	Unauthorized    = "unauthorized"
	Forbidden       = "forbidden"
	NotFound        = "not_found"
	ServerError     = "server_error"
	Unexpected      = "unexpected"
	AuthRequired    = "auth_required"
	NoActiveSession = "no_active_session"
)

// TextProvider is what the controller and client need from a catalog.
type TextProvider interface {
	Text(group, key string) (string, error)
}

type Catalog struct {
	texts map[string]map[string]string // group -> key -> text
}

// loaded message file
type messageFile struct {
	Messages map[string]string `yaml:"messages"`
}

func NewCatalog() (*Catalog, error) {
	c := &Catalog{
		texts: make(map[string]map[string]string),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load message catalog: %w", err)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide catalog built from the embedded files.
// The files are compiled in, so a load failure is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := NewCatalog()
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func (c *Catalog) Text(group, key string) (string, error) {
	groupTexts, exists := c.texts[group]
	if !exists {
		return "", fmt.Errorf("message group not found: %s", group)
	}
	text, exists := groupTexts[key]
	if !exists {
		return "", fmt.Errorf("message '%s' not found in group '%s'", key, group)
	}
	return text, nil
}

// Lookup returns the text or the key itself when it is missing.
func Lookup(p TextProvider, group, key string) string {
	if p == nil {
		p = Default()
	}
	text, err := p.Text(group, key)
	if err != nil {
		return key
	}
	return text
}

func (c *Catalog) Groups() []string {
	groups := make([]string, 0, len(c.texts))
	for g := range c.texts {
		groups = append(groups, g)
	}
	return groups
}

func (c *Catalog) load() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var file messageFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		c.texts[name] = make(map[string]string, len(file.Messages))
		for key, text := range file.Messages {
			c.texts[name][key] = strings.TrimSpace(text)
		}
	}

	return nil
}
