// Package localization provides functionality for internationalization (i18n).
// It loads translation strings from JSON files and provides the texts of
// complaint notifications in the recipient's language.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
)

// DefaultLanguage is used when a key is missing in the requested language.
const DefaultLanguage = "en"

//go:embed *.json
var bundled embed.FS

// Localizer holds one key/value table per language code.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer loads every <lang>.json file from the directory at path.
func NewLocalizer(path string) (*Localizer, error) {
	return Load(os.DirFS(path))
}

// Bundled returns a Localizer over the translation files compiled into the
// binary.
func Bundled() *Localizer {
	l, err := Load(bundled)
	if err != nil {
		// the embedded files are part of the build; a parse error is a bug
		panic(fmt.Sprintf("localization: bundled translations: %v", err))
	}
	return l
}

// Load reads every <lang>.json file at the root of fsys.
func Load(fsys fs.FS) (*Localizer, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	l := &Localizer{translations: make(map[string]map[string]string)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", name, err)
		}

		var table map[string]string
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", name, err)
		}
		l.translations[strings.TrimSuffix(name, ".json")] = table
	}
	return l, nil
}

// GetString returns the text for key in lang, then in DefaultLanguage, and
// finally the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if value, ok := l.translations[lang][key]; ok {
		return value
	}
	if value, ok := l.translations[DefaultLanguage][key]; ok {
		return value
	}
	return key
}

// Format looks up key like GetString and applies fmt.Sprintf with args.
func (l *Localizer) Format(lang, key string, args ...any) string {
	return fmt.Sprintf(l.GetString(lang, key), args...)
}

// Status returns the display label of a complaint status.
func (l *Localizer) Status(lang, status string) string {
	if status == "" {
		status = "unknown"
	}
	return l.GetString(lang, "status."+status)
}

// Languages returns the loaded language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
