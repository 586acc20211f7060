package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
)

// Ensure TemplateStore implements the interface.
var _ driven.TemplateStore = (*TemplateStore)(nil)

// TemplateStore loads reminder message templates from user-editable files.
// Templates live in a configurable directory with fallback to embedded
// defaults.
//
// The store uses lazy initialisation - files are only created when first
// accessed, not in the constructor. This makes testing easier and avoids
// unexpected I/O.
type TemplateStore struct {
	mu          sync.RWMutex
	templateDir string
	cache       map[string]string
	initOnce    sync.Once
	initErr     error
}

// defaultTemplates contains embedded default message bodies.
// These are used when user files don't exist and as the initial content
// for new files.
var defaultTemplates = map[string]string{
	driven.TemplateReminder: `This is a friendly reminder that a document is waiting for your signature.
Please review and sign at your earliest convenience.`,
}

// NewTemplateStore creates a new file-based template store.
// If templateDir is empty, defaults to ~/.countersign/templates/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewTemplateStore(templateDir string) (*TemplateStore, error) {
	if templateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		templateDir = filepath.Join(home, ".countersign", "templates")
	}

	return &TemplateStore{
		templateDir: templateDir,
		cache:       make(map[string]string),
	}, nil
}

// Load returns the template body for the given name.
// On first call, initialises the template directory and creates default
// files. Returns cached value if available, otherwise loads from file.
// Falls back to the embedded default if the file doesn't exist.
func (s *TemplateStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if tpl, ok := defaultTemplates[name]; ok {
			return tpl, nil
		}
		return "", fmt.Errorf("template store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if tpl, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return tpl, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	tpl, err := s.loadFromFile(name)
	if err != nil {
		if defaultTpl, ok := defaultTemplates[name]; ok {
			return defaultTpl, nil
		}
		return "", fmt.Errorf("load template %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = tpl
	} else {
		tpl = s.cache[name]
	}
	s.mu.Unlock()

	return tpl, nil
}

// Reload clears the template cache, forcing fresh loads from disk.
func (s *TemplateStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the template directory path.
func (s *TemplateStore) Dir() string {
	return s.templateDir
}

// initialise creates the template directory and default files.
// Called once via sync.Once on first Load().
func (s *TemplateStore) initialise() {
	if err := os.MkdirAll(s.templateDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create template directory: %w", err)
		return
	}

	// Create default template files (only if they don't exist)
	for name, content := range defaultTemplates {
		path := filepath.Join(s.templateDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default template %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a template from disk.
func (s *TemplateStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.templateDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the templates directory.
func (s *TemplateStore) createReadme() error {
	path := filepath.Join(s.templateDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Countersign Templates

This directory contains customisable message templates used when
Countersign contacts signers.

## Files

- ` + "`reminder.txt`" + ` - Body of the reminder sent to pending signers

## Customisation

Edit any file to customise the message. Changes take effect on the next
command. Delete a file to restore the built-in default on next use.
`
	return os.WriteFile(path, []byte(content), 0600)
}
