package stage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// LoadTemplates reads stage prompt overrides from a YAML file and overlays
// them on the built-in defaults. A missing path returns the defaults.
func LoadTemplates(path string) (Templates, error) {
	if path == "" {
		return DefaultTemplates(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTemplates(), nil
		}
		return Templates{}, fmt.Errorf("read prompts file: %w", err)
	}

	var tmpl Templates
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return Templates{}, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	return tmpl.merged(), nil
}

// Library serves the current stage set and reloads it when the overrides
// file changes. Used by interactive mode so prompt tweaks take effect
// between runs without restarting.
type Library struct {
	path string

	mu     sync.RWMutex
	stages []Stage

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLibrary loads the templates at path and starts watching the file for
// changes. If the watcher cannot be created the library still works, it just
// won't pick up edits.
func NewLibrary(path string) (*Library, error) {
	tmpl, err := LoadTemplates(path)
	if err != nil {
		return nil, err
	}

	lib := &Library{
		path:   path,
		stages: All(tmpl),
		done:   make(chan struct{}),
	}

	if path == "" {
		return lib, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return lib, nil
	}
	// Watch the directory: editors replace files on save, which drops a
	// watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return lib, nil
	}
	lib.watcher = watcher

	go lib.watch()

	return lib, nil
}

// Stages returns the current stage set in pipeline order.
func (l *Library) Stages() []Stage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stages
}

func (l *Library) watch() {
	for {
		select {
		case <-l.done:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(l.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			tmpl, err := LoadTemplates(l.path)
			if err != nil {
				log.Printf("[prompts] reload failed, keeping previous templates: %v", err)
				continue
			}
			l.mu.Lock()
			l.stages = All(tmpl)
			l.mu.Unlock()
			log.Printf("[prompts] reloaded stage prompts from %s", l.path)
		case <-l.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// Close stops the file watcher.
func (l *Library) Close() {
	close(l.done)
	if l.watcher != nil {
		l.watcher.Close()
	}
}
