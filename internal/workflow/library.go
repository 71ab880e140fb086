// Package workflow loads pre-authored plan templates from JSON files
// and serves them to the planner. The library watches its directory and
// reloads edited templates without a restart.
package workflow

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vibeagent/internal/engine"

	"github.com/fsnotify/fsnotify"
)

// Template is one workflow file: a trigger phrase plus the steps it
// expands to. Matching is case-insensitive on the exact trigger.
type Template struct {
	Name    string                `json:"name"`
	Trigger string                `json:"trigger"`
	Steps   []engine.StepTemplate `json:"steps"`
}

// Library implements engine.TemplateSource over a directory of *.json
// template files.
type Library struct {
	dir string
	log *log.Logger

	mu        sync.RWMutex
	byTrigger map[string]Template

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLibrary loads every template in dir. A missing directory is not an
// error; the library just starts empty.
func NewLibrary(dir string, logger *log.Logger) (*Library, error) {
	if logger == nil {
		logger = log.Default()
	}
	lib := &Library{
		dir:       dir,
		log:       logger,
		byTrigger: make(map[string]Template),
	}
	if err := lib.reload(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Lookup implements engine.TemplateSource.
func (l *Library) Lookup(goal string) ([]engine.StepTemplate, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tmpl, ok := l.byTrigger[normalizeTrigger(goal)]
	if !ok || len(tmpl.Steps) == 0 {
		return nil, false
	}
	steps := make([]engine.StepTemplate, len(tmpl.Steps))
	copy(steps, tmpl.Steps)
	return steps, true
}

// Templates returns the loaded templates, for listing in the UI.
func (l *Library) Templates() []Template {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Template, 0, len(l.byTrigger))
	for _, t := range l.byTrigger {
		out = append(out, t)
	}
	return out
}

// Watch starts reloading the library whenever a template file changes.
// Call Close to stop watching.
func (l *Library) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}

	l.watcher = watcher
	l.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".json") {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := l.reload(); err != nil {
					l.log.Printf("warn: workflow reload failed: %v", err)
					continue
				}
				l.log.Printf("workflow templates reloaded after change to %s", filepath.Base(event.Name))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.log.Printf("warn: workflow watcher error: %v", err)
			case <-l.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the directory watcher if one is running.
func (l *Library) Close() error {
	if l.watcher == nil {
		return nil
	}
	close(l.done)
	err := l.watcher.Close()
	l.watcher = nil
	return err
}

// reload re-reads the whole directory. A single malformed file is
// logged and skipped so one bad edit cannot empty the library.
func (l *Library) reload() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read workflow dir: %w", err)
	}

	byTrigger := make(map[string]Template)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		tmpl, err := loadTemplate(path)
		if err != nil {
			l.log.Printf("warn: skipping workflow template %s: %v", entry.Name(), err)
			continue
		}
		byTrigger[normalizeTrigger(tmpl.Trigger)] = tmpl
	}

	l.mu.Lock()
	l.byTrigger = byTrigger
	l.mu.Unlock()
	return nil
}

func loadTemplate(path string) (Template, error) {
	var tmpl Template
	data, err := os.ReadFile(path)
	if err != nil {
		return tmpl, err
	}
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return tmpl, fmt.Errorf("parse: %w", err)
	}
	if tmpl.Trigger == "" {
		return tmpl, fmt.Errorf("missing trigger")
	}
	if len(tmpl.Steps) == 0 {
		return tmpl, fmt.Errorf("no steps")
	}
	for i, s := range tmpl.Steps {
		if s.Goal == "" {
			return tmpl, fmt.Errorf("step %d has no goal", i)
		}
	}
	return tmpl, nil
}

func normalizeTrigger(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
