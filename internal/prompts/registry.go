package prompts

import (
	"fmt"
	"sort"
	"sync"
)

// PromptRegistry holds versioned prompts keyed by ID. Prompts register
// themselves in package init; the registry stays mutable so callers can
// override a prompt for experimentation.
type PromptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]map[PromptVersion]*Prompt
}

var (
	defaultRegistry     *PromptRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *PromptRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewPromptRegistry()
	})
	return defaultRegistry
}

func NewPromptRegistry() *PromptRegistry {
	return &PromptRegistry{prompts: make(map[string]map[PromptVersion]*Prompt)}
}

// Register adds a prompt, replacing any existing entry with the same ID
// and version.
func (r *PromptRegistry) Register(p *Prompt) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byVersion := r.prompts[p.ID]
	if byVersion == nil {
		byVersion = make(map[PromptVersion]*Prompt)
		r.prompts[p.ID] = byVersion
	}
	byVersion[p.Version] = p
}

// Get returns the prompt with the given ID and version.
func (r *PromptRegistry) Get(id string, version PromptVersion) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.prompts[id][version]
	if p == nil {
		return nil, fmt.Errorf("prompt %s@%s not registered", id, version)
	}
	return p, nil
}

// Latest returns the highest non-deprecated version of a prompt, or the
// highest version overall when every version is deprecated.
func (r *PromptRegistry) Latest(id string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byVersion := r.prompts[id]
	if len(byVersion) == 0 {
		return nil, fmt.Errorf("prompt %s not registered", id)
	}

	versions := make([]PromptVersion, 0, len(byVersion))
	for v := range byVersion {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })

	for _, v := range versions {
		if !byVersion[v].Deprecated {
			return byVersion[v], nil
		}
	}
	return byVersion[versions[0]], nil
}

// List returns the registered prompt IDs, sorted.
func (r *PromptRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.prompts))
	for id := range r.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
