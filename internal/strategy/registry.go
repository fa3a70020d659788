package strategy

import (
	"sync"

	"go.uber.org/zap"
)

// Registry manages the available signal generators. The backtest engine is
// indifferent to which generator it is handed; the registry is how the app
// layer resolves one by name.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
	logger     *zap.Logger
}

// NewRegistry creates a new generator registry.
func NewRegistry(logger ...*zap.Logger) *Registry {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Registry{
		generators: make(map[string]Generator),
		logger:     l,
	}
}

// Register adds a generator to the registry.
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.generators[g.Name()]; exists {
		r.logger.Warn("generator replaced", zap.String("generator", g.Name()))
	}
	r.generators[g.Name()] = g
}

// Get retrieves a generator by name.
func (r *Registry) Get(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[name]
	return g, ok
}

// Names returns the registered generator names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	return names
}
