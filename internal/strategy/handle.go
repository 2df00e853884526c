package strategy

import (
	"context"
	"sync"

	"github.com/spigell/resumatch/internal/ai"
)

// LoadFunc loads a local model and returns the analyzer serving it.
type LoadFunc func(ctx context.Context) (ai.Analyzer, error)

// ModelHandle lazily loads a local model once and shares it afterwards.
// Concurrent first calls wait for a single load. A failed load is not kept,
// so the next call tries again.
type ModelHandle struct {
	mu       sync.Mutex
	load     LoadFunc
	analyzer ai.Analyzer
}

func NewModelHandle(load LoadFunc) *ModelHandle {
	return &ModelHandle{load: load}
}

// LocalModel is a local analyzer that has to be loaded before first use.
type LocalModel interface {
	ai.Analyzer
	Load(ctx context.Context) error
}

// HandleFor wraps a LocalModel in a ModelHandle.
func HandleFor(model LocalModel) *ModelHandle {
	return NewModelHandle(func(ctx context.Context) (ai.Analyzer, error) {
		if err := model.Load(ctx); err != nil {
			return nil, err
		}
		return model, nil
	})
}

// Get returns the loaded analyzer, loading it on first use.
func (h *ModelHandle) Get(ctx context.Context) (ai.Analyzer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.analyzer != nil {
		return h.analyzer, nil
	}

	analyzer, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	h.analyzer = analyzer
	return analyzer, nil
}

// Loaded reports whether a load has succeeded.
func (h *ModelHandle) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.analyzer != nil
}
