package variation

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"go-variations/debug"
	"go-variations/graph"
	"go-variations/undo"
	"go-variations/value"
)

// Registry owns exactly one pool per composition symbol. Pools are created
// on first use and loaded from the store when one is configured.
type Registry struct {
	graph graph.Graph
	stack *undo.Stack
	store *Store
	rng   value.Source

	pools map[uuid.UUID]*Pool
	order []uuid.UUID
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewRegistry creates a registry. store may be nil.
func NewRegistry(g graph.Graph, stack *undo.Stack, store *Store) *Registry {
	return &Registry{
		graph: g,
		stack: stack,
		store: store,
		rng:   globalSource{},
		pools: make(map[uuid.UUID]*Pool),
	}
}

// SetSource replaces the random source used for scatter (tests)
func (r *Registry) SetSource(rng value.Source) {
	r.rng = rng
	for _, p := range r.pools {
		p.rng = rng
	}
}

// GetOrLoad returns the cached pool for symbolID, creating it on first use
func (r *Registry) GetOrLoad(symbolID uuid.UUID) *Pool {
	if p, ok := r.pools[symbolID]; ok {
		return p
	}

	p := NewPool(symbolID, r.graph, r.stack, r.rng)
	if r.store != nil {
		if n, err := r.store.Load(p); err != nil {
			debug.Warn("registry", "load variations for %s: %v", symbolID, err)
		} else if n > 0 {
			debug.Log("registry", "loaded %d variations for %s", n, symbolID)
		}
	}

	r.pools[symbolID] = p
	r.order = append(r.order, symbolID)
	return p
}

// Lookup returns a pool only if it already exists
func (r *Registry) Lookup(symbolID uuid.UUID) (*Pool, bool) {
	p, ok := r.pools[symbolID]
	return p, ok
}

// Pools returns all pools in creation order
func (r *Registry) Pools() []*Pool {
	out := make([]*Pool, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.pools[id])
	}
	return out
}

// SaveAll writes every pool to the store
func (r *Registry) SaveAll() error {
	if r.store == nil {
		return nil
	}
	for _, p := range r.Pools() {
		if err := r.store.Save(p); err != nil {
			return err
		}
	}
	return nil
}
