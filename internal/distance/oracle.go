package distance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/geosphere/internal/adjacency"
	"github.com/Faultbox/geosphere/internal/geodesic"
)

// defaultCacheSize bounds the number of cached single-source searches.
const defaultCacheSize = 32

// Oracle answers distance queries for one adjacency index and caches the
// breadth-first search of each source it has seen. It is not safe for
// concurrent use.
type Oracle struct {
	idx       *adjacency.Index
	cache     map[int][]int
	cacheSize int
	log       *zap.Logger
}

// OracleOption configures an Oracle.
type OracleOption func(*Oracle)

// WithCacheSize sets how many sources are cached before the cache is dropped.
func WithCacheSize(n int) OracleOption {
	return func(o *Oracle) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) OracleOption {
	return func(o *Oracle) {
		if l != nil {
			o.log = l
		}
	}
}

// NewOracle creates an oracle over idx.
func NewOracle(idx *adjacency.Index, opts ...OracleOption) *Oracle {
	o := &Oracle{
		idx:       idx,
		cache:     make(map[int][]int),
		cacheSize: defaultCacheSize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Index returns the adjacency index the oracle answers for.
func (o *Oracle) Index() *adjacency.Index {
	return o.idx
}

// Generation returns the mesh generation of the underlying index.
func (o *Oracle) Generation() uint64 {
	return o.idx.Generation()
}

// Distance returns the hop count between two faces, or Unreachable.
func (o *Oracle) Distance(from, to int) int {
	if !o.idx.Has(from) || !o.idx.Has(to) {
		return Unreachable
	}
	if from == to {
		return 0
	}
	// The graph is undirected; reuse whichever side is already searched.
	if depth, ok := o.cache[to]; ok {
		return depth[from]
	}
	return o.from(from)[to]
}

// DistanceRef is Distance for generation-qualified refs. Refs from any
// generation other than the index's are rejected.
func (o *Oracle) DistanceRef(from, to geodesic.FaceRef) (int, error) {
	gen := o.idx.Generation()
	for _, r := range []geodesic.FaceRef{from, to} {
		if r.Generation != gen {
			return Unreachable, fmt.Errorf("%w: ref %s, index generation %d", geodesic.ErrStaleFace, r, gen)
		}
	}
	return o.Distance(from.ID, to.ID), nil
}

// Classify returns the band of every face relative to ref, indexed by face id.
// Slot 0 is BandFar. An unknown ref classifies every face as BandFar.
func (o *Oracle) Classify(ref int) []Band {
	bands := make([]Band, o.idx.Len()+1)
	depth := o.from(ref)
	for id := range bands {
		d := Unreachable
		if depth != nil {
			d = depth[id]
		}
		bands[id] = Classify(d)
	}
	return bands
}

// Reset drops all cached searches.
func (o *Oracle) Reset() {
	o.cache = make(map[int][]int)
}

func (o *Oracle) from(source int) []int {
	if depth, ok := o.cache[source]; ok {
		return depth
	}
	depth := From(source, o.idx)
	if depth == nil {
		return nil
	}
	if len(o.cache) >= o.cacheSize {
		o.log.Debug("distance cache full, dropping", zap.Int("entries", len(o.cache)))
		o.cache = make(map[int][]int, o.cacheSize)
	}
	o.cache[source] = depth
	return depth
}
