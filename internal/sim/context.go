package sim

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/geosphere/internal/adjacency"
	"github.com/Faultbox/geosphere/internal/distance"
	"github.com/Faultbox/geosphere/internal/geodesic"
	"github.com/Faultbox/geosphere/internal/navigator"
	gmath "github.com/Faultbox/geosphere/pkg/math"
)

// Rebuild errors.
var (
	// ErrNoWorld is returned by Step before the first successful rebuild.
	ErrNoWorld = errors.New("sim: no world built yet")
	// ErrSuperseded is returned for a build that finished after a later
	// request had already published its world.
	ErrSuperseded = errors.New("sim: rebuild superseded by a later request")
)

// Intent is the agent's movement request for one tick.
type Intent struct {
	Speed    float64
	TurnRate float64
}

// Frame is the result of one Step: what the renderer draws this tick.
type Frame struct {
	Generation uint64
	Agent      navigator.Transform
	// Bands holds the distance band of every face from the agent's face,
	// indexed by face id. Nil when the agent has no face.
	Bands []distance.Band
}

// Options configures a Context.
type Options struct {
	MaxLevel  int
	Adjacency []adjacency.Option
	Navigator []navigator.Option
	Logger    *zap.Logger
}

// Context is the simulation state for one sphere and one agent.
//
// Step, Distance, Rotate and SetOrientation must be called from a single
// goroutine.
// Rebuild and RebuildAsync may run anywhere; a new world becomes visible to
// Step atomically and the previous one stays valid until then.
type Context struct {
	builder     *geodesic.Builder
	adjOpts     []adjacency.Option
	world       atomic.Pointer[World]
	attached    uint64 // generation the navigator is using
	nav         *navigator.Navigator
	orientation gmath.Quat
	group       singleflight.Group
	log         *zap.Logger

	mu        sync.Mutex
	requests  uint64 // request ticket, bumped when the requested level changes
	requested int    // level of the latest request
}

// New creates a context for the agent. No world exists until Rebuild.
func New(agent navigator.AgentState, opts Options) *Context {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	adjOpts := append([]adjacency.Option{adjacency.WithLogger(log.Named("adjacency"))}, opts.Adjacency...)
	navOpts := append([]navigator.Option{navigator.WithLogger(log.Named("navigator"))}, opts.Navigator...)

	return &Context{
		builder:     geodesic.NewBuilder(opts.MaxLevel, geodesic.WithLogger(log.Named("geodesic"))),
		adjOpts:     adjOpts,
		nav:         navigator.New(agent, navOpts...),
		orientation: gmath.QuatIdentity(),
		log:         log,
	}
}

// World returns the current world, or nil before the first rebuild.
func (c *Context) World() *World {
	return c.world.Load()
}

// Agent returns the agent state after the last step.
func (c *Context) Agent() navigator.AgentState {
	return c.nav.State()
}

// Orientation returns the sphere's current orientation.
func (c *Context) Orientation() gmath.Quat {
	return c.orientation
}

// Rotate composes an incremental rotation onto the sphere's orientation.
func (c *Context) Rotate(delta gmath.Quat) {
	c.orientation = delta.Mul(c.orientation).Normalize()
}

// SetOrientation replaces the sphere's orientation.
func (c *Context) SetOrientation(q gmath.Quat) {
	c.orientation = q.Normalize()
}

// Rebuild builds and publishes the world for level. On error the current
// world is kept. Back-to-back requests for the same level share one build;
// a request for another level in between starts a fresh one, and the world
// of the latest request wins.
func (c *Context) Rebuild(level int) (*World, error) {
	key, fn := c.request(level)
	v, err, shared := c.group.Do(key, fn)
	if err != nil {
		c.log.Warn("rebuild failed", zap.Int("level", level), zap.Error(err))
		return nil, err
	}
	if shared {
		c.log.Debug("rebuild shared with a concurrent request", zap.String("key", key))
	}
	return v.(*World), nil
}

// RebuildAsync rebuilds on a background goroutine. The returned channel
// receives the result once and is then closed. Cancelling ctx abandons the
// wait, not the build; a finished build is still published.
func (c *Context) RebuildAsync(ctx context.Context, level int) <-chan error {
	key, fn := c.request(level)
	results := c.group.DoChan(key, fn)

	done := make(chan error, 1)
	go func() {
		defer close(done)
		select {
		case res := <-results:
			if res.Err != nil {
				c.log.Warn("background rebuild failed", zap.Int("level", level), zap.Error(res.Err))
			}
			done <- res.Err
		case <-ctx.Done():
			done <- ctx.Err()
		}
	}()
	return done
}

// request takes a ticket for level and returns the singleflight key and
// build function for it. Only requests between which no other level was
// asked for share a key.
func (c *Context) request(level int) (string, func() (any, error)) {
	c.mu.Lock()
	if c.requests == 0 || level != c.requested {
		c.requests++
		c.requested = level
	}
	ticket := c.requests
	c.mu.Unlock()

	key := strconv.Itoa(level) + "@" + strconv.FormatUint(ticket, 10)
	return key, func() (any, error) {
		w, err := buildWorld(c.builder, level, c.adjOpts, c.log)
		if err != nil {
			return nil, err
		}
		w.request = ticket
		if !c.publish(w) {
			return nil, fmt.Errorf("%w: level %d, request %d", ErrSuperseded, level, ticket)
		}
		return w, nil
	}
}

// publish installs w unless the installed world belongs to a later request
// or is a later build of the same one. It reports whether w was installed.
func (c *Context) publish(w *World) bool {
	for {
		old := c.world.Load()
		if old != nil && old.supersedes(w) {
			c.log.Debug("discarding superseded world",
				zap.Uint64("generation", w.Generation()),
				zap.Uint64("current", old.Generation()))
			return false
		}
		if c.world.CompareAndSwap(old, w) {
			return true
		}
	}
}

// Step advances the agent by dt seconds against the current world.
func (c *Context) Step(in Intent, dt float64) (Frame, error) {
	w := c.world.Load()
	if w == nil {
		return Frame{}, ErrNoWorld
	}

	if w.Generation() != c.attached {
		c.nav.SetMesh(w.Mesh)
		c.attached = w.Generation()
	}

	tr, err := c.nav.Tick(navigator.Input{
		Speed:       in.Speed,
		TurnRate:    in.TurnRate,
		DT:          dt,
		Orientation: c.orientation,
	})

	frame := Frame{Generation: w.Generation(), Agent: tr}
	if err != nil {
		return frame, err
	}

	// The face was just located on this world's mesh.
	frame.Bands = w.Oracle.Classify(tr.Face.ID)
	return frame, nil
}

// Distance answers a generation-checked distance query on the current world.
func (c *Context) Distance(from, to geodesic.FaceRef) (int, error) {
	w := c.world.Load()
	if w == nil {
		return distance.Unreachable, ErrNoWorld
	}
	return w.Oracle.DistanceRef(from, to)
}
