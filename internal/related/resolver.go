package related

import (
	"context"

	"github.com/llehouerou/upnext/internal/track"
)

// Resolver returns tracks related to the active track. Implementations never
// fail: any error degrades to an empty result.
type Resolver interface {
	Resolve(ctx context.Context, active track.Track) []track.Track
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, active track.Track) []track.Track

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, active track.Track) []track.Track {
	return f(ctx, active)
}

// Registry dispatches to the resolver registered for a track's source kind.
type Registry struct {
	resolvers map[track.SourceKind]Resolver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[track.SourceKind]Resolver)}
}

// Register sets the resolver for kind.
func (r *Registry) Register(kind track.SourceKind, res Resolver) {
	r.resolvers[kind] = res
}

// For returns the resolver for kind. Kinds without a resolver use the StreamB
// resolver; nil if that is missing too.
func (r *Registry) For(kind track.SourceKind) Resolver {
	if res, ok := r.resolvers[kind]; ok {
		return res
	}
	return r.resolvers[track.StreamB]
}

// Resolve classifies active and calls the matching resolver.
func (r *Registry) Resolve(ctx context.Context, active track.Track) []track.Track {
	res := r.For(active.Kind())
	if res == nil {
		return nil
	}
	return res.Resolve(ctx, active)
}
