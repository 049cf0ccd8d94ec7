package related

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/upnext/internal/track"
)

func named(name string) Resolver {
	return ResolverFunc(func(context.Context, track.Track) []track.Track {
		return []track.Track{{ID: name}}
	})
}

func TestRegistry_DispatchesByKind(t *testing.T) {
	reg := NewRegistry()
	reg.Register(track.StreamA, named("a"))
	reg.Register(track.StreamB, named("b"))

	gotA := reg.Resolve(context.Background(), track.Track{SourceURL: "https://youtu.be/xyz"})
	gotB := reg.Resolve(context.Background(), track.Track{SourceURL: "https://cdn/x.mp4"})
	gotDefault := reg.Resolve(context.Background(), track.Track{SourceURL: "%%%"})

	assert.Equal(t, "a", gotA[0].ID)
	assert.Equal(t, "b", gotB[0].ID)
	assert.Equal(t, "b", gotDefault[0].ID)
}

func TestRegistry_FallsBackToStreamB(t *testing.T) {
	reg := NewRegistry()
	reg.Register(track.StreamB, named("b"))

	got := reg.Resolve(context.Background(), track.Track{SourceURL: "https://youtu.be/xyz"})

	assert.Equal(t, "b", got[0].ID)
}

func TestRegistry_Empty(t *testing.T) {
	reg := NewRegistry()

	assert.Nil(t, reg.For(track.StreamA))
	assert.Nil(t, reg.Resolve(context.Background(), track.Track{ID: "x"}))
}
