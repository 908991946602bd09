package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sensorMeta struct {
	Base
	SensorID string
}

type humidityReading struct {
	sensorMeta
	Percent float64
}

type waterReading struct {
	*Meta
	Level float64
}

type Meta struct {
	Base
	Site string
}

type regioned interface {
	RegionName() string
}

func (r tempReading) RegionName() string { return r.Region }

func TestSupertypes(t *testing.T) {
	st := supertypes(typeOf[waterReading](), -1)
	require.Len(t, st, 2)

	assert.Equal(t, typeOf[*Meta](), st[0].t)
	assert.Equal(t, []int{0}, st[0].path)
	assert.Equal(t, 1, st[0].level)

	assert.Equal(t, typeOf[Base](), st[1].t)
	assert.Equal(t, []int{0, 0}, st[1].path)
	assert.Equal(t, 2, st[1].level)

	assert.Len(t, supertypes(typeOf[waterReading](), 1), 1)
	assert.Nil(t, supertypes(typeOf[waterReading](), 0))
}

func TestSupertypes_SkipsUnexportedEmbedding(t *testing.T) {
	assert.Empty(t, supertypes(typeOf[humidityReading](), -1))
}

func TestSupertypes_PointerEvent(t *testing.T) {
	st := supertypes(typeOf[*tempReading](), 1)
	require.Len(t, st, 1)
	assert.Equal(t, typeOf[Base](), st[0].t)
}

func TestBindingProject(t *testing.T) {
	ev := waterReading{Meta: &Meta{Base: Base{ID: "b1"}, Site: "dam"}, Level: 3}

	v, ok := Binding{Path: []int{0}}.Project(ev)
	require.True(t, ok)
	assert.Equal(t, "dam", v.(*Meta).Site)

	v, ok = Binding{Path: []int{0, 0}}.Project(&ev)
	require.True(t, ok)
	assert.Equal(t, "b1", v.(Base).ID)

	v, ok = Binding{}.Project(ev)
	require.True(t, ok)
	assert.Equal(t, ev, v)

	_, ok = Binding{Path: []int{0, 0}}.Project(waterReading{})
	assert.False(t, ok)
	_, ok = Binding{Path: []int{0}}.Project(waterReading{})
	assert.False(t, ok)
}

func TestRegistry_ResolveHierarchy(t *testing.T) {
	r := NewRegistry()
	sub := &namedSubscriber{"s"}
	rec := &recorder{}

	base := recordingDescriptor(t, sub, typeOf[Base](), rec, "base", WithPriority(PriorityHigh))
	exact := recordingDescriptor(t, sub, typeOf[tempReading](), rec, "exact")
	iface := recordingDescriptor(t, sub, typeOf[regioned](), rec, "iface", WithPriority(PriorityLow))
	for _, d := range []*HandlerDescriptor{base, exact, iface} {
		require.NoError(t, r.Add(d))
	}

	bindings := r.Resolve(typeOf[tempReading](), 1)
	require.Len(t, bindings, 3)

	assert.Same(t, base, bindings[0].Descriptor)
	assert.Equal(t, []int{0}, bindings[0].Path)
	assert.Equal(t, 1, bindings[0].Level)

	assert.Same(t, exact, bindings[1].Descriptor)
	assert.Equal(t, 0, bindings[1].Level)

	assert.Same(t, iface, bindings[2].Descriptor)
	assert.Nil(t, bindings[2].Path)
	assert.Equal(t, 1, bindings[2].Level)
}

func TestRegistry_ResolveDepthBound(t *testing.T) {
	r := NewRegistry()
	sub := &namedSubscriber{"s"}
	rec := &recorder{}
	require.NoError(t, r.Add(recordingDescriptor(t, sub, typeOf[Base](), rec, "base")))

	assert.Empty(t, r.Resolve(typeOf[waterReading](), 1))
	assert.Len(t, r.Resolve(typeOf[waterReading](), 2), 1)
	assert.Len(t, r.Resolve(typeOf[waterReading](), -1), 1)
}

func TestBus_EventInheritance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EventInheritanceDepth = -1
	b := newTestBus(t, cfg)
	sub := &namedSubscriber{"s"}

	var ids []string
	d := mustDescriptor(t, sub, typeOf[Base](), func(_ context.Context, ev any) error {
		ids = append(ids, ev.(Base).ID)
		return nil
	})
	require.NoError(t, b.Register(sub, d))

	require.NoError(t, b.Publish(context.Background(), tempReading{Base: Base{ID: "t"}}))
	require.NoError(t, b.Publish(context.Background(), waterReading{Meta: &Meta{Base: Base{ID: "w"}}}))
	// A nil embedded pointer skips the handler.
	require.NoError(t, b.Publish(context.Background(), waterReading{}))

	assert.Equal(t, []string{"t", "w"}, ids)
	assert.True(t, b.HasSubscribers(typeOf[tempReading]()))
	assert.False(t, b.HasSubscribers(typeOf[alertEvent]()))
}

func TestNewBase(t *testing.T) {
	a := NewBase()
	b := NewBase()
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "UTC", a.Timestamp.Location().String())
}
