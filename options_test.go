package chainz

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestOpts_Values(t *testing.T) {
	opts := Opts{
		TagValue("route", "a"),
		Tag("route"),
		TagValue("other", 1),
		TagValue("route", "b"),
	}

	vals := opts.Values("route")
	assert.Equal(t, 2, len(vals))
	assert.Equal(t, "a", vals[0].(string))
	assert.Equal(t, "b", vals[1].(string))

	assert.Zero(t, opts.Values("missing"))
}

func TestOpts_Value(t *testing.T) {
	opts := Opts{Tag("flag"), TagValue("k", "v1"), TagValue("k", "v2")}

	v, ok := opts.Value("k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v.(string))

	// A bare tag has no value.
	_, ok = opts.Value("flag")
	assert.False(t, ok)
	assert.True(t, opts.Has("flag"))
	assert.False(t, opts.Has("missing"))
}

func TestOpts_WithNext(t *testing.T) {
	w := newWorker(NullLogger(), false)
	opts := Opts{Tag("flag")}.withNext([]*Worker{w})

	assert.Equal(t, 2, len(opts))
	assert.Equal(t, Next, opts[0].Tag)
	assert.Equal(t, 1, len(opts[0].Value.([]*Worker)))
	assert.Equal(t, "flag", opts[1].Tag)
}
