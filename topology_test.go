package chainz

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCountOut(t *testing.T) {
	tests := []struct {
		name string
		t    Topology
		want int
	}{
		{"element", Element(take(1)), 1},
		{"chain ends in element", Chain(Element(take(1)), Element(take(1))), 1},
		{"fan-in sums branches", In(Element(take(1)), Element(take(1))), 2},
		{"chain ends in fan-in", Chain(Element(take(1)), In(Element(take(1)), Element(take(1)))), 2},
		{
			"nested",
			Chain(
				Element(take(1)),
				In(
					Element(take(1)),
					Chain(Element(take(1)), In(Element(take(1)), Element(take(1)))),
				),
			),
			3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.countOut())
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("well-formed", func(t *testing.T) {
		top := Chain(Element(take(1)), In(Element(take(1)), Element(take(1))))
		assert.NoError(t, top.validate())
	})

	t.Run("collects every problem", func(t *testing.T) {
		top := Chain(Element(nil), In(), nil)
		err := top.validate()
		assert.IsError(t, err, ErrNilFn)
		assert.IsError(t, err, ErrEmptyIn)
		assert.IsError(t, err, ErrNilTopology)
	})
}
