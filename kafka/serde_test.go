package kafka

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestStringEncoder(t *testing.T) {
	b, err := StringEncoder("hello")
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	b, err = StringEncoder([]byte{1, 2})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(b))

	_, err = StringEncoder(struct{}{})
	assert.IsError(t, err, ErrNotEncodable)
}

func TestJSONRoundTrip(t *testing.T) {
	type event struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	b, err := JSONEncoder(event{Name: "a", Count: 2})
	assert.NoError(t, err)

	dec := JSONDecoder[event]()
	v, err := dec(b)
	assert.NoError(t, err)
	assert.Equal(t, event{Name: "a", Count: 2}, v.(event))

	_, err = dec([]byte("not json"))
	assert.Error(t, err)
}

func TestStringDecoder(t *testing.T) {
	v, err := StringDecoder([]byte("x"))
	assert.NoError(t, err)
	assert.Equal(t, "x", v.(string))
}
