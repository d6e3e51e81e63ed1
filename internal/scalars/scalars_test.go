package scalars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONSerialize(t *testing.T) {
	serialize := JSON().Serialize

	assert.Nil(t, serialize(nil))

	parsed := serialize(`{"a":1,"b":[true]}`)
	assert.Equal(t, map[string]interface{}{"a": float64(1), "b": []interface{}{true}}, parsed)

	parsed = serialize([]byte(`["x","y"]`))
	assert.Equal(t, []interface{}{"x", "y"}, parsed)

	// Malformed stored JSON degrades to the raw string.
	assert.Equal(t, "{not json", serialize("{not json"))

	// Structured values pass through untouched.
	structured := map[string]interface{}{"k": "v"}
	assert.Equal(t, structured, serialize(structured))
}

func TestStringList(t *testing.T) {
	assert.Nil(t, StringList(nil))
	assert.Equal(t, []string{"a", "b"}, StringList(`["a","b"]`))
	assert.Equal(t, []string{"a", "b"}, StringList([]byte(`["a","b"]`)))
	assert.Equal(t, []string{"a"}, StringList([]string{"a"}))

	// Non-string elements are stringified.
	assert.Equal(t, []string{"1", "true", "x"}, StringList(`[1,true,"x"]`))

	// Malformed lists degrade to empty, never error.
	assert.Equal(t, []string{}, StringList("not a list"))
}

func TestBigIntSerialize(t *testing.T) {
	serialize := BigInt().Serialize

	assert.Equal(t, "9007199254740993", serialize(int64(9007199254740993)))
	assert.Equal(t, "42", serialize(42))
	assert.Equal(t, "42", serialize("42"))
	assert.Equal(t, "42", serialize([]byte("42")))
	assert.Nil(t, serialize("not a number"))
	assert.Nil(t, serialize(3.5))
}

func TestBigIntParseValue(t *testing.T) {
	parse := BigInt().ParseValue

	assert.Equal(t, int64(7), parse("7"))
	assert.Equal(t, int64(7), parse(float64(7)))
	assert.Nil(t, parse(7.5))
	assert.Nil(t, parse("abc"))
}
