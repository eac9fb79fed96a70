package payload

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromQuery_KeepsOrderAndFirstValue(t *testing.T) {
	m, err := FromQuery("name=A&qty=1&name=B&note=hello+world&x%20y=%2F")
	require.NoError(t, err)
	require.Equal(t, []string{"name", "qty", "note", "x y"}, m.Keys())

	v, ok := m.Get("name")
	require.True(t, ok)
	require.Equal(t, KindString, v.Kind())
	require.Equal(t, "A", v.Text())

	v, _ = m.Get("note")
	require.Equal(t, "hello world", v.Text())
	v, _ = m.Get("x y")
	require.Equal(t, "/", v.Text())
}

func TestFromQuery_EmptyAndFlagParams(t *testing.T) {
	m, err := FromQuery("")
	require.NoError(t, err)
	require.Equal(t, 0, m.Len())

	m, err = FromQuery("&&flag&=orphan&k=")
	require.NoError(t, err)
	require.Equal(t, []string{"flag", "k"}, m.Keys())
	v, _ := m.Get("flag")
	require.Equal(t, "", v.Text())
}

func TestFromQuery_BadEscape(t *testing.T) {
	_, err := FromQuery("a=%zz")
	require.Error(t, err)
}

func TestMarshal_PreservesOrder(t *testing.T) {
	m := NewMap()
	m.Set("z", String("last"))
	m.Set("a", Int(1))
	m.Set("m", Bool(true))
	m.Set("n", Null())
	nested := NewMap()
	nested.Set("k", Float(1.5))
	m.Set("obj", Object(nested))
	m.Set("arr", Array(String("x"), Int(2)))
	m.Set("z", String("replaced"))

	b, err := Marshal(m)
	require.NoError(t, err)
	require.Equal(t, `{"z":"replaced","a":1,"m":true,"n":null,"obj":{"k":1.5},"arr":["x",2]}`, string(b))
}

func TestMarshal_ThroughEncodingJSON(t *testing.T) {
	m := NewMap()
	m.Set("name", String("A"))
	b, err := json.Marshal([]*Map{m})
	require.NoError(t, err)
	require.Equal(t, `[{"name":"A"}]`, string(b))
}

func TestMarshal_Unrepresentable(t *testing.T) {
	for _, v := range []Value{Float(math.NaN()), Float(math.Inf(1)), Number("abc"), Number(""), Number(`"1"`)} {
		m := NewMap()
		m.Set("bad", v)
		_, err := Marshal(m)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrUnrepresentable), "value %q", v.Text())
	}
}

func TestMarshal_Circular(t *testing.T) {
	m := NewMap()
	m.Set("name", String("loop"))
	m.Set("self", Object(m))
	_, err := Marshal(m)
	require.ErrorIs(t, err, ErrCircular)

	// the same map twice, side by side, is not a cycle
	shared := NewMap()
	shared.Set("k", String("v"))
	ok := NewMap()
	ok.Set("a", Object(shared))
	ok.Set("b", Array(Object(shared)))
	b, err := Marshal(ok)
	require.NoError(t, err)
	require.Equal(t, `{"a":{"k":"v"},"b":[{"k":"v"}]}`, string(b))
}

func TestUnmarshal_RoundTripKeepsNumberText(t *testing.T) {
	in := `{"b":1.50,"a":{"y":[1,"two",null,false],"x":{}},"c":12345678901234567890}`
	m, err := Unmarshal([]byte(in))
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, m.Keys())

	out, err := Marshal(m)
	require.NoError(t, err)
	require.Equal(t, in, string(out))
}

func TestUnmarshal_Rejects(t *testing.T) {
	_, err := Unmarshal([]byte(`[1,2]`))
	require.ErrorIs(t, err, ErrNotObject)

	_, err = Unmarshal([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)

	_, err = Unmarshal([]byte(`{"a":`))
	require.Error(t, err)
}

func TestMerge_PatchSemantics(t *testing.T) {
	base, err := Unmarshal([]byte(`{"name":"A","qty":"1","meta":{"color":"red","size":"L"}}`))
	require.NoError(t, err)
	patch, err := Unmarshal([]byte(`{"qty":"2","meta":{"size":"XL"},"extra":true}`))
	require.NoError(t, err)

	base.Merge(patch)
	out, err := Marshal(base)
	require.NoError(t, err)
	require.Equal(t, `{"name":"A","qty":"2","meta":{"color":"red","size":"XL"},"extra":true}`, string(out))
}

func TestCloneAndDelete(t *testing.T) {
	m := NewMap()
	inner := NewMap()
	inner.Set("k", String("v"))
	m.Set("inner", Object(inner))
	m.Set("_id", String("x"))

	c := m.Clone()
	inner.Set("k", String("changed"))
	got, _ := c.Get("inner")
	v, _ := got.Map().Get("k")
	require.Equal(t, "v", v.Text())

	c.Delete("_id")
	c.Delete("missing")
	require.Equal(t, []string{"inner"}, c.Keys())
	require.Equal(t, 2, m.Len())
}

func TestZeroMapIsUsable(t *testing.T) {
	var m Map
	m.Set("a", String("b"))
	b, err := Marshal(&m)
	require.NoError(t, err)
	require.Equal(t, `{"a":"b"}`, string(b))
}
