package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromMajor_RoundsToNearestPaisa(t *testing.T) {
	require.Equal(t, Amount(5000), FromMajor(50))
	require.Equal(t, Amount(4990), FromMajor(49.9))
	require.Equal(t, Amount(13), FromMajor(0.125))
	require.Equal(t, Amount(-13), FromMajor(-0.125))
}

func TestParseMajor(t *testing.T) {
	a, ok := ParseMajor(" 12.5 ")
	require.True(t, ok)
	require.Equal(t, Amount(1250), a)

	_, ok = ParseMajor("twelve")
	require.False(t, ok)
	_, ok = ParseMajor("")
	require.False(t, ok)
}

func TestAmount_Rendering(t *testing.T) {
	require.Equal(t, "100", Amount(10000).String())
	require.Equal(t, "100.5", Amount(10050).String())
	require.Equal(t, "100.50", Amount(10050).Fixed())
	require.Equal(t, "-0.05", Amount(-5).Fixed())

	raw, err := json.Marshal(struct {
		Total Amount `json:"total"`
	}{Total: Amount(10000)})
	require.NoError(t, err)
	require.JSONEq(t, `{"total":100}`, string(raw))
}

func TestAmount_UnmarshalJSONAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":49.9,"b":"12"}`), &v))
	require.Equal(t, Amount(4990), v.A)
	require.Equal(t, Amount(1200), v.B)

	require.Error(t, json.Unmarshal([]byte(`{"a":"n/a"}`), &v))
}
