package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructureBuilders(t *testing.T) {
	s := New("Fib")
	s.Add("nFib", 193, "version").AddHex("wIdent", 0xA5EC, "magic")
	s.Sub(*New("child").Add("x", true, ""))

	it, ok := s.Item("nFib")
	assert.True(t, ok)
	assert.Equal(t, "193", it.Value)
	assert.Equal(t, "version", it.Description)

	it, ok = s.Item("wIdent")
	assert.True(t, ok)
	assert.Equal(t, "0xA5EC", it.Value)

	_, ok = s.Item("missing")
	assert.False(t, ok)

	child, ok := s.Find("child")
	assert.True(t, ok)
	assert.Equal(t, "true", child.Items[0].Value)

	_, ok = s.Find("other")
	assert.False(t, ok)
}

func TestPhysicalLen(t *testing.T) {
	p := Physical{Bytes: []byte{1, 2, 3}}
	assert.Equal(t, 3, p.Len())
}
