package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownTable(t *testing.T) {
	table := NewMarkdownTable("Key", "Summary")
	table.AddRow("PROJ-1", "Fix a|b")
	table.AddRow("PROJ-2")
	table.AddRow("PROJ-3", "multi\nline", "dropped")

	want := "| Key | Summary |\n" +
		"|---|---|\n" +
		"| PROJ-1 | Fix a\\|b |\n" +
		"| PROJ-2 |  |\n" +
		"| PROJ-3 | multi line |\n"
	assert.Equal(t, want, table.String())
	assert.Equal(t, 3, table.Len())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "äöü…", Truncate("äöüßxyz", 4))
	assert.Equal(t, "a b", Truncate("a\n  b", 10))
	assert.Equal(t, "abcdefgh", Truncate("abcdefgh", 0))
}

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Update("b", func(v int) int { return v + 10 })
	m.Update("c", func(v int) int { return v + 5 })

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	assert.Equal(t, []int{11, 2, 5}, m.Values())
	assert.Equal(t, 3, m.Len())

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = m.Get("zzz")
	assert.False(t, ok)
}
