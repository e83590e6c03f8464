package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/argot/internal/completion"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

func openTest(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	opts, out := testOptions(t)
	s, err := open(context.Background(), opts)
	require.NoError(t, err)
	return s, out
}

func TestWordCompleter(t *testing.T) {
	s, _ := openTest(t)
	complete := wordCompleter(func() *completion.Engine { return s.engine })

	tests := []struct {
		name        string
		line        string
		pos         int
		head        string
		completions []string
		tail        string
	}{
		{"end of line", "order ap", 8, "order ", []string{"apple", "apricot"}, ""},
		{"next word", "order ", 6, "order ", []string{"--count", "--label", "--size", "--verbose", "-c", "-v", "apple", "apricot", "banana"}, ""},
		{"inside a word", "order ap --size large", 7, "order ", []string{"apple", "apricot"}, " --size large"},
		{"command", "st", 2, "", []string{"status"}, ""},
		{"cursor past the end", "st", 10, "", []string{"status"}, ""},
		{"rune offsets", "order é", 7, "order ", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, completions, tail := complete(tt.line, tt.pos)
			assert.Equal(t, tt.head, head)
			assert.Equal(t, tt.completions, completions)
			assert.Equal(t, tt.tail, tail)
		})
	}
}

func TestEval(t *testing.T) {
	s, out := openTest(t)
	l := &live{root: s.root, engine: s.engine, s: s}

	require.NoError(t, eval(context.Background(), l, "order apple", false))
	assert.Contains(t, out.String(), "shop order")

	out.Reset()
	require.NoError(t, eval(context.Background(), l, "order -c 99 apple", true))
	assert.Contains(t, out.String(), "[validation]", "errors are printed, not returned")
}

func TestReloaded(t *testing.T) {
	s, out := openTest(t)
	root := symbol.MustCommand(symbol.CommandSpec{Name: "other"},
		symbol.MustCommand(symbol.CommandSpec{Name: "ping"}),
	)

	l := reloaded(s.opts, s, root)
	assert.Same(t, root, l.root)
	assert.Same(t, s.loader, l.s.loader)
	assert.Equal(t, s.path, l.s.path)
	assert.NotSame(t, s.root, l.s.root, "the previous session keeps its tree")

	head, completions, _ := wordCompleter(func() *completion.Engine { return l.engine })("pi", 2)
	assert.Equal(t, "", head)
	assert.Equal(t, []string{"ping"}, completions)

	require.NoError(t, eval(context.Background(), l, "ping", false))
	assert.Contains(t, out.String(), "other ping")
}
