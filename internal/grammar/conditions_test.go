package grammar

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/argot/internal/condition"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

func TestParseCondition(t *testing.T) {
	owner := symbol.MustOption(symbol.OptionSpec{Name: "--name"})
	symbol.MustCommand(symbol.CommandSpec{Name: "x"}, owner)

	tests := []struct {
		name    string
		decl    *ConditionDecl
		want    string
		wantErr string
	}{
		{"nil", nil, "", "conditions is nil"},
		{"empty", &ConditionDecl{}, "", "at least one condition"},
		{"single case", &ConditionDecl{Case: "lower"}, "case", ""},
		{"range and case", &ConditionDecl{Case: "lower", Range: &RangeDecl{}}, "all", ""},
		{"all", &ConditionDecl{All: []ConditionDecl{{Case: "lower"}, {Case: "upper"}}}, "all", ""},
		{"any", &ConditionDecl{Any: []ConditionDecl{{Case: "lower"}, {Case: "upper"}}}, "any", ""},
		{"mixed", &ConditionDecl{Case: "lower", All: []ConditionDecl{{Case: "upper"}}}, "", "cannot mix"},
		{"all and any", &ConditionDecl{All: []ConditionDecl{{Case: "upper"}}, Any: []ConditionDecl{{Case: "lower"}}}, "", "both 'all' and 'any'"},
		{"nested error", &ConditionDecl{Any: []ConditionDecl{{Case: "upper"}, {}}}, "", "any[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := parseCondition(tt.decl, owner)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cond.TraitName())
		})
	}
}

func TestParseCondition_AtomicOrder(t *testing.T) {
	owner := symbol.MustOption(symbol.OptionSpec{Name: "--name"})
	symbol.MustCommand(symbol.CommandSpec{Name: "x"}, owner)

	cond, err := parseCondition(&ConditionDecl{Case: "upper", Range: &RangeDecl{Lower: &SourceDecl{Value: "A"}}}, owner)
	require.NoError(t, err)

	all, ok := cond.(condition.AllCondition)
	require.True(t, ok)
	require.Len(t, all.Conditions, 2)
	assert.Equal(t, "range", all.Conditions[0].TraitName())
	assert.Equal(t, "case", all.Conditions[1].TraitName())
}

func TestBuildSource(t *testing.T) {
	owner := symbol.MustOption(symbol.OptionSpec{Name: "--a", Type: symbol.TypeInt})
	other := symbol.MustOption(symbol.OptionSpec{Name: "--b", Type: symbol.TypeInt})
	arg := symbol.MustArgument(symbol.ArgumentSpec{Name: "file"})
	sub := symbol.MustCommand(symbol.CommandSpec{Name: "sub"}, owner)
	symbol.MustCommand(symbol.CommandSpec{Name: "root"}, other, arg, sub)

	tests := []struct {
		name    string
		decl    *SourceDecl
		want    string
		wantErr string
	}{
		{"nil", nil, "", ""},
		{"literal", &SourceDecl{Value: 3}, "literal(3)", ""},
		{"env", &SourceDecl{Env: "A"}, "env(A)", ""},
		{"ref to an ancestor option", &SourceDecl{Ref: "--b"}, "ref(--b)", ""},
		{"ref to an ancestor argument", &SourceDecl{Ref: "file"}, "ref(file)", ""},
		{"template", &SourceDecl{Template: "{{ 1 }}"}, "computed(--a)", ""},
		{"fallback is ordered", &SourceDecl{Fallback: []SourceDecl{{Env: "A"}, {Value: 1}}}, "fallback(literal(1), env(A))", ""},
		{"self reference", &SourceDecl{Ref: "--a"}, "", "refers to itself"},
		{"unknown ref", &SourceDecl{Ref: "--zzz"}, "", "no such option"},
		{"two fields", &SourceDecl{Value: 1, Env: "A"}, "", "exactly one"},
		{"nothing set", &SourceDecl{}, "", "exactly one"},
		{"bad template", &SourceDecl{Template: "{{ nope }}"}, "", "template"},
		{"nested error", &SourceDecl{Fallback: []SourceDecl{{Value: 1}, {Ref: "--zzz"}}}, "", "fallback[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := buildSource(tt.decl, owner)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, src)
				return
			}
			assert.Equal(t, tt.want, src.String())
		})
	}
}

func TestLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "argot.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: before\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trees := make(chan *symbol.Symbol, 4)
	done := make(chan error, 1)
	l := NewLoader(nil)
	go func() {
		done <- l.Watch(ctx, path, 20*time.Millisecond, func(root *symbol.Symbol, err error) {
			if err == nil {
				trees <- root
			}
		})
	}()

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("name: after\n"), 0644))

	select {
	case root := <-trees:
		assert.Equal(t, "after", root.Name())
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the grammar changed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
