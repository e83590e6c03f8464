package symbol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/argot/internal/derrors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"--dry-run", "--dry-run"},
		{"--dryRun", "--dry-run"},
		{"--DRY_RUN", "--dry-run"},
		{"--Dry-Run", "--dry-run"},
		{"-x", "-x"},
		{"/Help", "/help"},
		{"verb", "verb"},
		{"Verb", "verb"},
		{"--level2Cache", "--level2-cache"},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.alias))
		})
	}
}

func TestResolve_AliasVariants(t *testing.T) {
	dry := MustOption(OptionSpec{Name: "--dry-run", Aliases: []string{"-n"}, Type: TypeBool})
	verb := MustCommand(CommandSpec{Name: "verb"})
	root := MustCommand(CommandSpec{Name: "app"}, dry, verb)

	for _, variant := range []string{"--dry-run", "--dryRun", "--DRY_RUN", "--Dry-Run", "-n"} {
		assert.Same(t, dry, root.Resolve(variant), variant)
	}
	assert.Same(t, verb, root.Resolve("VERB"))
	assert.Nil(t, root.Resolve("--missing"))
	assert.Nil(t, dry.Resolve("--dry-run"), "options have no children")
}

func TestAliasValidation(t *testing.T) {
	tests := []struct {
		name  string
		alias string
	}{
		{"empty", ""},
		{"whitespace", "--a b"},
		{"single dash", "-"},
		{"double dash", "--"},
		{"slash", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOption(OptionSpec{Name: tt.alias})
			require.Error(t, err)
			assert.True(t, derrors.IsGrammarError(err))

			o := MustOption(OptionSpec{Name: "--ok"})
			err = o.AddAlias(tt.alias)
			require.Error(t, err)
			assert.True(t, derrors.IsGrammarError(err))
		})
	}
}

func TestAdd_SiblingCollisions(t *testing.T) {
	root := MustCommand(CommandSpec{Name: "app"},
		MustOption(OptionSpec{Name: "--dry-run"}),
	)

	err := root.Add(MustOption(OptionSpec{Name: "--dryRun"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")

	err = root.Add(MustCommand(CommandSpec{Name: "build", Aliases: []string{"--dry-run"}}))
	require.Error(t, err, "options and subcommands share one namespace")

	other := MustOption(OptionSpec{Name: "--other"})
	require.NoError(t, root.Add(other))
	err = other.AddAlias("--DRY_RUN")
	require.Error(t, err, "aliases added after attachment are checked against siblings")
	assert.Same(t, other, root.Resolve("--other"))

	require.NoError(t, other.AddAlias("-o"))
	assert.Same(t, other, root.Resolve("-o"))
}

func TestAdd_DuplicateOwnAlias(t *testing.T) {
	_, err := NewOption(OptionSpec{Name: "--name", Aliases: []string{"--NAME"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestAdd_StructuralErrors(t *testing.T) {
	t.Run("arity inversion", func(t *testing.T) {
		_, err := NewOption(OptionSpec{Name: "--x", List: true, Arity: &Arity{Min: 3, Max: 1}})
		require.Error(t, err)
		assert.True(t, derrors.IsGrammarError(err))
	})

	t.Run("negative arity", func(t *testing.T) {
		_, err := NewArgument(ArgumentSpec{Name: "a", Arity: &Arity{Min: -1, Max: 1}})
		require.Error(t, err)
	})

	t.Run("scalar with multi-value arity", func(t *testing.T) {
		_, err := NewOption(OptionSpec{Name: "--x", Arity: &Arity{Min: 1, Max: 2}})
		require.Error(t, err)
	})

	t.Run("argument after unbounded argument", func(t *testing.T) {
		root := MustCommand(CommandSpec{Name: "app"},
			MustArgument(ArgumentSpec{Name: "files", List: true}),
		)
		err := root.Add(MustArgument(ArgumentSpec{Name: "dest"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unbounded")
	})

	t.Run("child of an option", func(t *testing.T) {
		o := MustOption(OptionSpec{Name: "--x"})
		err := o.Add(MustOption(OptionSpec{Name: "--y"}))
		require.Error(t, err)
	})

	t.Run("child with two parents", func(t *testing.T) {
		o := MustOption(OptionSpec{Name: "--x"})
		MustCommand(CommandSpec{Name: "a"}, o)
		err := MustCommand(CommandSpec{Name: "b"}).Add(o)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already belongs")
	})

	t.Run("typed add rejects other kinds", func(t *testing.T) {
		root := MustCommand(CommandSpec{Name: "app"})
		assert.Error(t, root.AddOption(MustArgument(ArgumentSpec{Name: "a"})))
		assert.Error(t, root.AddArgument(MustOption(OptionSpec{Name: "--a"})))
		assert.Error(t, root.AddCommand(MustOption(OptionSpec{Name: "--b"})))
		assert.Error(t, root.AddDirective(MustCommand(CommandSpec{Name: "c"})))
	})

	t.Run("must helpers panic", func(t *testing.T) {
		assert.Panics(t, func() { MustOption(OptionSpec{Name: "--"}) })
	})
}

func TestDefaultArities(t *testing.T) {
	tests := []struct {
		name string
		sym  *Symbol
		want Arity
	}{
		{"bool option", MustOption(OptionSpec{Name: "--v", Type: TypeBool}), ArityZeroOrOne},
		{"scalar option", MustOption(OptionSpec{Name: "--n", Type: TypeInt}), ArityExactlyOne},
		{"list option", MustOption(OptionSpec{Name: "--tag", List: true}), ArityOneOrMore},
		{"scalar argument", MustArgument(ArgumentSpec{Name: "src"}), ArityExactlyOne},
		{"list argument", MustArgument(ArgumentSpec{Name: "rest", List: true}), ArityZeroOrMore},
		{"command", MustCommand(CommandSpec{Name: "c"}), ArityZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sym.Arity())
		})
	}
}

func TestChildren_DeclarationOrder(t *testing.T) {
	a := MustOption(OptionSpec{Name: "--a"})
	b := MustArgument(ArgumentSpec{Name: "b"})
	c := MustCommand(CommandSpec{Name: "c"})
	d := MustDirective("d", "")
	root := MustCommand(CommandSpec{Name: "app"}, a, b, c, d)

	assert.Equal(t, []*Symbol{a, b, c, d}, root.Children())
	assert.Equal(t, []*Symbol{a}, root.Options())
	assert.Equal(t, []*Symbol{b}, root.Arguments())
	assert.Equal(t, []*Symbol{c}, root.Subcommands())
	assert.Equal(t, []*Symbol{d}, root.Directives())
	assert.Same(t, d, root.ResolveDirective("D"))
	assert.Same(t, root, c.Parent())
	assert.Equal(t, "app c", c.Path())
}

func TestScope_RecursiveOptions(t *testing.T) {
	verbose := MustOption(OptionSpec{Name: "--verbose", Type: TypeBool, Recursive: true})
	local := MustOption(OptionSpec{Name: "--local"})
	leaf := MustCommand(CommandSpec{Name: "leaf"})
	mid := MustCommand(CommandSpec{Name: "mid"}, leaf)
	MustCommand(CommandSpec{Name: "app"}, verbose, local, mid)

	assert.Same(t, verbose, leaf.ResolveInScope("--verbose"))
	assert.Nil(t, leaf.ResolveInScope("--local"), "non-recursive options stay local")
	assert.Equal(t, []*Symbol{verbose}, leaf.ScopeOptions())
}

func TestCommandFlags(t *testing.T) {
	strict := MustCommand(CommandSpec{Name: "strict"})
	lax := MustCommand(CommandSpec{Name: "lax", AllowUnmatchedTokens: true, SubcommandRequired: true})

	assert.True(t, strict.TreatUnmatchedTokensAsErrors())
	assert.False(t, lax.TreatUnmatchedTokensAsErrors())
	assert.True(t, lax.SubcommandRequired())
	assert.False(t, MustOption(OptionSpec{Name: "--x"}).TreatUnmatchedTokensAsErrors())
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		sym     *Symbol
		texts   []string
		want    any
		wantErr string
	}{
		{"int scalar", MustOption(OptionSpec{Name: "-x", Type: TypeInt}), []string{"123"}, 123, ""},
		{"negative int", MustOption(OptionSpec{Name: "-x", Type: TypeInt}), []string{"-5"}, -5, ""},
		{"bad int", MustOption(OptionSpec{Name: "-x", Type: TypeInt}), []string{"abc"}, nil, "cannot parse argument \"abc\""},
		{"bool flag without value", MustOption(OptionSpec{Name: "-v", Type: TypeBool}), nil, true, ""},
		{"bool explicit false", MustOption(OptionSpec{Name: "-v", Type: TypeBool}), []string{"false"}, false, ""},
		{"duration", MustOption(OptionSpec{Name: "--wait", Type: TypeDuration}), []string{"1m30s"}, 90 * time.Second, ""},
		{"float list", MustOption(OptionSpec{Name: "--f", Type: TypeFloat, List: true}), []string{"1.5", "2"}, []float64{1.5, 2}, ""},
		{"string list", MustArgument(ArgumentSpec{Name: "files", List: true}), []string{"a", "b"}, []string{"a", "b"}, ""},
		{"empty string list", MustArgument(ArgumentSpec{Name: "files", List: true}), nil, []string{}, ""},
		{"accept only", MustOption(OptionSpec{Name: "--color", AcceptOnlyFrom: []string{"red", "blue"}}), []string{"red"}, "red", ""},
		{"accept only rejects", MustOption(OptionSpec{Name: "--color", AcceptOnlyFrom: []string{"red", "blue"}}), []string{"green"}, nil, "must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sym.Convert(tt.texts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueType_Coerce(t *testing.T) {
	v, err := TypeInt.Coerce(int64(7))
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = TypeInt.Coerce(float64(3))
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = TypeInt.Coerce(3.5)
	assert.Error(t, err)

	v, err = TypeFloat.Coerce("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	v, err = TypeString.Coerce(42)
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	_, err = TypeBool.Coerce(1)
	assert.Error(t, err)
}

func TestCoerceValue_List(t *testing.T) {
	tags := MustOption(OptionSpec{Name: "--n", Type: TypeInt, List: true})

	v, err := tags.CoerceValue([]any{int64(1), "2"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)

	v, err = tags.CoerceValue(5)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, v)
}

func TestParseValueType(t *testing.T) {
	for name, want := range map[string]ValueType{
		"":         TypeString,
		"Boolean":  TypeBool,
		"integer":  TypeInt,
		"number":   TypeFloat,
		"duration": TypeDuration,
	} {
		got, err := ParseValueType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseValueType("complex")
	assert.Error(t, err)
}

func TestArityString(t *testing.T) {
	assert.Equal(t, "1", ArityExactlyOne.String())
	assert.Equal(t, "0..1", ArityZeroOrOne.String())
	assert.Equal(t, "1..*", ArityOneOrMore.String())
}
