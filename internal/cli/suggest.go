package cli

import (
	"context"

	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/render"
	"github.com/NikitaCOEUR/argot/internal/suggest"
)

// SuggestParams contains parameters for the Suggest command
type SuggestParams struct {
	Options
	Token      string
	Candidates []string // When empty, the root command's aliases are used
}

// Suggest prints the candidates close to a misspelled token
func Suggest(ctx context.Context, params SuggestParams) error {
	candidates := params.Candidates
	if len(candidates) == 0 {
		s, err := open(ctx, params.Options)
		if err != nil {
			return err
		}
		defer s.done()
		candidates = parser.Candidates(s.root)
	}

	out := render.Suggestions{
		Token:      params.Token,
		Candidates: suggest.Suggest(params.Token, candidates),
	}
	params.logger().Debug().
		Str("token", params.Token).
		Int("candidates", len(candidates)).
		Strs("matches", out.Candidates).
		Msg("Suggested corrections")

	if out.Candidates == nil {
		out.Candidates = []string{}
	}
	return render.Write(params.out(), params.Output, out)
}
