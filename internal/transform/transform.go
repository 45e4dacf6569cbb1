package transform

import (
	"errors"
	"fmt"
	"slices"

	"augment/internal/media"
)

var ErrNotApplicable = errors.New("transform: value kind not applicable")

// Params are the parameters a transform resolved for one sample.
type Params map[string]any

// Transform is a stateless-per-call conversion of media values.
type Transform interface {
	Name() string
	// Applies reports whether the transform handles values of v's kind.
	// Values it does not handle pass through Run and Forward untouched.
	Applies(v media.Value) bool
	Params(sample []media.Value) Params
	Apply(v media.Value, p Params) (media.Value, error)
}

// Run applies t to a single value.
func Run(t Transform, v media.Value) (media.Value, error) {
	out, err := Forward(t, v)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Forward resolves parameters once for the sample and applies t to each
// applicable value. The returned slice lines up with sample.
func Forward(t Transform, sample ...media.Value) ([]media.Value, error) {
	params := t.Params(sample)
	out := make([]media.Value, len(sample))
	for i, v := range sample {
		if !t.Applies(v) {
			out[i] = v
			continue
		}
		r, err := t.Apply(v, params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
		out[i] = r
	}
	return out, nil
}

type kinds []media.Kind

func (k kinds) has(v media.Value) bool {
	return v != nil && slices.Contains(k, v.Kind())
}

func notApplicable(t Transform, v media.Value) error {
	return fmt.Errorf("%w: %s does not handle %T", ErrNotApplicable, t.Name(), v)
}
