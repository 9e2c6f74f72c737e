package catalog

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"
)

// LatestProducts returns the newest products of each requested type,
// concatenated in request order. When prioritize is one of tags, its products
// are moved to the front. Unknown tags are skipped.
func (s *Service) LatestProducts(ctx context.Context, tags []TypeTag, prioritize TypeTag) ([]Variant, error) {
	perTag := make([][]Variant, len(tags))

	g, ctx := errgroup.WithContext(ctx)
	for i, tag := range tags {
		g.Go(func() error {
			vs, err := s.repo.ListLatest(ctx, tag, latestPerType)
			if errors.Is(err, ErrUnknownType) {
				return nil
			}
			if err != nil {
				return err
			}
			perTag[i] = vs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []Variant{}
	for _, vs := range perTag {
		out = append(out, vs...)
	}
	if prioritize != "" && slices.Contains(tags, prioritize) {
		prioritizeType(out, prioritize)
	}
	return out, nil
}

// latestPerType is how many products of each type LatestProducts returns.
const latestPerType = 5

// prioritizeType moves products of tag to the front, keeping relative order otherwise.
func prioritizeType(vs []Variant, tag TypeTag) {
	rank := func(v Variant) int {
		if v.Base().Type == tag {
			return 0
		}
		return 1
	}
	slices.SortStableFunc(vs, func(a, b Variant) int { return cmp.Compare(rank(a), rank(b)) })
}
