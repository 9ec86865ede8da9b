package suites

import (
	"context"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/schema"
)

// Venues — публичный каталог заведений и рилсов, токен не нужен.
func Venues(opts Options) scenario.Suite {
	s := &venuesSuite{opts: opts}
	return scenario.Suite{
		Name:        NameVenues,
		Description: "каталог заведений и рилсов",
		Steps: []scenario.Step{
			{Name: "list", Description: "список заведений", Run: s.list},
			{Name: "get", Description: "заведение по id", Requires: []string{scenario.KeyVenueID}, Run: s.get},
			{Name: "reels", Description: "лента рилсов", Run: s.reels},
		},
	}
}

type venuesSuite struct {
	opts Options
}

func (s *venuesSuite) list(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.ListVenues(ctx)
	if out, ok := expectJSON(resp, err, schema.VenueList); !ok {
		return out
	}
	var venues []loopync.Venue
	if err := resp.Decode(&venues); err != nil {
		return decodeFailed(err)
	}
	if len(venues) == 0 {
		return scenario.Fail("каталог заведений пуст")
	}
	env.State.Set(scenario.KeyVenueID, venues[0].ID)
	return scenario.Pass("%d заведений", len(venues))
}

func (s *venuesSuite) get(ctx context.Context, env *scenario.Env) scenario.Outcome {
	venueID := env.State.String(scenario.KeyVenueID)
	resp, err := s.opts.Client.GetVenue(ctx, venueID)
	if out, ok := expectJSON(resp, err, schema.Venue); !ok {
		return out
	}
	venue, err := loopync.DecodeAs[loopync.Venue](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if venue.ID != venueID {
		return scenario.Fail("вернулось заведение %s", venue.ID)
	}
	return scenario.Pass("%s, рейтинг %.1f, позиций меню %d", venue.Name, venue.Rating, len(venue.MenuItems))
}

func (s *venuesSuite) reels(ctx context.Context, _ *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.ListReels(ctx)
	if out, ok := expectJSON(resp, err, schema.ReelList); !ok {
		return out
	}
	var reels []loopync.Reel
	if err := resp.Decode(&reels); err != nil {
		return decodeFailed(err)
	}
	if len(reels) == 0 {
		return scenario.Fail("лента рилсов пуста")
	}
	return scenario.Pass("%d рилсов", len(reels))
}
