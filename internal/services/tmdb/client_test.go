package tmdb

import "testing"

func TestPickBestTypeMustMatch(t *testing.T) {
	items := []searchItem{
		{ID: 1, MediaType: "movie", Title: "Dark", ReleaseDate: "2005-01-01"},
		{ID: 2, MediaType: "tv", Name: "Dark", FirstAirDate: "2017-12-01"},
	}

	// A season token in the source implies a series.
	best := pickBest("Dark", 0, true, items)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected the tv candidate, got %+v", best)
	}

	best = pickBest("Dark", 0, false, items)
	if best == nil || best.ID != 1 {
		t.Fatalf("expected the movie candidate, got %+v", best)
	}
}

func TestPickBestSimilarityThreshold(t *testing.T) {
	items := []searchItem{
		{ID: 1, MediaType: "movie", Title: "A Completely Different Film"},
	}

	if best := pickBest("The Matrix", 0, false, items); best != nil {
		t.Fatalf("candidate below similarity threshold accepted: %+v", best)
	}
}

func TestPickBestPrefersExactYear(t *testing.T) {
	items := []searchItem{
		{ID: 1, MediaType: "movie", Title: "The Matrix", ReleaseDate: "2021-12-22"}, // Resurrections remake year
		{ID: 2, MediaType: "movie", Title: "The Matrix", ReleaseDate: "1999-03-31"},
	}

	best := pickBest("The Matrix", 1999, false, items)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected the 1999 candidate, got %+v", best)
	}
}

func TestPickBestHighestSimilarityWins(t *testing.T) {
	items := []searchItem{
		{ID: 1, MediaType: "movie", Title: "The Matrix Reloaded"},
		{ID: 2, MediaType: "movie", Title: "The Matrix"},
	}

	best := pickBest("The Matrix", 0, false, items)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected the exact-title candidate, got %+v", best)
	}
}

func TestPickBestSkipsOtherMediaTypes(t *testing.T) {
	items := []searchItem{
		{ID: 1, MediaType: "person", Name: "The Matrix"},
	}

	if best := pickBest("The Matrix", 0, false, items); best != nil {
		t.Fatalf("person candidate accepted: %+v", best)
	}
}

func TestPickBestEmpty(t *testing.T) {
	if best := pickBest("Anything", 0, false, nil); best != nil {
		t.Fatalf("expected nil for empty candidates, got %+v", best)
	}
}

func TestSearchItemAccessors(t *testing.T) {
	movie := searchItem{Title: "Heat", ReleaseDate: "1995-12-15"}
	if movie.displayTitle() != "Heat" || movie.year() != "1995" {
		t.Errorf("movie accessors: %q %q", movie.displayTitle(), movie.year())
	}

	show := searchItem{Name: "Dark", FirstAirDate: "2017-12-01"}
	if show.displayTitle() != "Dark" || show.year() != "2017" {
		t.Errorf("show accessors: %q %q", show.displayTitle(), show.year())
	}

	undated := searchItem{Name: "Unknown"}
	if undated.year() != "" {
		t.Errorf("undated year = %q, want empty", undated.year())
	}
}
