package events

import "testing"

func TestCatalogLookups(t *testing.T) {
	if !IsValid("Technokraft") {
		t.Error("Technokraft should be a known event")
	}
	if IsValid("Underwater Basket Weaving") {
		t.Error("unknown event reported as valid")
	}
	if !IsTeamEvent("PitchGenix") {
		t.Error("PitchGenix should be a team event")
	}
	if IsTeamEvent("Data Binge") {
		t.Error("Data Binge is a solo event")
	}
	if IsTeamEvent("Not An Event") {
		t.Error("unknown event reported as team event")
	}
}

func TestCatalogPrelimsHaveSlugs(t *testing.T) {
	for _, e := range Catalog {
		if e.HasPrelims && e.QuizSlug == "" {
			t.Errorf("%s has prelims but no quiz slug", e.Name)
		}
		if !e.HasPrelims && e.QuizSlug != "" {
			t.Errorf("%s has a quiz slug but no prelims", e.Name)
		}
	}
}
