package events

// EventInfo describes one fest event.
type EventInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TeamEvent   bool   `json:"team_event"`
	HasPrelims  bool   `json:"has_prelims"`
	QuizSlug    string `json:"quiz_slug,omitempty"`
}

// Catalog is the fixed set of fest events. Event registration is validated
// against this list; it changes once per fest edition, not at runtime.
var Catalog = []EventInfo{
	{
		Name:        "PitchGenix",
		Description: "Ideate, build and pitch your startup idea in front of industry experts.",
		TeamEvent:   true,
	},
	{
		Name:        "Corporate Devs",
		Description: "Case-solving and pitching: finance, markets and business strategy.",
		HasPrelims:  true,
		QuizSlug:    "corporate-devs",
	},
	{
		Name:        "Technokraft",
		Description: "The flagship tech quiz. Prelims online, finals on stage.",
		HasPrelims:  true,
		QuizSlug:    "technokraft",
	},
	{
		Name:        "Data Binge",
		Description: "A data crunching sprint: clean, model and present under the clock.",
		HasPrelims:  true,
		QuizSlug:    "data-binge",
	},
}

// IsValid reports whether name is a known event.
func IsValid(name string) bool {
	for _, e := range Catalog {
		if e.Name == name {
			return true
		}
	}
	return false
}

// IsTeamEvent reports whether the event is registered via teams.
func IsTeamEvent(name string) bool {
	for _, e := range Catalog {
		if e.Name == name {
			return e.TeamEvent
		}
	}
	return false
}
