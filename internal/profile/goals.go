package profile

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Goal is one fitness objective.
type Goal string

const (
	GoalWeightLoss     Goal = "weight_loss"
	GoalMuscleBuilding Goal = "muscle_building"
	GoalEndurance      Goal = "endurance"
	GoalFlexibility    Goal = "flexibility"
	GoalGeneralFitness Goal = "general_fitness"
	GoalStrength       Goal = "strength"
)

// AllGoals lists the known goals.
var AllGoals = []Goal{
	GoalWeightLoss,
	GoalMuscleBuilding,
	GoalEndurance,
	GoalFlexibility,
	GoalGeneralFitness,
	GoalStrength,
}

// Label returns the human readable form ("weight loss").
func (g Goal) Label() string {
	return strings.ReplaceAll(string(g), "_", " ")
}

// Valid reports whether g is a known goal.
func (g Goal) Valid() bool {
	for _, known := range AllGoals {
		if g == known {
			return true
		}
	}
	return false
}

// GoalSet is an unordered set of goals. It serializes as a sorted JSON array.
type GoalSet map[Goal]struct{}

// NewGoalSet builds a set from the given goals.
func NewGoalSet(goals ...Goal) GoalSet {
	s := make(GoalSet, len(goals))
	for _, g := range goals {
		s.Add(g)
	}
	return s
}

// Add inserts g. Adding to a nil set panics, like any nil map.
func (s GoalSet) Add(g Goal) {
	s[g] = struct{}{}
}

func (s GoalSet) Has(g Goal) bool {
	_, ok := s[g]
	return ok
}

func (s GoalSet) Len() int {
	return len(s)
}

// Sorted returns the goals in alphabetical order.
func (s GoalSet) Sorted() []Goal {
	out := make([]Goal, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String joins the sorted goals with commas, e.g. "flexibility,weight_loss".
func (s GoalSet) String() string {
	parts := make([]string, 0, len(s))
	for _, g := range s.Sorted() {
		parts = append(parts, string(g))
	}
	return strings.Join(parts, ",")
}

// Labels returns the sorted human readable labels.
func (s GoalSet) Labels() []string {
	labels := make([]string, 0, len(s))
	for _, g := range s.Sorted() {
		labels = append(labels, g.Label())
	}
	return labels
}

// Clone returns an independent copy; nil stays nil.
func (s GoalSet) Clone() GoalSet {
	if s == nil {
		return nil
	}
	out := make(GoalSet, len(s))
	for g := range s {
		out[g] = struct{}{}
	}
	return out
}

func (s GoalSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON accepts either an array of goals or the comma-joined string
// form written by older profile files.
func (s *GoalSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		var joined string
		if strErr := json.Unmarshal(data, &joined); strErr != nil {
			return fmt.Errorf("goals must be an array or a comma separated string: %w", err)
		}
		raw = strings.Split(joined, ",")
	}

	set := make(GoalSet, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(strings.ToLower(item))
		if item == "" {
			continue
		}
		g := Goal(strings.ReplaceAll(item, " ", "_"))
		if !g.Valid() {
			return fmt.Errorf("unknown goal %q", item)
		}
		set.Add(g)
	}
	*s = set
	return nil
}
