package nutrition

import (
	"fmt"
	"math"
	"sort"

	"healthcast/internal/plan"
	"healthcast/internal/profile"
)

// Alternatives is how many runner-up dishes are listed per meal.
const Alternatives = 3

// Predictor scores a profile against the loaded model. It is read-only after
// construction and safe for concurrent use.
type Predictor struct {
	model Model
}

// NewPredictor wraps an already decoded model.
func NewPredictor(m Model) (*Predictor, error) {
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return &Predictor{model: m}, nil
}

// Predict recommends one dish per meal with up to three alternatives. It fails
// with ErrMissingFeatures when age, weight, height or BMI is unknown; callers
// fall back to DefaultMealPlan.
func (pr *Predictor) Predict(p profile.FitnessProfile) (plan.MealPlan, error) {
	x, err := pr.features(p)
	if err != nil {
		return plan.MealPlan{}, err
	}

	out := plan.MealPlan{Meals: make([]plan.MealSlot, 0, len(MealTypes))}
	for _, meal := range MealTypes {
		ranked := rank(pr.model.Meals[meal], x)
		best := ranked[0]

		slot := plan.MealSlot{
			Meal:           meal,
			Recommended:    best.dish,
			Foods:          Expand(best.dish),
			MainConfidence: percent(best.prob),
		}
		for _, alt := range ranked[1:min(len(ranked), Alternatives+1)] {
			slot.Alternatives = append(slot.Alternatives, plan.Alternative{
				Dish:       alt.dish,
				Confidence: percent(alt.prob),
				Foods:      Expand(alt.dish),
			})
		}
		out.Meals = append(out.Meals, slot)
	}
	return out, nil
}

// features builds the model input vector in feature_order.
func (pr *Predictor) features(p profile.FitnessProfile) ([]float64, error) {
	numeric := map[string]*float64{
		FeatureWeight: p.WeightKg,
		FeatureHeight: p.HeightCm,
		FeatureBMI:    p.BMI,
	}
	if p.Age != nil {
		age := float64(*p.Age)
		numeric[FeatureAge] = &age
	}

	categorical := map[string][]string{
		FeatureGender:        {string(p.Gender)},
		FeatureFitnessLevel:  {string(p.FitnessLevel)},
		FeatureActivityLevel: {string(p.ActivityLevel), p.ActivityLevel.Label()},
		FeatureGoals:         goalCandidates(p.Goals),
	}

	m := pr.model
	x := make([]float64, len(m.FeatureOrder))
	for i, name := range m.FeatureOrder {
		if col := m.numericIndex(name); col >= 0 {
			v, ok := numeric[name]
			if !ok || v == nil {
				return nil, fmt.Errorf("%w: %s", ErrMissingFeatures, name)
			}
			x[i] = (*v - m.Numeric.Mean[col]) / m.Numeric.Scale[col]
			continue
		}
		x[i] = float64(encode(m.Categorical[name], categorical[name]))
	}
	return x, nil
}

// encode returns the index of the first known candidate, else of "unknown".
func encode(classes, candidates []string) int {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if i := indexOf(classes, c); i >= 0 {
			return i
		}
	}
	return indexOf(classes, unknownCategory)
}

// goalCandidates tries the whole sorted set first, then single goals.
func goalCandidates(goals profile.GoalSet) []string {
	if goals.Len() == 0 {
		return nil
	}
	out := []string{goals.String()}
	for _, g := range goals.Sorted() {
		out = append(out, string(g))
	}
	return out
}

type scored struct {
	dish string
	prob float64
}

// rank returns the softmax probabilities sorted high to low; ties keep class order.
func rank(mm MealModel, x []float64) []scored {
	z := make([]float64, len(mm.Classes))
	maxZ := math.Inf(-1)
	for k := range mm.Classes {
		z[k] = mm.Intercept[k]
		for j, w := range mm.Coef[k] {
			z[k] += w * x[j]
		}
		maxZ = math.Max(maxZ, z[k])
	}

	var sum float64
	for k := range z {
		z[k] = math.Exp(z[k] - maxZ)
		sum += z[k]
	}

	out := make([]scored, len(mm.Classes))
	for k, dish := range mm.Classes {
		out[k] = scored{dish: dish, prob: z[k] / sum}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].prob > out[j].prob })
	return out
}

func percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}
