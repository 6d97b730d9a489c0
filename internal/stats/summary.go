package stats

import (
	"sort"

	"github.com/pefman/eots-battle/internal/game"
)

// Bucket is the probability of one value.
type Bucket struct {
	Value       int     `json:"value"`
	Probability float64 `json:"probability"`
}

// OutcomeGroup is the probability of one combination of results and losses.
type OutcomeGroup struct {
	AlliedResult float64 `json:"allied_result"`
	AlliedLosses int     `json:"allied_losses"`
	JapanResult  float64 `json:"japan_result"`
	JapanLosses  int     `json:"japan_losses"`
	Probability  float64 `json:"probability"`
}

// Summary condenses a resolved battle. Every row weighs 1/len(rows).
type Summary struct {
	Rows                 int            `json:"rows"`
	AlliedWin            float64        `json:"allied_win"`
	JapanWin             float64        `json:"japan_win"`
	ExpectedAlliedDamage float64        `json:"expected_allied_damage"`
	ExpectedJapanDamage  float64        `json:"expected_japan_damage"`
	ExpectedAlliedCF     float64        `json:"expected_allied_cf"`
	ExpectedJapanCF      float64        `json:"expected_japan_cf"`
	AlliedDamage         []Bucket       `json:"allied_damage"`
	JapanDamage          []Bucket       `json:"japan_damage"`
	Outcomes             []OutcomeGroup `json:"outcomes"`
}

// Summarize aggregates rows into win probabilities and damage distributions.
func Summarize(rows []game.Row) Summary {
	s := Summary{Rows: len(rows)}
	if len(rows) == 0 {
		return s
	}
	w := 1 / float64(len(rows))

	alliedDamage := map[int]int{}
	japanDamage := map[int]int{}
	type groupKey struct {
		ar, jr float64
		al, jl int
	}
	groups := map[groupKey]int{}

	for _, r := range rows {
		switch r.Winner {
		case game.SideAllied:
			s.AlliedWin += w
		case game.SideJapan:
			s.JapanWin += w
		}
		s.ExpectedAlliedDamage += w * float64(r.AlliedDamage)
		s.ExpectedJapanDamage += w * float64(r.JapanDamage)
		s.ExpectedAlliedCF += w * float64(r.AlliedCF)
		s.ExpectedJapanCF += w * float64(r.JapanCF)
		alliedDamage[r.AlliedDamage]++
		japanDamage[r.JapanDamage]++
		groups[groupKey{r.AlliedResult, r.JapanResult, r.AlliedLoss, r.JapanLoss}]++
	}

	s.AlliedDamage = buckets(alliedDamage, w)
	s.JapanDamage = buckets(japanDamage, w)
	for k, n := range groups {
		s.Outcomes = append(s.Outcomes, OutcomeGroup{
			AlliedResult: k.ar,
			AlliedLosses: k.al,
			JapanResult:  k.jr,
			JapanLosses:  k.jl,
			Probability:  float64(n) * w,
		})
	}
	sort.Slice(s.Outcomes, func(i, j int) bool {
		a, b := s.Outcomes[i], s.Outcomes[j]
		if a.AlliedResult != b.AlliedResult {
			return a.AlliedResult < b.AlliedResult
		}
		if a.AlliedLosses != b.AlliedLosses {
			return a.AlliedLosses < b.AlliedLosses
		}
		if a.JapanResult != b.JapanResult {
			return a.JapanResult < b.JapanResult
		}
		return a.JapanLosses < b.JapanLosses
	})
	return s
}

func buckets(counts map[int]int, w float64) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for v, n := range counts {
		out = append(out, Bucket{Value: v, Probability: float64(n) * w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
