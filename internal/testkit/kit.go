// Package testkit provides deterministic scenario fixtures and fakes shared
// by tests and benchmarks.
package testkit

import (
	"fmt"
	"math/rand"

	"schedrisk/domain/core"
	"schedrisk/domain/risk"
	"schedrisk/domain/schedule"
)

// ConstantActivity builds an activity with a fixed base duration.
func ConstantActivity(id string, duration int) schedule.Activity {
	return schedule.Activity{ID: core.ActivityID(id), Name: id, Duration: duration}
}

// FS builds a Finish-to-Start dependency with zero lag.
func FS(pred, succ string) schedule.Dependency {
	return schedule.Dependency{
		Predecessor: core.ActivityID(pred),
		Successor:   core.ActivityID(succ),
		Kind:        schedule.FinishToStart,
	}
}

// ChainScenario builds a linear Finish-to-Start chain with the given
// constant durations, named A1, A2, ...
func ChainScenario(durations ...int) *risk.Scenario {
	s := &risk.Scenario{Name: "chain", Distributions: risk.ActivityDistributions{}}
	for i, d := range durations {
		id := fmt.Sprintf("A%d", i+1)
		s.Activities = append(s.Activities, ConstantActivity(id, d))
		if i > 0 {
			s.Dependencies = append(s.Dependencies, FS(fmt.Sprintf("A%d", i), id))
		}
	}
	return s
}

// TwoPathScenario builds two parallel paths between shared start/end
// anchors: start -> a -> end and start -> b -> end. The middle activities
// carry the supplied distributions.
func TwoPathScenario(distA, distB risk.Distribution) *risk.Scenario {
	return &risk.Scenario{
		Name: "two-path",
		Activities: []schedule.Activity{
			ConstantActivity("start", 0),
			ConstantActivity("a", 0),
			ConstantActivity("b", 0),
			ConstantActivity("end", 0),
		},
		Dependencies: []schedule.Dependency{
			FS("start", "a"),
			FS("start", "b"),
			FS("a", "end"),
			FS("b", "end"),
		},
		Distributions: risk.ActivityDistributions{
			"a": distA,
			"b": distB,
		},
	}
}

// RandomNetwork builds a layered DAG with n activities for benchmarks and
// stress tests. Each activity beyond the first layer picks one to three
// predecessors from earlier layers; every activity gets a triangular
// distribution around its base duration. Identical seeds build identical
// networks.
func RandomNetwork(seed int64, n int) *risk.Scenario {
	rng := rand.New(rand.NewSource(seed))
	s := &risk.Scenario{
		Name:          fmt.Sprintf("random-%d", n),
		Distributions: risk.ActivityDistributions{},
	}
	for i := 0; i < n; i++ {
		id := core.ActivityID(fmt.Sprintf("T%03d", i))
		base := 1 + rng.Intn(20)
		s.Activities = append(s.Activities, schedule.Activity{ID: id, Name: string(id), Duration: base})
		s.Distributions[id] = risk.Distribution{
			Kind: risk.Triangular,
			Min:  float64(base) * 0.8,
			Mode: float64(base),
			Max:  float64(base) * 1.5,
		}
		if i == 0 {
			continue
		}
		preds := 1 + rng.Intn(3)
		if preds > i {
			preds = i
		}
		seen := map[int]bool{}
		for p := 0; p < preds; p++ {
			j := rng.Intn(i)
			if seen[j] {
				continue
			}
			seen[j] = true
			s.Dependencies = append(s.Dependencies, schedule.Dependency{
				Predecessor: s.Activities[j].ID,
				Successor:   id,
				Kind:        schedule.FinishToStart,
			})
		}
	}
	return s
}
