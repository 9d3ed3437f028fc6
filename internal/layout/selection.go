package layout

import (
	"math/rand"
	"sort"
)

type parentSelectorFunc func(rng *rand.Rand, population []*Genome) []Pair

type survivorSelectorFunc func(rng *rand.Rand, union []*Genome, fitness map[uint64]int) []*Genome

var parentSelectors = map[ParentSelection]parentSelectorFunc{
	Panmixia:    panmixia,
	Outbreeding: outbreeding,
	Inbreeding:  inbreeding,
}

var survivorSelectors = map[SurvivorSelection]survivorSelectorFunc{
	Elitism:    elitism,
	Tournament: tournament,
}

// pairCount is the number of parent pairs built per generation: half the
// population, rounded up.
func pairCount(populationSize int) int {
	return (populationSize + 1) / 2
}

// panmixia pairs two distinct individuals drawn uniformly at random.
func panmixia(rng *rand.Rand, population []*Genome) []Pair {
	pairs := make([]Pair, 0, pairCount(len(population)))
	for len(pairs) < cap(pairs) {
		first, second := 0, 0
		for first == second {
			first = rng.Intn(len(population))
			second = rng.Intn(len(population))
		}
		pairs = append(pairs, Pair{First: population[first], Second: population[second]})
	}
	return pairs
}

// outbreeding pairs a random individual with the population member sharing the
// fewest gene positions with it. Ties go to the earliest member.
func outbreeding(rng *rand.Rand, population []*Genome) []Pair {
	pairs := make([]Pair, 0, pairCount(len(population)))
	for len(pairs) < cap(pairs) {
		first := population[rng.Intn(len(population))]
		second := population[0]
		fewest := matchingGenes(first, second)
		for _, candidate := range population[1:] {
			if matches := matchingGenes(first, candidate); matches < fewest {
				second, fewest = candidate, matches
			}
		}
		pairs = append(pairs, Pair{First: first, Second: second})
	}
	return pairs
}

// inbreeding pairs a random individual with its second-closest population member
// by differing genes; the closest is usually the individual itself.
func inbreeding(rng *rand.Rand, population []*Genome) []Pair {
	pairs := make([]Pair, 0, pairCount(len(population)))
	ranked := make([]*Genome, len(population))
	distance := make(map[uint64]int, len(population))
	for len(pairs) < cap(pairs) {
		first := population[rng.Intn(len(population))]
		for _, candidate := range population {
			distance[candidate.id] = differingGenes(first, candidate)
		}
		copy(ranked, population)
		sort.SliceStable(ranked, func(i, j int) bool {
			return distance[ranked[i].id] < distance[ranked[j].id]
		})
		pairs = append(pairs, Pair{First: first, Second: ranked[1]})
	}
	return pairs
}

// elitism keeps the fitter half of the union. Equal fitness keeps union order.
func elitism(_ *rand.Rand, union []*Genome, fitness map[uint64]int) []*Genome {
	ranked := append([]*Genome(nil), union...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return fitness[ranked[i].id] < fitness[ranked[j].id]
	})
	return ranked[:len(union)/2]
}

// tournament shuffles the union into groups of two, the last group taking the
// odd member out, and keeps the fittest of each group.
func tournament(rng *rand.Rand, union []*Genome, fitness map[uint64]int) []*Genome {
	mixed := append([]*Genome(nil), union...)
	rng.Shuffle(len(mixed), func(i, j int) { mixed[i], mixed[j] = mixed[j], mixed[i] })

	groups := len(mixed) / 2
	survivors := make([]*Genome, 0, groups)
	for g := 0; g < groups; g++ {
		group := mixed[g*2 : g*2+2]
		if g == groups-1 && len(mixed)%2 == 1 {
			group = mixed[g*2 : g*2+3]
		}
		best := group[0]
		for _, candidate := range group[1:] {
			if fitness[candidate.id] < fitness[best.id] {
				best = candidate
			}
		}
		survivors = append(survivors, best)
	}
	return survivors
}

func selectParents(strategy ParentSelection, rng *rand.Rand, population []*Genome) []Pair {
	pairs := parentSelectors[strategy](rng, population)
	if want := pairCount(len(population)); len(pairs) != want {
		panic(invariantf("%s produced %d pairs, want %d", strategy, len(pairs), want))
	}
	return pairs
}

func selectSurvivors(strategy SurvivorSelection, rng *rand.Rand, union []*Genome, fitness map[uint64]int) []*Genome {
	survivors := survivorSelectors[strategy](rng, union, fitness)
	if want := len(union) / 2; len(survivors) != want || want == 0 {
		panic(invariantf("%s kept %d of %d individuals", strategy, len(survivors), len(union)))
	}
	return survivors
}
