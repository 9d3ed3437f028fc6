package layout

import "math/rand"

// mutate swaps gene pairs inside an offspring. The more positions its parents
// agree on, the more likely the offspring is mutated; a mutation performs
// max(1, len/10) swaps. Swaps keep per-node element counts unchanged.
func mutate(rng *rand.Rand, offspring []int, pair Pair) {
	length := len(offspring)
	if length < 2 {
		return
	}
	same := matchingGenes(pair.First, pair.Second)
	if rng.Intn(length) >= same {
		return
	}

	swaps := length / 10
	if swaps < 1 {
		swaps = 1
	}
	for i := 0; i < swaps; i++ {
		first, second := 0, 0
		for first == second {
			first = rng.Intn(length)
			second = rng.Intn(length)
		}
		offspring[first], offspring[second] = offspring[second], offspring[first]
	}
}
