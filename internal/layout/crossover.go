package layout

import "math/rand"

// taggedGene is a parent gene labeled with the element it assigns.
type taggedGene struct {
	element int
	node    int
}

// crossover mixes the tagged genes of both parents and builds two offspring,
// one from the shuffled pool and one from the same pool read backwards.
func crossover(rng *rand.Rand, pair Pair, nodes int) ([]int, []int) {
	elements := pair.First.Len()
	pool := make([]taggedGene, 0, elements*2)
	for i, node := range pair.First.genes {
		pool = append(pool, taggedGene{element: i, node: node})
	}
	for i, node := range pair.Second.genes {
		pool = append(pool, taggedGene{element: i, node: node})
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	reversed := make([]taggedGene, len(pool))
	for i, gene := range pool {
		reversed[len(pool)-1-i] = gene
	}

	capacity := nodeCapacity(elements, nodes)
	return buildOffspring(pool, elements, nodes, capacity), buildOffspring(reversed, elements, nodes, capacity)
}

// buildOffspring scans the pool once, taking each gene whose element is still
// free and whose node has room. Elements left over are placed, in pool order,
// on the lowest node id with remaining capacity.
func buildOffspring(pool []taggedGene, elements, nodes, capacity int) []int {
	genes := make([]int, elements)
	load := make([]int, nodes+1)
	assigned := 0
	for _, gene := range pool {
		if assigned == elements {
			break
		}
		if genes[gene.element] != 0 || load[gene.node] >= capacity {
			continue
		}
		genes[gene.element] = gene.node
		load[gene.node]++
		assigned++
	}

	for _, gene := range pool {
		if assigned == elements {
			break
		}
		if genes[gene.element] != 0 {
			continue
		}
		for node := 1; node <= nodes; node++ {
			if load[node] < capacity {
				genes[gene.element] = node
				load[node]++
				assigned++
				break
			}
		}
	}

	if assigned != elements {
		panic(invariantf("offspring assigns %d of %d elements", assigned, elements))
	}
	return genes
}
