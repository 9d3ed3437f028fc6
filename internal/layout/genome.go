package layout

// Genome is one candidate assignment: position i holds the node id of schema
// element i. Genomes are tracked by id, never by content.
type Genome struct {
	id    uint64
	genes []int
}

func (g *Genome) ID() uint64 {
	return g.id
}

func (g *Genome) Len() int {
	return len(g.genes)
}

func (g *Genome) Gene(i int) int {
	return g.genes[i]
}

// Genes returns a copy of the assignment.
func (g *Genome) Genes() []int {
	return append([]int(nil), g.genes...)
}

func matchingGenes(a, b *Genome) int {
	count := 0
	for i := range a.genes {
		if a.genes[i] == b.genes[i] {
			count++
		}
	}
	return count
}

func differingGenes(a, b *Genome) int {
	return len(a.genes) - matchingGenes(a, b)
}

// nodeCapacity is the most elements a single node may hold.
func nodeCapacity(elements, nodes int) int {
	return (elements + nodes - 1) / nodes
}

// checkPartition reports whether genes assign every element to a node in
// [1, nodes] without overfilling any node.
func checkPartition(genes []int, nodes, capacity int) error {
	load := make([]int, nodes+1)
	for i, node := range genes {
		if node < 1 || node > nodes {
			return invariantf("element %d assigned to node %d outside [1, %d]", i, node, nodes)
		}
		load[node]++
		if load[node] > capacity {
			return invariantf("node %d exceeds capacity %d", node, capacity)
		}
	}
	return nil
}

// Pair is a couple of parents selected for crossover.
type Pair struct {
	First  *Genome
	Second *Genome
}
