package layout

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genomes(assignments ...[]int) []*Genome {
	out := make([]*Genome, 0, len(assignments))
	for i, genes := range assignments {
		out = append(out, &Genome{id: uint64(i + 1), genes: genes})
	}
	return out
}

func nodeCounts(genes []int) map[int]int {
	counts := make(map[int]int)
	for _, node := range genes {
		counts[node]++
	}
	return counts
}

func TestPairCountRoundsUp(t *testing.T) {
	assert.Equal(t, 1, pairCount(2))
	assert.Equal(t, 2, pairCount(4))
	assert.Equal(t, 3, pairCount(5))
}

func TestPanmixiaPairsDistinctIndividuals(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	population := genomes([]int{1, 2}, []int{2, 1}, []int{1, 2}, []int{2, 1}, []int{1, 2})
	pairs := selectParents(Panmixia, rng, population)
	require.Len(t, pairs, 3)
	for _, pair := range pairs {
		assert.NotSame(t, pair.First, pair.Second)
	}
}

func TestOutbreedingPicksLeastSimilarPartner(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	population := genomes([]int{1, 1, 2, 2}, []int{2, 2, 1, 1}, []int{1, 2, 1, 2})
	expected := map[uint64]uint64{1: 2, 2: 1, 3: 1}
	for _, pair := range selectParents(Outbreeding, rng, population) {
		assert.Equal(t, expected[pair.First.id], pair.Second.id)
	}
}

func TestOutbreedingTiesGoToFirstMember(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	population := genomes([]int{1, 2}, []int{1, 2}, []int{1, 2})
	for _, pair := range selectParents(Outbreeding, rng, population) {
		assert.Same(t, population[0], pair.Second)
	}
}

func TestInbreedingPicksNearestOtherMember(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	population := genomes([]int{1, 1, 2, 2}, []int{1, 1, 2, 1}, []int{2, 2, 1, 1})
	expected := map[uint64]uint64{1: 2, 2: 1, 3: 2}
	pairs := selectParents(Inbreeding, rng, population)
	require.Len(t, pairs, 2)
	for _, pair := range pairs {
		assert.Equal(t, expected[pair.First.id], pair.Second.id)
	}
}

func TestElitismKeepsFittestHalfInUnionOrder(t *testing.T) {
	union := genomes([]int{1}, []int{1}, []int{1}, []int{1})
	fitness := map[uint64]int{1: 3, 2: 1, 3: 2, 4: 1}
	survivors := selectSurvivors(Elitism, nil, union, fitness)
	require.Len(t, survivors, 2)
	assert.Same(t, union[1], survivors[0])
	assert.Same(t, union[3], survivors[1])
}

func TestTournamentOddUnionNeverKeepsWorst(t *testing.T) {
	union := genomes([]int{1}, []int{1}, []int{1}, []int{1}, []int{1})
	fitness := map[uint64]int{1: 4, 2: 9, 3: 1, 4: 6, 5: 2}
	for seed := int64(0); seed < 20; seed++ {
		survivors := selectSurvivors(Tournament, rand.New(rand.NewSource(seed)), union, fitness)
		require.Len(t, survivors, 2)
		for _, g := range survivors {
			assert.NotEqual(t, uint64(2), g.id)
		}
		assert.NotSame(t, survivors[0], survivors[1])
	}
}

func TestSelectSurvivorsPanicsOnEmptyResult(t *testing.T) {
	union := genomes([]int{1})
	assert.PanicsWithError(t, "layout invariant violated: elitism kept 0 of 1 individuals", func() {
		selectSurvivors(Elitism, nil, union, map[uint64]int{1: 0})
	})
}

func TestBuildOffspringRespectsCapacity(t *testing.T) {
	pool := []taggedGene{{0, 1}, {1, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}
	assert.Equal(t, []int{1, 1, 2}, buildOffspring(pool, 3, 2, 2))
}

func TestBuildOffspringPlacesLeftoversOnLowestFreeNode(t *testing.T) {
	pool := []taggedGene{{0, 3}, {1, 3}, {2, 3}, {3, 3}}
	assert.Equal(t, []int{3, 3, 1, 1}, buildOffspring(pool, 4, 3, 2))
}

func TestCrossoverProducesValidPartitions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pair := Pair{
		First:  &Genome{id: 1, genes: []int{1, 2, 3, 1, 2, 3, 1}},
		Second: &Genome{id: 2, genes: []int{3, 3, 2, 2, 1, 1, 1}},
	}
	capacity := nodeCapacity(7, 3)
	for i := 0; i < 50; i++ {
		first, second := crossover(rng, pair, 3)
		require.NoError(t, checkPartition(first, 3, capacity))
		require.NoError(t, checkPartition(second, 3, capacity))
	}
}

func TestMutateKeepsNodeCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	parent := &Genome{id: 1, genes: []int{1, 2, 3, 1, 2, 3, 1, 2, 3, 1, 2, 3, 1, 2, 3, 1, 2, 3, 1, 2}}
	pair := Pair{First: parent, Second: parent}

	offspring := parent.Genes()
	mutate(rng, offspring, pair)
	assert.Equal(t, nodeCounts(parent.genes), nodeCounts(offspring))

	sortedParent, sortedOffspring := parent.Genes(), append([]int(nil), offspring...)
	sort.Ints(sortedParent)
	sort.Ints(sortedOffspring)
	assert.Equal(t, sortedParent, sortedOffspring)
}

func TestMutateSkipsWhenParentsShareNothing(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pair := Pair{
		First:  &Genome{id: 1, genes: []int{1, 1, 2, 2}},
		Second: &Genome{id: 2, genes: []int{2, 2, 1, 1}},
	}
	offspring := []int{1, 2, 1, 2}
	for i := 0; i < 20; i++ {
		mutate(rng, offspring, pair)
	}
	assert.Equal(t, []int{1, 2, 1, 2}, offspring)
}

func TestMutateSingleGeneIsNoop(t *testing.T) {
	parent := &Genome{id: 1, genes: []int{1}}
	offspring := []int{1}
	mutate(rand.New(rand.NewSource(1)), offspring, Pair{First: parent, Second: parent})
	assert.Equal(t, []int{1}, offspring)
}

func TestCheckPartition(t *testing.T) {
	require.NoError(t, checkPartition([]int{1, 2, 1, 2}, 2, 2))
	require.ErrorIs(t, checkPartition([]int{1, 1, 1, 2}, 2, 2), ErrInvariant)
	require.ErrorIs(t, checkPartition([]int{0, 1}, 2, 1), ErrInvariant)
	require.ErrorIs(t, checkPartition([]int{3, 1}, 2, 1), ErrInvariant)
}
