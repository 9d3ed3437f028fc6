package layout

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// link is a weighted element pair (i > j) taken from the connection matrix.
type link struct {
	i, j   int
	weight int
}

// Engine searches node assignments for one schema. It holds only validated,
// read-only configuration; every Run owns its state, so one engine may serve
// concurrent runs.
type Engine struct {
	cfg      Config
	names    []string
	links    []link
	capacity int
	logger   zerolog.Logger
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	matrix := cfg.Schema.Connections()
	var links []link
	for i := 0; i < matrix.Size(); i++ {
		for j := 0; j < i; j++ {
			if w := matrix.At(i, j); w > 0 {
				links = append(links, link{i: i, j: j, weight: w})
			}
		}
	}

	return &Engine{
		cfg:      cfg,
		names:    matrix.Labels(),
		links:    links,
		capacity: nodeCapacity(matrix.Size(), cfg.Nodes),
		logger: logger.With().
			Str("parent_selection", string(cfg.ParentSelection)).
			Str("survivor_selection", string(cfg.SurvivorSelection)).
			Int("nodes", cfg.Nodes).
			Logger(),
	}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// WithSeed returns an engine sharing this one's schema data but seeding its
// runs from seed.
func (e *Engine) WithSeed(seed int64) *Engine {
	clone := *e
	clone.cfg.Seed = seed
	return &clone
}

// Fitness counts the connections crossing node boundaries under genes.
func (e *Engine) Fitness(genes []int) int {
	total := 0
	for _, l := range e.links {
		if genes[l.i] != genes[l.j] {
			total += l.weight
		}
	}
	return total
}

// State is the mutable part of a run: the population, its fitness cache keyed
// by genome id and the random source every randomized step draws from.
type State struct {
	rng        *rand.Rand
	nextID     uint64
	generation int
	population []*Genome
	fitness    map[uint64]int
}

func (s *State) Generation() int {
	return s.generation
}

func (s *State) Population() []*Genome {
	return append([]*Genome(nil), s.population...)
}

// Fitness returns the cached fitness of a population member.
func (s *State) Fitness(g *Genome) (int, bool) {
	value, ok := s.fitness[g.id]
	return value, ok
}

func (s *State) newGenome(genes []int) *Genome {
	s.nextID++
	return &Genome{id: s.nextID, genes: genes}
}

// NewState seeds the initial population: the template cycling node ids across
// element positions, shuffled independently for every individual.
func (e *Engine) NewState() *State {
	st := &State{
		rng:     rand.New(rand.NewSource(e.cfg.Seed)),
		fitness: make(map[uint64]int, e.cfg.PopulationSize*2),
	}
	template := make([]int, len(e.names))
	for i := range template {
		template[i] = i%e.cfg.Nodes + 1
	}
	st.population = make([]*Genome, 0, e.cfg.PopulationSize)
	for len(st.population) < e.cfg.PopulationSize {
		genes := append([]int(nil), template...)
		st.rng.Shuffle(len(genes), func(i, j int) { genes[i], genes[j] = genes[j], genes[i] })
		g := st.newGenome(genes)
		st.population = append(st.population, g)
		st.fitness[g.id] = e.Fitness(g.genes)
	}
	return st
}

// Step advances the state by one generation and returns its result.
func (e *Engine) Step(st *State) Result {
	pairs := selectParents(e.cfg.ParentSelection, st.rng, st.population)

	offspring := make([]*Genome, 0, len(pairs)*2)
	for _, pair := range pairs {
		first, second := crossover(st.rng, pair, e.cfg.Nodes)
		mutate(st.rng, first, pair)
		mutate(st.rng, second, pair)
		for _, genes := range [][]int{first, second} {
			if err := checkPartition(genes, e.cfg.Nodes, e.capacity); err != nil {
				panic(err)
			}
			offspring = append(offspring, st.newGenome(genes))
		}
	}

	for i, value := range e.evaluate(offspring) {
		st.fitness[offspring[i].id] = value
	}

	union := make([]*Genome, 0, len(st.population)+len(offspring))
	union = append(union, st.population...)
	union = append(union, offspring...)
	st.population = selectSurvivors(e.cfg.SurvivorSelection, st.rng, union, st.fitness)

	retained := make(map[uint64]int, len(st.population))
	for _, g := range st.population {
		retained[g.id] = st.fitness[g.id]
	}
	st.fitness = retained
	st.generation++

	return e.result(st)
}

// evaluate computes offspring fitness, in parallel when Workers > 1. Values are
// written by index so ordering never affects the outcome.
func (e *Engine) evaluate(offspring []*Genome) []int {
	values := make([]int, len(offspring))
	if e.cfg.Workers <= 1 || len(offspring) < 2 {
		for i, g := range offspring {
			values[i] = e.Fitness(g.genes)
		}
		return values
	}

	p := pool.New().WithMaxGoroutines(e.cfg.Workers)
	for i, g := range offspring {
		p.Go(func() {
			values[i] = e.Fitness(g.genes)
		})
	}
	p.Wait()
	return values
}

func (e *Engine) result(st *State) Result {
	best := st.population[0]
	minFitness, maxFitness, total := st.fitness[best.id], st.fitness[best.id], 0
	for _, g := range st.population {
		value := st.fitness[g.id]
		total += value
		if value < minFitness {
			best, minFitness = g, value
		}
		if value > maxFitness {
			maxFitness = value
		}
	}

	distribution := make(map[string]int, len(e.names))
	for i, name := range e.names {
		distribution[name] = best.genes[i]
	}
	return Result{
		Generation:         st.generation,
		MinConnections:     minFitness,
		AverageConnections: float64(total) / float64(len(st.population)),
		MaxConnections:     maxFitness,
		Best:               best.Genes(),
		Distribution:       distribution,
	}
}

// Run executes the generation loop on the calling goroutine. Cancellation is
// checked once per generation, after IterationCompleted fired, and ends the run
// with OutcomeCanceled and a nil error. A non-nil error means an internal
// invariant was violated.
func (e *Engine) Run(ctx context.Context, obs Observer) (summary Summary, err error) {
	defer recoverInvariant(&err)
	if ctx == nil {
		ctx = context.Background()
	}

	st := e.NewState()
	history := make([]Stats, 0, e.cfg.Generations)
	var result Result
	for gen := 0; gen < e.cfg.Generations; gen++ {
		result = e.Step(st)
		history = append(history, result.Stats())
		e.logger.Debug().
			Int("generation", result.Generation).
			Int("min", result.MinConnections).
			Float64("avg", result.AverageConnections).
			Int("max", result.MaxConnections).
			Msg("generation completed")
		obs.notify(EventIterationCompleted, result)

		if ctx.Err() != nil {
			e.logger.Info().
				Int("generation", result.Generation).
				Int("best", result.MinConnections).
				Msg("layout canceled")
			obs.notify(EventLayoutCanceled, result)
			return Summary{Outcome: OutcomeCanceled, Final: result, History: history}, nil
		}
	}

	e.logger.Info().
		Int("generations", result.Generation).
		Int("best", result.MinConnections).
		Msg("layout completed")
	obs.notify(EventLayoutCompleted, result)
	return Summary{Outcome: OutcomeCompleted, Final: result, History: history}, nil
}

func (e *Engine) String() string {
	return fmt.Sprintf("layout(%s/%s, nodes=%d, population=%d, generations=%d)",
		e.cfg.ParentSelection, e.cfg.SurvivorSelection, e.cfg.Nodes, e.cfg.PopulationSize, e.cfg.Generations)
}
