package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"cadlayout/internal/schema"
)

var (
	ErrInvalidConfig = errors.New("invalid layout config")
	ErrInvariant     = errors.New("layout invariant violated")
)

// ParentSelection names the strategy used to pair genomes for crossover.
type ParentSelection string

const (
	Panmixia    ParentSelection = "panmixia"
	Outbreeding ParentSelection = "outbreeding"
	Inbreeding  ParentSelection = "inbreeding"
)

// SurvivorSelection names the strategy used to halve population+offspring.
type SurvivorSelection string

const (
	Elitism    SurvivorSelection = "elitism"
	Tournament SurvivorSelection = "tournament"
)

func ParentSelections() []ParentSelection {
	return []ParentSelection{Inbreeding, Outbreeding, Panmixia}
}

func SurvivorSelections() []SurvivorSelection {
	return []SurvivorSelection{Elitism, Tournament}
}

func ParseParentSelection(name string) (ParentSelection, error) {
	s := ParentSelection(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := parentSelectors[s]; !ok {
		return "", fmt.Errorf("%w: unsupported parent selection %q", ErrInvalidConfig, name)
	}
	return s, nil
}

func ParseSurvivorSelection(name string) (SurvivorSelection, error) {
	s := SurvivorSelection(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := survivorSelectors[s]; !ok {
		return "", fmt.Errorf("%w: unsupported survivor selection %q", ErrInvalidConfig, name)
	}
	return s, nil
}

type Config struct {
	Schema            *schema.Schema
	Nodes             int
	Generations       int
	PopulationSize    int
	ParentSelection   ParentSelection
	SurvivorSelection SurvivorSelection
	// Background makes Execute run the generation loop on its own goroutine.
	Background bool
	Seed       int64
	// Workers bounds parallel offspring fitness evaluation. Values <= 1 evaluate
	// on the run goroutine.
	Workers int
	Logger  *zerolog.Logger
}

func (cfg Config) validate() error {
	if cfg.Schema == nil {
		return fmt.Errorf("%w: schema is required", ErrInvalidConfig)
	}
	elements := cfg.Schema.ElementCount()
	if cfg.Nodes <= 0 {
		return fmt.Errorf("%w: nodes count must be > 0", ErrInvalidConfig)
	}
	if cfg.Nodes > elements {
		return fmt.Errorf("%w: nodes count %d exceeds element count %d", ErrInvalidConfig, cfg.Nodes, elements)
	}
	if cfg.Generations <= 0 {
		return fmt.Errorf("%w: generations count must be > 0", ErrInvalidConfig)
	}
	if cfg.PopulationSize < 2 {
		return fmt.Errorf("%w: population size must be >= 2", ErrInvalidConfig)
	}
	if _, ok := parentSelectors[cfg.ParentSelection]; !ok {
		return fmt.Errorf("%w: unsupported parent selection %q", ErrInvalidConfig, cfg.ParentSelection)
	}
	if _, ok := survivorSelectors[cfg.SurvivorSelection]; !ok {
		return fmt.Errorf("%w: unsupported survivor selection %q", ErrInvalidConfig, cfg.SurvivorSelection)
	}
	return nil
}
