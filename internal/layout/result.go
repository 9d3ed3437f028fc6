package layout

import "cadlayout/internal/schema"

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCanceled  Outcome = "canceled"
)

// Result describes one finished generation. Fitness is the number of
// cross-node connections, so the best individual has MinConnections.
type Result struct {
	Generation         int            `json:"generation"`
	MinConnections     int            `json:"min_connections"`
	AverageConnections float64        `json:"average_connections"`
	MaxConnections     int            `json:"max_connections"`
	Best               []int          `json:"best"`
	Distribution       map[string]int `json:"distribution"`
}

// Stats returns the fitness summary of the result without the assignment.
func (r Result) Stats() Stats {
	return Stats{
		Generation:         r.Generation,
		MinConnections:     r.MinConnections,
		AverageConnections: r.AverageConnections,
		MaxConnections:     r.MaxConnections,
	}
}

// Apply writes the best distribution onto the schema elements.
func (r Result) Apply(s *schema.Schema) error {
	return s.AssignNodes(r.Distribution)
}

type Stats struct {
	Generation         int     `json:"generation"`
	MinConnections     int     `json:"min_connections"`
	AverageConnections float64 `json:"average_connections"`
	MaxConnections     int     `json:"max_connections"`
}

// Summary is what a run returns once it reaches a terminal outcome.
type Summary struct {
	Outcome Outcome `json:"outcome"`
	Final   Result  `json:"final"`
	History []Stats `json:"history"`
}

// BestByGeneration lists the best fitness of each generation in order.
func (s Summary) BestByGeneration() []int {
	out := make([]int, 0, len(s.History))
	for _, item := range s.History {
		out = append(out, item.MinConnections)
	}
	return out
}
