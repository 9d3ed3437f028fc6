package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one layout run: its inputs and terminal outcome.
type RunRecord struct {
	VersionedRecord
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	SchemaName        string    `json:"schema_name"`
	Elements          int       `json:"elements"`
	Chains            int       `json:"chains"`
	Nodes             int       `json:"nodes"`
	Generations       int       `json:"generations"`
	PopulationSize    int       `json:"population_size"`
	ParentSelection   string    `json:"parent_selection"`
	SurvivorSelection string    `json:"survivor_selection"`
	Seed              int64     `json:"seed"`
	Outcome           string    `json:"outcome"`
	FinalGeneration   int       `json:"final_generation"`
	BestConnections   int       `json:"best_connections"`
}

// GenerationDiagnostics is the fitness summary of one generation.
type GenerationDiagnostics struct {
	Generation         int     `json:"generation"`
	MinConnections     int     `json:"min_connections"`
	AverageConnections float64 `json:"average_connections"`
	MaxConnections     int     `json:"max_connections"`
}

// Distribution is the best element-to-node assignment a run produced.
type Distribution struct {
	VersionedRecord
	RunID       string         `json:"run_id"`
	Generation  int            `json:"generation"`
	Connections int            `json:"connections"`
	Nodes       map[string]int `json:"nodes"`
}
