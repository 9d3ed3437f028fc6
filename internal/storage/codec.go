package storage

import (
	"errors"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"cadlayout/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var (
	ErrVersionMismatch = errors.New("record version mismatch")
	ErrNotInitialized  = errors.New("store is not initialized")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Versioned returns the record header written by this build.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeGenerations(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeGenerations(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func EncodeDistribution(d model.Distribution) ([]byte, error) {
	return json.Marshal(d)
}

func DecodeDistribution(data []byte) (model.Distribution, error) {
	var distribution model.Distribution
	if err := json.Unmarshal(data, &distribution); err != nil {
		return model.Distribution{}, err
	}
	if err := checkVersion(distribution.VersionedRecord); err != nil {
		return model.Distribution{}, err
	}
	return distribution, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// sortRuns orders runs oldest first; ids break ties.
func sortRuns(runs []model.RunRecord) {
	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.Before(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}

func cloneGenerations(diagnostics []model.GenerationDiagnostics) []model.GenerationDiagnostics {
	return append([]model.GenerationDiagnostics(nil), diagnostics...)
}

func cloneDistribution(d model.Distribution) model.Distribution {
	nodes := make(map[string]int, len(d.Nodes))
	for name, node := range d.Nodes {
		nodes[name] = node
	}
	d.Nodes = nodes
	return d
}
