package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const benchmarkReportFile = "benchmark_report.json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteBenchmarkReport writes report under dir/<name>/ and returns the file path.
func WriteBenchmarkReport(dir, name string, report BenchmarkReport) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "benchmark-" + time.Now().UTC().Format("20060102T150405")
	}
	reportDir := filepath.Join(dir, name)
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(reportDir, benchmarkReportFile)
	if err := writeJSON(path, report); err != nil {
		return "", err
	}
	return path, nil
}

func ReadBenchmarkReport(path string) (BenchmarkReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BenchmarkReport{}, err
	}
	var report BenchmarkReport
	if err := json.Unmarshal(data, &report); err != nil {
		return BenchmarkReport{}, fmt.Errorf("decode benchmark report %s: %w", path, err)
	}
	return report, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
