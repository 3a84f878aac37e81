// Package storage persists completed runs under a data directory: one
// subdirectory per run with JSON metadata and CSV field snapshots.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gridlab/internal/experiment"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarizes one persisted run.
type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Kernel     string             `json:"kernel"`
	Strategy   string             `json:"strategy"`
	Steps      int                `json:"steps"`
	Extents    [][2]int           `json:"extents"`
	Boundaries []string           `json:"boundaries"`
	ElapsedMS  float64            `json:"elapsed_ms"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes metadata and the initial/final field snapshots, returning the
// run ID.
func (s *Store) Save(name, kernel string, extents [][2]int, boundaries []string, result *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  time.Now(),
		Kernel:     kernel,
		Strategy:   result.Strategy,
		Steps:      result.Steps,
		Extents:    extents,
		Boundaries: boundaries,
		ElapsedMS:  float64(result.Elapsed.Microseconds()) / 1000,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeField(filepath.Join(runDir, "field.csv"), result.Initial, result.Final); err != nil {
		return "", err
	}
	return runID, nil
}

func writeField(path string, initial, final []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"index", "initial", "final"}); err != nil {
		return err
	}
	for i := range final {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(initial[i], 'f', 9, 64),
			strconv.FormatFloat(final[i], 'f', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns metadata for every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadField reads a run's initial and final field snapshots.
func (s *Store) LoadField(runID string) (initial, final []float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "field.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		iv, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, nil, err
		}
		fv, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, nil, err
		}
		initial = append(initial, iv)
		final = append(final, fv)
	}
	return initial, final, nil
}
