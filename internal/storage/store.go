package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/glide/internal/config"
	"github.com/san-kum/glide/internal/experiment"
	"github.com/san-kum/glide/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	ledgerFile   = "energy.csv"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Summary    metrics.Summary    `json:"summary"`
	Metrics    map[string]float64 `json:"metrics"`
	Recoveries int                `json:"recoveries"`
	RatedForce float64            `json:"edt_rated_force"`
	Config     *config.Config     `json:"config"`
}

// Save writes metadata.json and the energy ledger under a new run directory.
func (s *Store) Save(res *experiment.Result) (string, error) {
	name := res.Name
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Preset:     res.Name,
		Timestamp:  time.Now(),
		Duration:   res.Duration,
		Steps:      res.Steps,
		Summary:    res.Summary,
		Metrics:    res.Metrics,
		Recoveries: res.Recoveries,
		RatedForce: res.RatedForce,
		Config:     res.Config,
	}
	if res.Config != nil {
		meta.Dt = res.Config.Dt
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeLedger(filepath.Join(runDir, ledgerFile), res.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLedger(path string, samples []metrics.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(metrics.LedgerHeader); err != nil {
		return err
	}
	for _, s := range samples {
		if err := w.Write(s.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadLedger parses a stored energy.csv back into samples. Rows that fail to
// parse are skipped.
func (s *Store) LoadLedger(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ledgerFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	samples := make([]metrics.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(metrics.LedgerHeader) {
			continue
		}
		vals := make([]float64, len(record))
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		samples = append(samples, metrics.Sample{
			Time:          vals[0],
			Kinetic:       vals[1],
			Elastic:       vals[2],
			Gravitational: vals[3],
			Battery:       vals[4],
			Total:         vals[5],
			SoC:           vals[6],
		})
	}
	return samples, nil
}

// CopyLedger streams the stored energy.csv to w unchanged.
func (s *Store) CopyLedger(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, ledgerFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// ExportCSV writes ledger rows to path in the same format as stored runs.
func ExportCSV(path string, samples []metrics.Sample) error {
	return writeLedger(path, samples)
}
