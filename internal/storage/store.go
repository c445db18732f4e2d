// Package storage persists solved jobs as run directories with JSON
// metadata and CSV artifacts.
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

	"github.com/cstarkjp/GME/internal/composite"
	"github.com/cstarkjp/GME/internal/trace"
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
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Fingerprint string    `json:"fingerprint"`
	EndTime     float64   `json:"end_time"`
	Families    int       `json:"families"`
	Rays        int       `json:"rays"`
	Isochrones  int       `json:"isochrones"`
	Knickpoints int       `json:"knickpoints"`
}

// Save writes one solved job under a fresh run directory and returns the
// run ID. Artifacts are written whole; a failed solve never reaches here,
// so a run directory is always complete.
func (s *Store) Save(sol *composite.Solution) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	rays := 0
	for _, fam := range sol.Families {
		rays += len(fam.Trajectories)
	}
	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Fingerprint: sol.Fingerprint,
		EndTime:     sol.TEnd,
		Families:    len(sol.Families),
		Rays:        rays,
		Isochrones:  len(sol.Isochrones),
		Knickpoints: len(sol.Knickpoints),
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := s.writeRays(filepath.Join(runDir, "rays.csv"), sol.Families); err != nil {
		return "", err
	}
	if err := s.writeIsochrones(filepath.Join(runDir, "isochrones.csv"), sol.Isochrones); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) writeRays(path string, families []*trace.RayFamily) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"family", "ray", "seed_time", "time", "rx", "rz", "px", "pz"}); err != nil {
		return err
	}
	for _, fam := range families {
		for i := range fam.Trajectories {
			tr := &fam.Trajectories[i]
			for k, t := range tr.Times {
				row := []string{
					fam.Name,
					strconv.Itoa(i),
					fmtF(tr.SeedTime),
					fmtF(t),
					fmtF(tr.States[k][trace.IRx]),
					fmtF(tr.States[k][trace.IRz]),
					fmtF(tr.States[k][trace.IPx]),
					fmtF(tr.States[k][trace.IPz]),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Store) writeIsochrones(path string, isochrones []trace.Isochrone) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "x", "z", "slope"}); err != nil {
		return err
	}
	for _, iso := range isochrones {
		for i := range iso.X {
			row := []string{fmtF(iso.T), fmtF(iso.X[i]), fmtF(iso.Z[i]), fmtF(iso.Slope[i])}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// List returns the stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, e.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(a, b int) bool { return runs[a].Timestamp.After(runs[b].Timestamp) })
	return runs, nil
}

// LoadIsochrones reads a run's isochrone artifact back, grouped by time.
func (s *Store) LoadIsochrones(runID string) ([]trace.Isochrone, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "isochrones.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var out []trace.Isochrone
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}
		t, err1 := strconv.ParseFloat(row[0], 64)
		x, err2 := strconv.ParseFloat(row[1], 64)
		z, err3 := strconv.ParseFloat(row[2], 64)
		slope, err4 := strconv.ParseFloat(row[3], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("bad isochrone row %d in run %s", i, runID)
		}
		if len(out) == 0 || out[len(out)-1].T != t {
			out = append(out, trace.Isochrone{T: t})
		}
		iso := &out[len(out)-1]
		iso.X = append(iso.X, x)
		iso.Z = append(iso.Z, z)
		iso.Slope = append(iso.Slope, slope)
	}
	return out, nil
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

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
