// Package export serializes solved jobs for the downstream plotting and
// analysis collaborators.
package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/cstarkjp/GME/internal/composite"
	"github.com/cstarkjp/GME/internal/trace"
)

type familyData struct {
	Name   string      `json:"name"`
	Regime string      `json:"regime"`
	Rays   []rayData   `json:"rays"`
	Failed []int       `json:"failed,omitempty"`
}

type rayData struct {
	SeedTime float64     `json:"seed_time"`
	SeedX    float64     `json:"seed_x"`
	Times    []float64   `json:"times"`
	States   [][]float64 `json:"states"`
}

type isochroneData struct {
	T     float64   `json:"t"`
	X     []float64 `json:"x"`
	Z     []float64 `json:"z"`
	Slope []float64 `json:"slope"`
}

type knickData struct {
	SeedTime float64   `json:"seed_time"`
	Phase    string    `json:"phase"`
	Times    []float64 `json:"times"`
	X        []float64 `json:"x"`
	Z        []float64 `json:"z"`
}

type solutionData struct {
	Fingerprint string          `json:"fingerprint"`
	EndTime     float64         `json:"end_time"`
	Families    []familyData    `json:"families"`
	Isochrones  []isochroneData `json:"isochrones"`
	Knickpoints []knickData     `json:"knickpoints"`
}

// JSON writes the full solution to w, indented.
func JSON(w io.Writer, sol *composite.Solution) error {
	data := solutionData{
		Fingerprint: sol.Fingerprint,
		EndTime:     sol.TEnd,
	}

	for _, fam := range sol.Families {
		fd := familyData{Name: fam.Name, Regime: fam.Regime.String()}
		for i := range fam.Trajectories {
			tr := &fam.Trajectories[i]
			rd := rayData{SeedTime: tr.SeedTime, SeedX: tr.SeedX, Times: tr.Times}
			for _, st := range tr.States {
				rd.States = append(rd.States, st)
			}
			fd.Rays = append(fd.Rays, rd)
		}
		for _, f := range fam.Failures {
			fd.Failed = append(fd.Failed, f.Index)
		}
		data.Families = append(data.Families, fd)
	}
	for _, iso := range sol.Isochrones {
		data.Isochrones = append(data.Isochrones, isochroneData{T: iso.T, X: iso.X, Z: iso.Z, Slope: iso.Slope})
	}
	for _, kp := range sol.Knickpoints {
		data.Knickpoints = append(data.Knickpoints, knickData{
			SeedTime: kp.SeedTime,
			Phase:    kp.Phase.String(),
			Times:    kp.Times,
			X:        kp.X,
			Z:        kp.Z,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// JSONFile writes the solution to path.
func JSONFile(path string, sol *composite.Solution) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return JSON(f, sol)
}

// Isochrones writes just the isochrone sequence to w, indented.
func Isochrones(w io.Writer, isochrones []trace.Isochrone) error {
	data := make([]isochroneData, 0, len(isochrones))
	for _, iso := range isochrones {
		data = append(data, isochroneData{T: iso.T, X: iso.X, Z: iso.Z, Slope: iso.Slope})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
