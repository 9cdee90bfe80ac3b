package storage

import (
	"encoding/json"
	"io"
)

// ExportData is the self-contained JSON form of a stored run.
type ExportData struct {
	Metadata *RunMetadata       `json:"metadata"`
	Frames   []ExportFrame      `json:"frames"`
	Series   map[string][]Float `json:"series"`
}

type ExportFrame struct {
	Index  int          `json:"index"`
	Time   float64      `json:"time"`
	Points [][2]float64 `json:"points"`
}

// ExportJSON writes a stored run to w as indented JSON.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Metadata: meta,
		Frames:   make([]ExportFrame, len(frames)),
		Series:   make(map[string][]Float, len(series)),
	}
	for name, vs := range series {
		data.Series[name] = floats(vs)
	}
	for i, f := range frames {
		pts := make([][2]float64, len(f.Points))
		for j, p := range f.Points {
			pts[j] = [2]float64{p.X, p.Y}
		}
		data.Frames[i] = ExportFrame{Index: f.Index, Time: f.Time, Points: pts}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
