package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/wcsph/internal/config"
	"github.com/san-kum/wcsph/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	seriesFile   = "metrics.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string         `json:"id"`
	Preset    string         `json:"preset"`
	Timestamp time.Time      `json:"timestamp"`
	Seed      int64          `json:"seed"`
	Frames    int            `json:"frames"`
	SimTime   float64        `json:"sim_time"`
	Elapsed   time.Duration  `json:"elapsed"`
	Config    *config.Config `json:"config"`
	Metrics   Metrics        `json:"metrics"`
}

// FrameRecord is one particle of one recorded frame, in display space.
type FrameRecord struct {
	Frame    int     `csv:"frame"`
	Time     float64 `csv:"time"`
	Particle int     `csv:"particle"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
}

// SeriesRecord is one metric value for one frame.
type SeriesRecord struct {
	Frame  int     `csv:"frame"`
	Metric string  `csv:"metric"`
	Value  float64 `csv:"value"`
}

// Save writes a run directory holding metadata, recorded frames and
// metric series, and returns the run id. A failed save removes the run
// directory.
func (s *Store) Save(preset string, cfg *config.Config, result *sim.Result) (runID string, err error) {
	now := s.now()
	runID = runName(preset, now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: now,
		Seed:      result.Seed,
		Frames:    result.FramesRun,
		SimTime:   result.Time,
		Elapsed:   result.Elapsed,
		Config:    cfg,
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	frames := make([]*FrameRecord, 0)
	for _, f := range result.Frames {
		for i, p := range f.Points {
			frames = append(frames, &FrameRecord{Frame: f.Index, Time: f.Time, Particle: i, X: p.X, Y: p.Y})
		}
	}
	if err := writeCSV(filepath.Join(runDir, framesFile), &frames); err != nil {
		return "", err
	}

	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]*SeriesRecord, 0)
	for _, name := range names {
		for i, v := range result.Series[name] {
			series = append(series, &SeriesRecord{Frame: i, Metric: name, Value: v})
		}
	}
	if err := writeCSV(filepath.Join(runDir, seriesFile), &series); err != nil {
		return "", err
	}

	return runID, nil
}

func runName(preset string, t time.Time) string {
	return fmt.Sprintf("%s_%s", preset, t.Format("20060102-150405.000000"))
}

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
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames returns the recorded frames of a run in frame order.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	var records []*FrameRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, framesFile), &records); err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	for _, r := range records {
		if len(frames) == 0 || frames[len(frames)-1].Index != r.Frame {
			frames = append(frames, sim.Frame{Index: r.Frame, Time: r.Time})
		}
		f := &frames[len(frames)-1]
		f.Points = append(f.Points, r2.Vec{X: r.X, Y: r.Y})
	}
	return frames, nil
}

// LoadSeries returns the per-frame values of every stored metric.
func (s *Store) LoadSeries(runID string) (map[string][]float64, error) {
	var records []*SeriesRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, seriesFile), &records); err != nil {
		return nil, err
	}

	series := make(map[string][]float64)
	for _, r := range records {
		series[r.Metric] = append(series[r.Metric], r.Value)
	}
	return series, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func writeCSV(path string, records any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := gocsv.MarshalFile(records, f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}
