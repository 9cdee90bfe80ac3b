package sim_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wcsph/internal/sim"
	"github.com/san-kum/wcsph/internal/sph"
	"gonum.org/v1/gonum/spatial/r2"
)

type countingMetric struct {
	frames int
	last   float64
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(s sim.Sample) {
	c.frames++
	c.last = s.Time
}
func (c *countingMetric) Current() float64 { return c.last }
func (c *countingMetric) Value() float64   { return float64(c.frames) }
func (c *countingMetric) Reset()           { c.frames, c.last = 0, 0 }

type recordingObserver struct{ indices []int }

func (r *recordingObserver) OnFrame(s sim.Sample) { r.indices = append(r.indices, s.Index) }

func quietSolver(n int, seed int64) *sph.Solver {
	prm := sph.DefaultParams()
	prm.N = n
	prm.Gravity = r2.Vec{}
	prm.Stiffness = 0
	prm.ForcingScale = 0
	s, err := sph.NewSolver(prm, rand.New(rand.NewSource(seed)), sph.WithSubsteps(2))
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Simulator", func() {
	var (
		solver    *sph.Solver
		simulator *sim.Simulator
		metric    *countingMetric
	)

	BeforeEach(func() {
		solver = quietSolver(20, 1)
		simulator = sim.New(solver)
		simulator.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
		metric = &countingMetric{}
		simulator.AddMetric(metric)
	})

	Describe("Run", func() {
		It("runs the requested number of frames", func() {
			result, err := simulator.Run(context.Background(), sim.Config{Frames: 5, RecordEvery: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.FramesRun).To(Equal(5))
			Expect(solver.Steps()).To(Equal(10))
			Expect(result.Time).To(BeNumerically("~", 10*solver.Params().Dt, 1e-12))
			Expect(result.Frames).To(HaveLen(5))
			Expect(result.Frames[4].Points).To(HaveLen(20))
		})

		It("records every k-th frame", func() {
			result, err := simulator.Run(context.Background(), sim.Config{Frames: 7, RecordEvery: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Frames).To(HaveLen(3))
			Expect(result.Frames[1].Index).To(Equal(3))
		})

		It("records nothing when the interval is zero", func() {
			result, err := simulator.Run(context.Background(), sim.Config{Frames: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Frames).To(BeEmpty())
		})

		It("feeds metrics and keeps a per-frame series", func() {
			result, err := simulator.Run(context.Background(), sim.Config{Frames: 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Metrics).To(HaveKeyWithValue("count", 4.0))
			Expect(result.Series["count"]).To(HaveLen(4))
			Expect(result.Series["count"][3]).To(BeNumerically(">", result.Series["count"][0]))
		})

		It("notifies observers in frame order", func() {
			obs := &recordingObserver{}
			simulator.AddObserver(obs)
			_, err := simulator.Run(context.Background(), sim.Config{Frames: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.indices).To(Equal([]int{0, 1, 2}))
		})

		It("rejects invalid configurations", func() {
			for _, cfg := range []sim.Config{{Frames: 0}, {Frames: -1}, {Frames: 1, RecordEvery: -1}} {
				_, err := simulator.Run(context.Background(), cfg)
				Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())
			}
		})

		It("stops on cancellation with a partial result", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			result, err := simulator.Run(ctx, sim.Config{Frames: 10})
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.FramesRun).To(Equal(0))
		})

		It("reports instability once the state is not finite", func() {
			solver.Particles().Vel[3] = r2.Vec{X: math.NaN()}
			result, err := simulator.Run(context.Background(), sim.Config{Frames: 10, ValidateState: true})
			Expect(errors.Is(err, sim.ErrUnstable)).To(BeTrue())

			var simErr *sim.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Frame).To(Equal(0))
			Expect(result.FramesRun).To(Equal(0))
		})

		It("keeps going when validation is off", func() {
			solver.Particles().Vel[3] = r2.Vec{X: math.NaN()}
			result, err := simulator.Run(context.Background(), sim.Config{Frames: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.FramesRun).To(Equal(2))
		})
	})

	Describe("RunWithCallback", func() {
		It("streams frames until the callback declines", func() {
			seen := 0
			err := simulator.RunWithCallback(context.Background(), sim.Config{}, func(f sim.Frame) bool {
				Expect(f.Points).To(HaveLen(20))
				Expect(f.Index).To(Equal(seen))
				seen++
				return seen < 6
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal(6))
		})

		It("stops after the frame limit", func() {
			seen := 0
			err := simulator.RunWithCallback(context.Background(), sim.Config{Frames: 3}, func(sim.Frame) bool {
				seen++
				return true
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal(3))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one simulation per seed", func() {
		factory := func(seed int64) (*sim.Simulator, error) {
			s := sim.New(quietSolver(10, seed))
			s.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
			return s, nil
		}
		results, err := sim.NewEnsemble(factory, 4, 100).Run(context.Background(), sim.Config{Frames: 2, RecordEvery: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, r := range results {
			Expect(r.Seed).To(Equal(int64(100 + i)))
			Expect(r.FramesRun).To(Equal(2))
		}
		Expect(results[0].Frames[0].Points).NotTo(Equal(results[1].Frames[0].Points))
	})

	It("returns factory errors", func() {
		boom := errors.New("boom")
		factory := func(seed int64) (*sim.Simulator, error) {
			if seed == 2 {
				return nil, boom
			}
			s := sim.New(quietSolver(5, seed))
			s.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
			return s, nil
		}
		_, err := sim.NewEnsemble(factory, 3, 0).Run(context.Background(), sim.Config{Frames: 1})
		Expect(err).To(MatchError(boom))
	})
})
