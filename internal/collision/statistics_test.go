package collision

import (
	"math"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/random"
)

// ksStatistic is the one-sample Kolmogorov-Smirnov distance to cdf.
func ksStatistic(samples []float64, cdf func(float64) float64) float64 {
	x := append([]float64(nil), samples...)
	sort.Float64s(x)
	n := float64(len(x))
	d := 0.0
	for i, v := range x {
		f := cdf(v)
		d = math.Max(d, math.Max(float64(i+1)/n-f, f-float64(i)/n))
	}
	return d
}

var _ = Describe("Engine", func() {
	const maxFrequency = 1e7

	var (
		en *Engine
		e  dynamo.Ensemble
	)

	newElectron := func(v dynamo.Vector) dynamo.Particle {
		p, err := dynamo.NewParticle(dynamo.ElectronMass, -dynamo.ElectronCharge, dynamo.Vector{}, v)
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	BeforeEach(func() {
		var err error
		en, err = NewEngine(Model{
			BackgroundMass: dynamo.ArgonMass,
			MaxFrequency:   maxFrequency,
			Frequency:      Constant(maxFrequency / 2),
		}, random.New(2024))
		Expect(err).NotTo(HaveOccurred())
		e = dynamo.Ensemble{newElectron(dynamo.Vec(1e5, 0, 0))}
	})

	Context("collision clock", func() {
		It("draws exponential inter-arrival times at the maximum frequency", func() {
			const n = 5000
			intervals := make([]float64, 0, n)
			last := e[0].NextCollisionTime
			for len(intervals) < n {
				Expect(en.Apply(e, math.Inf(1))).To(Succeed())
				intervals = append(intervals, e[0].NextCollisionTime-last)
				last = e[0].NextCollisionTime
			}

			exp := distuv.Exponential{Rate: maxFrequency}
			Expect(ksStatistic(intervals, exp.CDF)).To(BeNumerically("<", 1.63/math.Sqrt(n)))
			Expect(stat.Mean(intervals, nil)).To(BeNumerically("~", 1/maxFrequency, 0.05/maxFrequency))
		})

		It("initialises clocks from zero", func() {
			ensemble := make(dynamo.Ensemble, 2000)
			for i := range ensemble {
				ensemble[i] = newElectron(dynamo.Vector{})
			}
			en.InitCollisionTimes(ensemble)

			times := make([]float64, len(ensemble))
			for i := range ensemble {
				Expect(ensemble[i].NextCollisionTime).To(BeNumerically(">=", 0))
				times[i] = ensemble[i].NextCollisionTime
			}
			exp := distuv.Exponential{Rate: maxFrequency}
			Expect(ksStatistic(times, exp.CDF)).To(BeNumerically("<", 1.63/math.Sqrt(float64(len(times)))))
		})
	})

	Context("acceptance", func() {
		It("accepts a fraction equal to rate over maximum frequency", func() {
			for i := 0; i < 20000; i++ {
				Expect(en.Apply(e, math.Inf(1))).To(Succeed())
			}
			Expect(en.Stats.Events).To(Equal(20000))
			Expect(en.Stats.AcceptanceRatio()).To(BeNumerically("~", 0.5, 0.02))
		})

		It("rejects rates above the maximum frequency", func() {
			en.Model.Frequency = Constant(2 * maxFrequency)
			err := en.Apply(e, math.Inf(1))
			Expect(err).To(MatchError(ErrFrequencyBound))
			Expect(en.Stats.Events).To(BeZero())
		})
	})

	Context("hot background", func() {
		It("conserves pair momentum and energy", func() {
			rng := random.New(9)
			m, M := dynamo.ElectronMass, dynamo.ArgonMass
			for i := 0; i < 200; i++ {
				v := dynamo.Vec(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()).Mul(1e5)
				u := maxwellian(M, 11600, rng)

				v2, u2 := scatterPair(m, v, M, u, rng)

				p0 := v.Mul(m).Add(u.Mul(M))
				p1 := v2.Mul(m).Add(u2.Mul(M))
				Expect(p1.Sub(p0).Len()).To(BeNumerically("<", 1e-12*p0.Len()))

				k0 := m*v.Dot(v) + M*u.Dot(u)
				k1 := m*v2.Dot(v2) + M*u2.Dot(u2)
				Expect(math.Abs(k1-k0) / k0).To(BeNumerically("<", 1e-9))
			}
		})

		It("keeps a thermal population at the background temperature", func() {
			const temperature = 11600
			en.Model.Temperature = temperature
			en.Model.Frequency = Constant(maxFrequency)
			population := make(dynamo.Ensemble, 500)
			for i := range population {
				population[i] = newElectron(dynamo.Vector{})
			}
			SetThermalVelocities(population, temperature, random.New(77))
			for i := 0; i < 40; i++ {
				Expect(en.Apply(population, math.Inf(1))).To(Succeed())
			}

			var sumSq float64
			for i := range population {
				sumSq += population[i].Velocity.Dot(population[i].Velocity)
			}
			got := dynamo.ElectronMass * sumSq / float64(3*len(population)) / dynamo.KBoltzmann
			Expect(got).To(BeNumerically("~", temperature, 0.15*temperature))
		})
	})

	Context("cold background", func() {
		It("leaves the z velocity untouched", func() {
			e[0].Velocity = dynamo.Vec(1e5, 2e5, -3e4)
			en.Model.Frequency = Constant(maxFrequency)
			for i := 0; i < 100; i++ {
				Expect(en.Apply(e, math.Inf(1))).To(Succeed())
			}
			Expect(en.Stats.Collisions).To(Equal(100))
			Expect(e[0].Velocity[2]).To(Equal(-3e4))
		})
	})
})
