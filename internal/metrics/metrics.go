// Package metrics provides scalar summaries of field states, observed on
// run inputs and outputs.
package metrics

import "math"

// Metric observes flat field snapshots and reduces them to one number.
type Metric interface {
	Name() string
	Observe(values []float64)
	Value() float64
	Reset()
}

// Sum totals the field, the discrete mass. Conservative kernels (heat with
// periodic boundaries, blur with edge clamp) should hold it constant.
type Sum struct {
	last float64
}

func NewSum() *Sum { return &Sum{} }

func (s *Sum) Name() string { return "mass" }

func (s *Sum) Observe(values []float64) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	s.last = total
}

func (s *Sum) Value() float64 { return s.last }
func (s *Sum) Reset()         { s.last = 0 }

// MaxAbs tracks the largest absolute cell value of the latest observation.
type MaxAbs struct {
	last float64
}

func NewMaxAbs() *MaxAbs { return &MaxAbs{} }

func (m *MaxAbs) Name() string { return "max_abs" }

func (m *MaxAbs) Observe(values []float64) {
	peak := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	m.last = peak
}

func (m *MaxAbs) Value() float64 { return m.last }
func (m *MaxAbs) Reset()         { m.last = 0 }

// L2 tracks the Euclidean norm of the latest observation.
type L2 struct {
	last float64
}

func NewL2() *L2 { return &L2{} }

func (l *L2) Name() string { return "l2_norm" }

func (l *L2) Observe(values []float64) {
	sum := 0.0
	for _, v := range values {
		sum += v * v
	}
	l.last = math.Sqrt(sum)
}

func (l *L2) Value() float64 { return l.last }
func (l *L2) Reset()         { l.last = 0 }

// MassDrift measures the relative change in total mass between the first
// and the latest observation.
type MassDrift struct {
	initial float64
	current float64
	samples int
}

func NewMassDrift() *MassDrift { return &MassDrift{} }

func (m *MassDrift) Name() string { return "mass_drift" }

func (m *MassDrift) Observe(values []float64) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	if m.samples == 0 {
		m.initial = total
	}
	m.current = total
	m.samples++
}

func (m *MassDrift) Value() float64 {
	if m.initial == 0 {
		return 0
	}
	return math.Abs(m.current-m.initial) / math.Abs(m.initial)
}

func (m *MassDrift) Reset() {
	m.initial = 0
	m.current = 0
	m.samples = 0
}

// Defaults returns the standard metric set observed on every run.
func Defaults() []Metric {
	return []Metric{NewSum(), NewMaxAbs(), NewL2(), NewMassDrift()}
}
