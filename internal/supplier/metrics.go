package supplier

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Metrics are service-quality figures for one supplier.
type Metrics struct {
	OnTimeDelivery float64 // percent, 0-100
	QualityRating  float64 // 0-5
}

// MetricsProvider supplies delivery and quality metrics. The purchase sheets
// carry neither, so these come from outside the derivation.
type MetricsProvider interface {
	Metrics(supplier string) Metrics
}

// RandomMetrics reproduces the placeholder figures shown before real delivery
// tracking existed: on-time 80-100 % and quality 3.0-5.0, redrawn on every call.
// Classification built on it is not stable across requests.
type RandomMetrics struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomMetrics(seed int64) *RandomMetrics {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomMetrics{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomMetrics) Metrics(string) Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Metrics{
		OnTimeDelivery: round1(80 + p.rng.Float64()*20),
		QualityRating:  round1(3 + p.rng.Float64()*2),
	}
}

// StaticMetrics returns fixed figures per supplier, with Default for the rest.
type StaticMetrics struct {
	BySupplier map[string]Metrics
	Default    Metrics
}

func (p StaticMetrics) Metrics(supplier string) Metrics {
	if m, ok := p.BySupplier[supplier]; ok {
		return m
	}
	return p.Default
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
