package quest

import (
	"math"
	"math/rand"
	"sync"
)

// Sampler draws the random parts of a quest. It is safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler wraps rng. Pass a seeded source for reproducible quests.
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// round rounds half away from zero for the non-negative values used here.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ComputeFocus scales strength (mean party level) onto a list of size
// entries. damp shifts the result down, so a damped list needs a stronger
// party to reach the same index.
func ComputeFocus(size int, damp, maxPartyLevel, strength float64) int {
	if size <= 0 || maxPartyLevel <= 0 || strength <= 0 || math.IsNaN(strength) {
		return 0
	}
	levelStep := maxPartyLevel / float64(size)
	dampRate := math.Max(levelStep-damp, 0) / levelStep
	return round(strength * dampRate / levelStep)
}

// Window returns the half-open index range [start, end) sampled for a list
// of size entries around focus. Bounds past either end are clipped, and the
// window always keeps at least one entry.
func Window(size int, scope float64, focus int) (int, int) {
	f := float64(focus)
	start := int(math.Floor((1 - scope) * f))
	end := int(math.Ceil((float64(size-1)-f)*scope + f + 1))

	if start < 0 {
		start = 0
	}
	if start > size-1 {
		start = size - 1
	}
	if end > size {
		end = size
	}
	if end <= start {
		end = start + 1
	}
	return start, end
}

// Locked runs fn with exclusive use of the random source.
func (s *Sampler) Locked(fn func(rng *rand.Rand)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.rng)
}

// Uniform returns a float in [lo, hi).
func (s *Sampler) Uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uniform(lo, hi)
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Between returns an int in [lo, hi].
func (s *Sampler) Between(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Intn returns an int in [0, n).
func (s *Sampler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Index picks an index of a size-entry list near focus. A scope above 1 is
// drawn from [scope-1, 1] and otherwise from [0, scope], then the window is
// sampled uniformly.
func (s *Sampler) Index(size int, scope float64, focus int) (int, error) {
	if size <= 0 {
		return 0, ErrEmptyList
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var effective float64
	if scope > 1 {
		effective = s.uniform(scope-1, 1)
	} else {
		effective = s.uniform(0, scope)
	}
	start, end := Window(size, effective, focus)
	return start + s.rng.Intn(end-start), nil
}

// Pick chooses an index of a size-entry list for a party of the given
// strength.
func (s *Sampler) Pick(size int, damp, scope, maxPartyLevel, strength float64) (int, error) {
	return s.Index(size, scope, ComputeFocus(size, damp, maxPartyLevel, strength))
}

// SampleWeighted picks an entry of list biased toward focus.
func SampleWeighted[T any](s *Sampler, list []T, scope float64, focus int) (T, error) {
	var zero T
	i, err := s.Index(len(list), scope, focus)
	if err != nil {
		return zero, err
	}
	return list[i], nil
}

// Steps returns how many steps a quest of the given level index takes.
func (s *Sampler) Steps(levelIndex int) int {
	n := float64(levelIndex + 1)
	lo := round(n * 0.4)
	hi := round(float64(round(n*1.6)) / 2)
	return s.Between(lo, hi) + 1
}

// Bonus computes the credits gained or lost on a quest of the given level,
// scaled by the width of that level's slice of the ladder.
func (s *Sampler) Bonus(ladder []int, levelIndex int) Bonus {
	if levelIndex < 0 || levelIndex >= len(ladder) {
		return Bonus{}
	}
	prev := 0
	if levelIndex > 0 {
		prev = ladder[levelIndex-1]
	}
	section := float64(ladder[levelIndex] - prev)
	k := float64(levelIndex + 2)

	s.mu.Lock()
	defer s.mu.Unlock()
	return Bonus{
		Increase: round(section / (k * k * k) * s.uniform(0.8, 1.2)),
		Deduct:   round(section / (k * k) * s.uniform(0.5, 0.9)),
	}
}
