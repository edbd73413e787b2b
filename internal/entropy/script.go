package entropy

// Script is a Source that replays queued raw Intn results, then defers to a
// fallback generator. Values are clamped into [0, n) of the request.
// Used to force specific rolls in tests.
type Script struct {
	Values   []int
	Fallback Source
}

// NewScript returns a Script that replays values and then draws from seed.
func NewScript(seed int64, values ...int) *Script {
	return &Script{Values: values, Fallback: New(seed).src}
}

// Intn implements Source.
func (s *Script) Intn(n int) int {
	if len(s.Values) == 0 {
		if s.Fallback == nil {
			return 0
		}
		return s.Fallback.Intn(n)
	}
	v := s.Values[0]
	s.Values = s.Values[1:]
	if v < 0 {
		v = 0
	}
	if v >= n {
		v = n - 1
	}
	return v
}

// Push appends raw values to the replay queue.
func (s *Script) Push(values ...int) {
	s.Values = append(s.Values, values...)
}
