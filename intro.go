package elegy

// Intro overlay phase boundaries, in seconds from launch.
const (
	introTaglineAt = 4.0
	introGuideAt   = 8.0
	introEndsAt    = 16.0
)

// intro sequences the opening overlay: title, tagline, then the gesture
// guide, auto-advancing on a timer. The first interaction ends it early;
// the performance runs underneath either way.
type intro struct {
	elapsed float64
	done    bool
}

func (in *intro) tick(dt float64) {
	if in.done {
		return
	}
	in.elapsed += dt
	if in.elapsed >= introEndsAt {
		in.done = true
	}
}

func (in *intro) skip() {
	in.done = true
}

// lines returns the overlay text for the current phase, or nil once the
// intro has played out.
func (in *intro) lines() []string {
	switch {
	case in.done:
		return nil
	case in.elapsed < introTaglineAt:
		return []string{"CHROMATIC ELEGY"}
	case in.elapsed < introGuideAt:
		return []string{"a requiem in light"}
	default:
		return []string{
			"touch and drag to paint",
			"tap to detonate",
			"two-finger tap to jump acts",
		}
	}
}
