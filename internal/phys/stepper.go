package phys

// FixedStep is the simulation step size. The fixed step exists for
// stability under a variable-rate caller, not for cross-machine
// determinism.
const FixedStep = 1.0 / 60.0

// FixedStepScheduler accumulates real frame time and converts it into
// whole fixed steps. The remainder between steps is exposed as the
// interpolation alpha so render code can blend transforms.
type FixedStepScheduler struct {
	accumulator float64
}

// Advance adds realDT to the accumulator and invokes step for every full
// FixedStep it covers. Returns the number of steps taken; stops early on a
// step error, leaving the remaining time accumulated.
func (s *FixedStepScheduler) Advance(realDT float64, step func(dt float32) error) (int, error) {
	s.accumulator += realDT
	steps := 0
	for s.accumulator >= FixedStep {
		if err := step(float32(FixedStep)); err != nil {
			return steps, err
		}
		s.accumulator -= FixedStep
		steps++
	}
	return steps, nil
}

// Alpha is the fractional position inside the current step, in [0, 1).
func (s *FixedStepScheduler) Alpha() float64 {
	return s.accumulator / FixedStep
}
