package periph

// Spinner burns exactly one cycle per Nop, with an effect the optimizer
// must preserve.
type Spinner interface {
	Nop()
}

// Delay busy-waits for n iterations. It is a coarse timebase: elapsed time
// grows with n, but is not calibrated to any clock.
func Delay(s Spinner, n uint32) {
	for range n {
		s.Nop()
	}
}
