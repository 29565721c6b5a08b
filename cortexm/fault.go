package cortexm

// FaultHandler is the terminal trap bound to every exception: signal the
// debugger, then stop forever. The interrupted program is never resumed.
func FaultHandler(core Core) {
	core.Breakpoint()
	core.Halt()
}
