// Package firmware holds the example programs run by the runtime core.
//
// Programs are board independent: each is built for a board description,
// and talks to the hardware only through the cortexm.Core it is started on.
// The same program links into a TinyGo binary or into an emulator image.
package firmware
