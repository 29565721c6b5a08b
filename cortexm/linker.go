package cortexm

// Section names of the placement contract.
const (
	SECTION_STACK      = ".stack"      // Initial stack pointer word.
	SECTION_RESET      = ".reset"      // Reset entry address word.
	SECTION_EXCEPTIONS = ".exceptions" // Exception vector table.
)

// Section offsets from the start of the vector area.
const (
	OFFSET_STACK      = 0x00
	OFFSET_RESET      = 0x04
	OFFSET_EXCEPTIONS = 0x08
)

// Linker places the runtime core where the hardware expects it. Placement
// is a link time contract; nothing placed is ever called by software.
type Linker interface {
	// PlaceStack sets the initial stack pointer.
	PlaceStack(top uint32) error
	// PlaceReset sets the reset entry.
	PlaceReset(entry Handler) error
	// PlaceExceptions sets the exception vector table.
	PlaceExceptions(vt *VectorTable) error
}
