// Package link is the placement contract between the runtime core and the
// hardware: it lays out the initial stack pointer, the reset entry and the
// exception vector table at their architectural offsets in a flash image.
//
// Go functions have no stable target address on the host, so the image
// allocates one per handler and keeps a symbol table to resolve addresses
// back to handlers.
package link
