// Package trace stores emulator event traces in a file: a packed header,
// then a snappy compressed stream of packed events.
package trace

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/ezrec/mcucore/emulator"
)

const (
	TRACE_MAGIC   = "MCUT"
	TRACE_VERSION = 1
)

// Header of a trace file.
type Header struct {
	// MAGIC ("MCUT")
	Magic string `struc:"[4]byte"`
	// File format version.
	Version uint32
	// Board name. Right-null-padded.
	Board string `struc:"[32]byte"`
	// Program name. Right-null-padded.
	Program string `struc:"[32]byte"`
}

// record is the stored form of an event.
type record struct {
	Cycle uint64
	Kind  uint8
	Addr  uint32
	Value uint64
}

var order = binary.LittleEndian

// Writer is an emulator.Tracer that writes a trace file.
type Writer struct {
	w, zw io.WriteCloser
	err   error
	count int
}

var _ emulator.Tracer = (*Writer)(nil)

// NewWriter writes the header, and starts the event stream.
func NewWriter(w io.WriteCloser, board string, program string) (*Writer, error) {
	header := &Header{
		Magic:   TRACE_MAGIC,
		Version: TRACE_VERSION,
		Board:   board,
		Program: program,
	}
	if err := struc.PackWithOrder(w, header, order); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	zw := snappy.NewBufferedWriter(w)
	return &Writer{w: w, zw: zw}, nil
}

// Trace writes one event. The first error stops the stream, and is
// returned by Close.
func (t *Writer) Trace(ev emulator.Event) {
	if t.err != nil {
		return
	}
	rec := &record{Cycle: ev.Cycle, Kind: uint8(ev.Kind), Addr: ev.Addr, Value: ev.Value}
	if err := struc.PackWithOrder(t.zw, rec, order); err != nil {
		t.err = errors.Wrap(err, "failed to pack event")
		return
	}
	t.count++
}

// Count returns the number of events written.
func (t *Writer) Count() int {
	return t.count
}

// Close flushes the event stream and closes the file.
func (t *Writer) Close() (err error) {
	err = t.err
	if zerr := t.zw.Close(); err == nil && zerr != nil {
		err = errors.Wrap(zerr, "failed to flush events")
	}
	if cerr := t.w.Close(); err == nil {
		err = cerr
	}
	return
}

// Reader reads a trace file.
type Reader struct {
	r      io.ReadCloser
	zr     *snappy.Reader
	Header Header
}

// NewReader reads and checks the header.
func NewReader(r io.ReadCloser) (*Reader, error) {
	t := &Reader{r: r}
	if err := struc.UnpackWithOrder(r, &t.Header, order); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if t.Header.Magic != TRACE_MAGIC {
		return nil, errors.New("invalid trace file magic")
	}
	if t.Header.Version != TRACE_VERSION {
		return nil, errors.Errorf("unsupported trace file version %d", t.Header.Version)
	}
	t.Header.Board = strings.TrimRight(t.Header.Board, "\x00")
	t.Header.Program = strings.TrimRight(t.Header.Program, "\x00")
	t.zr = snappy.NewReader(r)
	return t, nil
}

// Next returns the next event, or io.EOF at the end of the stream.
func (t *Reader) Next() (ev emulator.Event, err error) {
	var rec record
	err = struc.UnpackWithOrder(t.zr, &rec, order)
	if err != nil {
		if err != io.EOF {
			err = errors.Wrap(err, "failed to unpack event")
		}
		return
	}
	ev = emulator.Event{Cycle: rec.Cycle, Kind: emulator.Kind(rec.Kind), Addr: rec.Addr, Value: rec.Value}
	return
}

// Close the trace file.
func (t *Reader) Close() error {
	t.zr.Reset(nil)
	return t.r.Close()
}
