// Package obj implements the CASL object file format: the bit-exact, fixed-layout binary
// container that pass 2 writes and the loader reads back. Unlike elsie's Intel-Hex-derived
// internal/encoding package, there is no textual framing or checksum here — the format is a
// 16-byte header followed by a flat stream of big-endian words — so obj marshals it directly
// with encoding/binary rather than adapting the hex encoder's record structure.
package obj

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/omzn/casl2/internal/vm"
)

// Magic is the four-byte signature at the start of every object file.
const Magic = "CASL"

const headerLen = 16

// Object is a fully-resolved program image: an entry point and a dense slice of words starting
// at address 0. Pass 2 builds one from the assembled syntax table; the loader builds one by
// reading a file.
type Object struct {
	Entry vm.Word
	Image []vm.Word
}

type formatError struct{}

func (formatError) Error() string { return "object file format error" }

func (fe *formatError) Is(err error) bool {
	if fe == err {
		return true
	}
	_, ok := err.(*formatError)
	return ok
}

// ErrFormat is a wrapped error returned for any malformed object file.
var ErrFormat = &formatError{}

// MarshalBinary renders the object as header-plus-image, per the fixed CASL format.
func (o *Object) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerLen+len(o.Image)*2)

	copy(buf[0:4], Magic)
	binary.BigEndian.PutUint16(buf[4:6], uint16(o.Entry))
	// buf[6:16] is reserved and left zero.

	for i, w := range o.Image {
		binary.BigEndian.PutUint16(buf[headerLen+i*2:headerLen+i*2+2], uint16(w))
	}

	return buf, nil
}

// UnmarshalBinary parses an object file previously produced by MarshalBinary.
func (o *Object) UnmarshalBinary(data []byte) error {
	if len(data) < headerLen {
		return fmt.Errorf("%w: file shorter than header (%d bytes)", ErrFormat, len(data))
	}

	if !bytes.Equal(data[0:4], []byte(Magic)) {
		return fmt.Errorf("%w: bad magic %q", ErrFormat, data[0:4])
	}

	body := data[headerLen:]
	if len(body)%2 != 0 {
		return fmt.Errorf("%w: image is not a whole number of words (%d bytes)", ErrFormat, len(body))
	}

	o.Entry = vm.Word(binary.BigEndian.Uint16(data[4:6]))
	o.Image = make([]vm.Word, len(body)/2)

	for i := range o.Image {
		o.Image[i] = vm.Word(binary.BigEndian.Uint16(body[i*2 : i*2+2]))
	}

	return nil
}

// ReadFrom reads and parses an entire object file, the shape comet2's loader uses to bring a
// file into the VM.
func ReadFrom(r io.Reader) (*Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	o := &Object{}
	if err := o.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	return o, nil
}

// Load installs the object's image into mem starting at address 0 and returns its entry point.
func (o *Object) Load(mem *vm.Memory) vm.Word {
	for i, w := range o.Image {
		mem.Store(vm.Word(i), w)
	}

	return o.Entry
}
