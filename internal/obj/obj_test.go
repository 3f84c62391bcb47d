package obj

import (
	"encoding"
	"errors"
	"testing"

	"github.com/omzn/casl2/internal/vm"
)

var (
	_ encoding.BinaryMarshaler   = (*Object)(nil)
	_ encoding.BinaryUnmarshaler = (*Object)(nil)
)

func TestObject_RoundTrip(t *testing.T) {
	t.Parallel()

	want := &Object{
		Entry: 0x0003,
		Image: []vm.Word{0x1410, 0x0005, 0x8100, 0x002A},
	}

	bs, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if len(bs) != headerLen+len(want.Image)*2 {
		t.Fatalf("marshaled length = %d, want %d", len(bs), headerLen+len(want.Image)*2)
	}

	got := &Object{}
	if err := got.UnmarshalBinary(bs); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if got.Entry != want.Entry {
		t.Errorf("Entry = %s, want %s", got.Entry, want.Entry)
	}

	if len(got.Image) != len(want.Image) {
		t.Fatalf("Image len = %d, want %d", len(got.Image), len(want.Image))
	}

	for i := range want.Image {
		if got.Image[i] != want.Image[i] {
			t.Errorf("Image[%d] = %s, want %s", i, got.Image[i], want.Image[i])
		}
	}
}

func TestObject_HeaderOnly(t *testing.T) {
	t.Parallel()

	o := &Object{Entry: 0x1234}

	bs, err := o.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if string(bs[0:4]) != Magic {
		t.Fatalf("magic = %q, want %q", bs[0:4], Magic)
	}

	for i := 6; i < headerLen; i++ {
		if bs[i] != 0 {
			t.Fatalf("reserved byte %d = %#x, want 0", i, bs[i])
		}
	}
}

func TestObject_UnmarshalBinary_Errors(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		data []byte
	}{
		{"too short", []byte("CASL")},
		{"bad magic", append([]byte("NOPE\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"))},
		{"odd trailing bytes", append([]byte("CASL\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"), 0x01)},
	}

	for _, tc := range tcs {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			o := &Object{}
			err := o.UnmarshalBinary(tc.data)

			if !errors.Is(err, ErrFormat) {
				t.Fatalf("UnmarshalBinary(%q) error = %v, want wrapping ErrFormat", tc.name, err)
			}
		})
	}
}

func TestObject_Load(t *testing.T) {
	t.Parallel()

	o := &Object{
		Entry: 0x0002,
		Image: []vm.Word{0x1410, 0x0005, 0x8100},
	}

	var mem vm.Memory

	entry := o.Load(&mem)

	if entry != o.Entry {
		t.Errorf("Load entry = %s, want %s", entry, o.Entry)
	}

	for i, w := range o.Image {
		if got := mem.Load(vm.Word(i)); got != w {
			t.Errorf("mem[%d] = %s, want %s", i, got, w)
		}
	}
}
