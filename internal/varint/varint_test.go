package varint

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		v      uint64
		nbytes int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{1<<32 - 1, 5},
		{1<<64 - 1, 10},
	}
	for _, c := range cases {
		buf := Encode(nil, c.v)
		if len(buf) != c.nbytes {
			t.Errorf("Encode(%d): got %d bytes, want %d", c.v, len(buf), c.nbytes)
		}
		got, n, err := Decode(buf)
		if err != nil {
			t.Fatalf("Decode(%d): unexpected error %v", c.v, err)
		}
		if n != c.nbytes {
			t.Errorf("Decode(%d): consumed %d bytes, want %d", c.v, n, c.nbytes)
		}
		if got != c.v {
			t.Errorf("Decode round trip: got %d, want %d", got, c.v)
		}
	}
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	values := []uint64{0, 1, 127, 128, 300, 16384, 1 << 40}
	for _, v := range values {
		if err := Write(&buf, v); err != nil {
			t.Fatalf("Write(%d): %v", v, err)
		}
	}
	for _, want := range values {
		got, err := Read(&buf)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if got != want {
			t.Errorf("Read: got %d, want %d", got, want)
		}
	}
}

func TestDecodeOverflow(t *testing.T) {
	buf := bytes.Repeat([]byte{0x80}, MaxBytes)
	_, _, err := Decode(buf)
	if err != ErrOverflow {
		t.Errorf("Decode: got err %v, want ErrOverflow", err)
	}
}

func TestReadOverflow(t *testing.T) {
	buf := bytes.NewReader(bytes.Repeat([]byte{0x80}, MaxBytes))
	_, err := Read(buf)
	if err != ErrOverflow {
		t.Errorf("Read: got err %v, want ErrOverflow", err)
	}
}

func TestDecodeShort(t *testing.T) {
	_, _, err := Decode([]byte{0x80, 0x80})
	if err == nil {
		t.Error("Decode: expected error on truncated input")
	}
}
