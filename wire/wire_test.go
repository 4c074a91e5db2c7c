package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestStringRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"a",
		"abc",
		"abcd",
		"wl_shm",
		"zwlr_layer_shell_v1",
		"héllo, wörld",
	}

	for _, test := range tests {
		want := 4 + (len(test)+1+3)/4*4
		if size := StringSize(test); size != want {
			t.Errorf("StringSize(%q) = %v, want %v", test, size, want)
		}

		buf := make([]byte, want)
		var woff int
		PutString(buf, test, &woff)
		if woff != want {
			t.Errorf("PutString(%q) advanced %v bytes, want %v", test, woff, want)
		}

		var roff int
		got, err := String(buf, &roff)
		if err != nil {
			t.Fatalf("String(%q): %v", test, err)
		}
		if got != test {
			t.Errorf("String() = %q, want %q", got, test)
		}
		if roff != woff {
			t.Errorf("String(%q) advanced %v bytes, PutString advanced %v", test, roff, woff)
		}
	}
}

func TestStringLayout(t *testing.T) {
	buf := make([]byte, StringSize("wl_shm"))
	var off int
	PutString(buf, "wl_shm", &off)

	var loff int
	length, _ := Uint32(buf, &loff)
	if length != 7 {
		t.Errorf("length field = %v, want 7", length)
	}
	if !bytes.Equal(buf[4:], []byte("wl_shm\x00\x00")) {
		t.Errorf("body = %q", buf[4:])
	}
}

func TestTruncated(t *testing.T) {
	var off int
	_, err := Uint32([]byte{1, 2, 3}, &off)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Uint32 on 3 bytes: got %v, want ErrTruncated", err)
	}
	if off != 0 {
		t.Errorf("offset moved to %v on failure", off)
	}

	buf := make([]byte, 8)
	off = 0
	PutUint32(buf, 100, &off)
	off = 0
	_, err = String(buf, &off)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("String with oversized length: got %v, want ErrTruncated", err)
	}

	off = 0
	_, err = Uint16([]byte{1}, &off)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Uint16 on 1 byte: got %v, want ErrTruncated", err)
	}
}

func TestStringNotTerminated(t *testing.T) {
	buf := make([]byte, 8)
	var off int
	PutUint32(buf, 4, &off)
	copy(buf[4:], "abcd")

	off = 0
	_, err := String(buf, &off)
	var merr MalformedError
	if !errors.As(err, &merr) {
		t.Fatalf("got %v, want MalformedError", err)
	}
}

func TestScalars(t *testing.T) {
	buf := make([]byte, 10)
	var off int
	PutUint32(buf, 0xDEADBEEF, &off)
	PutInt32(buf, -5, &off)
	PutUint16(buf, 0xCAFE, &off)
	if off != len(buf) {
		t.Fatalf("wrote %v bytes, want %v", off, len(buf))
	}

	off = 0
	u, _ := Uint32(buf, &off)
	i, _ := Int32(buf, &off)
	s, _ := Uint16(buf, &off)
	if (u != 0xDEADBEEF) || (i != -5) || (s != 0xCAFE) {
		t.Errorf("got %#x, %v, %#x", u, i, s)
	}
}

func TestHeader(t *testing.T) {
	buf := make([]byte, HeaderSize)
	var off int
	PutHeader(buf, Header{Sender: 3, Op: 6, Size: 12}, &off)

	off = 0
	h, err := ReadHeader(buf, &off)
	if err != nil {
		t.Fatal(err)
	}
	if h != (Header{Sender: 3, Op: 6, Size: 12}) {
		t.Errorf("got %+v", h)
	}
}

func TestMessageBuilderSize(t *testing.T) {
	tests := []struct {
		name  string
		build func(*MessageBuilder)
		size  int
	}{
		{"empty", func(*MessageBuilder) {}, 8},
		{"uint", func(mb *MessageBuilder) { mb.WriteUint(2) }, 12},
		{
			"bind",
			func(mb *MessageBuilder) {
				mb.WriteUint(1)
				mb.WriteString("wl_compositor")
				mb.WriteUint(4)
				mb.WriteUint(5)
			},
			8 + 4 + 4 + 16 + 4 + 4,
		},
		{
			"mixed",
			func(mb *MessageBuilder) {
				mb.WriteInt(-1)
				mb.WriteString("")
				mb.WriteObject(0)
			},
			8 + 4 + 8 + 4,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mb := NewMessage(2, 1)
			test.build(mb)

			if mb.Size() != test.size {
				t.Errorf("Size() = %v, want %v", mb.Size(), test.size)
			}
			data, err := mb.Bytes()
			if err != nil {
				t.Fatal(err)
			}
			if len(data) != test.size {
				t.Errorf("len(Bytes()) = %v, want %v", len(data), test.size)
			}

			var off int
			h, _ := ReadHeader(data, &off)
			if int(h.Size) != len(data) {
				t.Errorf("header size = %v, actual %v", h.Size, len(data))
			}
			if (h.Sender != 2) || (h.Op != 1) {
				t.Errorf("header = %+v", h)
			}
		})
	}
}

func TestMessageBuilderTooLarge(t *testing.T) {
	mb := NewMessage(1, 0)
	mb.WriteString(string(make([]byte, MaxMessageSize)))
	_, err := mb.Bytes()
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
}

func TestArray(t *testing.T) {
	buf := make([]byte, 16)
	var off int
	PutUint32(buf, 5, &off)
	copy(buf[off:], []byte{1, 2, 3, 4, 5})

	off = 0
	data, err := Array(buf, &off)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("Array() = %v", data)
	}
	if off != 12 {
		t.Fatalf("offset after array = %v, want 12", off)
	}

	off = 0
	_, err = Array(buf[:8], &off)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if off != 0 {
		t.Fatalf("offset moved to %v on failure", off)
	}
}
