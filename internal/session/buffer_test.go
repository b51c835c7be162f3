package session

import "testing"

func u16(s string) []uint16 {
	out := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = uint16(s[i])
	}
	return out
}

func TestBufferInsertShifts(t *testing.T) {
	var b Buffer
	b.Set(u16("ac"))
	if !b.Insert(1, 'b') {
		t.Fatal("Insert failed")
	}
	if b.String() != "abc" {
		t.Errorf("got %q, want %q", b.String(), "abc")
	}
	b.Insert(-5, 'x')
	b.Insert(99, 'y')
	if b.String() != "xabcy" {
		t.Errorf("clamped inserts: got %q, want %q", b.String(), "xabcy")
	}
}

func TestBufferInsertFull(t *testing.T) {
	var b Buffer
	for i := 0; i < MaxOutputLength; i++ {
		if !b.Insert(b.Len(), 'a') {
			t.Fatalf("Insert %d failed below capacity", i)
		}
	}
	if b.Insert(0, 'x') {
		t.Error("Insert succeeded at capacity")
	}
	if b.Len() != MaxOutputLength {
		t.Errorf("Len = %d, want %d", b.Len(), MaxOutputLength)
	}
}

func TestBufferInsertSliceTruncates(t *testing.T) {
	var b Buffer
	big := make([]uint16, MaxOutputLength)
	for i := range big {
		big[i] = 'z'
	}
	b.Set(u16("ab"))
	n := b.InsertSlice(1, big)
	if n != MaxOutputLength-2 {
		t.Errorf("inserted %d, want %d", n, MaxOutputLength-2)
	}
	if b.Len() != MaxOutputLength {
		t.Errorf("Len = %d, want %d", b.Len(), MaxOutputLength)
	}
	if b.At(0) != 'a' || b.At(b.Len()-1) != 'b' {
		t.Error("surrounding chars displaced")
	}
}

func TestBufferDeleteRange(t *testing.T) {
	var b Buffer
	b.Set(u16("abcdef"))
	b.DeleteRange(2, 4)
	if b.String() != "abef" {
		t.Errorf("got %q, want %q", b.String(), "abef")
	}
	b.DeleteRange(3, 3)
	b.DeleteRange(4, 2)
	if b.String() != "abef" {
		t.Errorf("empty/inverted range changed buffer: %q", b.String())
	}
	b.DeleteRange(-3, 99)
	if b.Len() != 0 {
		t.Errorf("clamped full delete left %d units", b.Len())
	}
}

func TestBufferAt(t *testing.T) {
	var b Buffer
	b.Set(u16("xy"))
	if b.At(-1) != 0 || b.At(2) != 0 {
		t.Error("out-of-range At != 0")
	}
	if b.At(1) != 'y' {
		t.Errorf("At(1) = %c", b.At(1))
	}
}

func TestBufferStringDecodesUTF16(t *testing.T) {
	var b Buffer
	b.Set([]uint16{'h', 0x00E9, 'y'}) // hey with é
	if b.String() != "héy" {
		t.Errorf("got %q", b.String())
	}
}

func TestBufferSetTruncates(t *testing.T) {
	var b Buffer
	src := make([]uint16, MaxOutputLength+10)
	b.Set(src)
	if b.Len() != MaxOutputLength {
		t.Errorf("Len = %d, want %d", b.Len(), MaxOutputLength)
	}
}
