package encoding

import "testing"

func TestEUCKRToUTF8(t *testing.T) {
	// "텍스쳐" (texture) in EUC-KR.
	data := []byte{0xc5, 0xd8, 0xbd, 0xba, 0xc3, 0xc4}
	if got := EUCKRToUTF8(data); got != "텍스쳐" {
		t.Errorf("got %q, want %q", got, "텍스쳐")
	}

	if got := EUCKRToUTF8([]byte("plain.bmp")); got != "plain.bmp" {
		t.Errorf("ASCII changed: %q", got)
	}
}

func TestFixedStringToUTF8(t *testing.T) {
	field := make([]byte, 40)
	copy(field, "wall.bmp")
	field[20] = 'x' // garbage after the terminator

	if got := FixedStringToUTF8(field); got != "wall.bmp" {
		t.Errorf("got %q, want %q", got, "wall.bmp")
	}

	full := []byte("abcd")
	if got := FixedStringToUTF8(full); got != "abcd" {
		t.Errorf("unterminated field: got %q", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`data\model\Prontera\Fountain.rsm`, "data/model/prontera/fountain.rsm"},
		{"data/texture/a.bmp", "data/texture/a.bmp"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUTF8ToEUCKR(t *testing.T) {
	got := UTF8ToEUCKR("텍스쳐.bmp")
	want := []byte{0xc5, 0xd8, 0xbd, 0xba, 0xc3, 0xc4, '.', 'b', 'm', 'p'}
	if string(got) != string(want) {
		t.Errorf("got % x, want % x", got, want)
	}
	if back := EUCKRToUTF8(got); back != "텍스쳐.bmp" {
		t.Errorf("round trip gave %q", back)
	}

	// No EUC-KR mapping for emoji
	if got := UTF8ToEUCKR("a😀"); string(got) != "a😀" {
		t.Errorf("unmappable input changed: % x", got)
	}
}
