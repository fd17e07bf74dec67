package logic

import (
	"math"
	"strconv"
	"testing"
)

func TestEncodeHex(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0000000000000000"},
		{255, "00000000000000FF"},
		{0xABCDEF, "0000000000ABCDEF"},
		{1 << 63, "8000000000000000"},
		{math.MaxUint64, "FFFFFFFFFFFFFFFF"},
	}

	var buf [HexLen + 1]byte
	for _, tt := range tests {
		got := EncodeHex(tt.in, &buf)
		if string(got) != tt.want {
			t.Errorf("EncodeHex(%d): expected %q, got %q", tt.in, tt.want, got)
		}
		if buf[HexLen] != 0 {
			t.Errorf("EncodeHex(%d): buffer not NUL terminated", tt.in)
		}
	}
}

func TestEncodeHexRoundTrip(t *testing.T) {
	var buf [HexLen + 1]byte
	for _, x := range []uint64{1, 42, 0xDEADBEEF, 123456789012345, math.MaxUint64 - 1} {
		got := EncodeHex(x, &buf)
		if len(got) != HexLen {
			t.Fatalf("expected %d digits, got %d", HexLen, len(got))
		}
		back, err := strconv.ParseUint(string(got), 16, 64)
		if err != nil {
			t.Fatalf("parse %q: %v", got, err)
		}
		if back != x {
			t.Errorf("round trip: expected %d, got %d", x, back)
		}
	}
}

func TestEncodeHexReusesBuffer(t *testing.T) {
	var buf [HexLen + 1]byte
	EncodeHex(math.MaxUint64, &buf)
	got := EncodeHex(1, &buf)
	if string(got) != "0000000000000001" {
		t.Errorf("expected no residue from previous value, got %q", got)
	}
}
