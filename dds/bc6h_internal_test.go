package dds

import "testing"

// bc6hBlock returns a block with the given stream bits set.
func bc6hBlock(bits ...int) []byte {
	b := make([]byte, 16)
	for _, i := range bits {
		b[i/8] |= 1 << uint(i%8)
	}
	return b
}

func span(lo, hi int) []int {
	var s []int
	for i := lo; i <= hi; i++ {
		s = append(s, i)
	}
	return s
}

func concat(parts ...[]int) []int {
	var s []int
	for _, p := range parts {
		s = append(s, p...)
	}
	return s
}

func TestDecodeBC6H_KnownBlocks(t *testing.T) {
	cases := []struct {
		name   string
		block  []byte
		signed bool
		def    uint16         // red for texels not listed in red
		red    map[int]uint16 // texel to red
	}{
		{
			// 6-bit endpoints, no transform. Region 0 holds full red at index 0.
			name:  "mode 0x1e two regions",
			block: bc6hBlock(concat([]int{1, 2, 3, 4}, span(5, 10))...),
			def:   0,
			red:   map[int]uint16{0: 0x7BFF, 1: 0x7BFF, 4: 0x7BFF, 5: 0x7BFF, 8: 0x7BFF, 9: 0x7BFF, 12: 0x7BFF, 13: 0x7BFF},
		},
		{
			// Base 512 with both regions ending one step lower. Anchors carry two
			// index bits, the rest three.
			name: "mode 0x00 transformed deltas",
			block: bc6hBlock(concat([]int{14}, span(35, 39), span(71, 75),
				[]int{82, 83}, span(84, 86), span(90, 92), []int{126, 127})...),
			def: 15887,
			red: map[int]uint16{0: 15874, 1: 15856, 3: 15856, 15: 15874},
		},
		{
			name:  "mode 0x07 eleven bits",
			block: bc6hBlock(0, 1, 2, 44),
			def:   15879,
		},
		{
			// The top two base bits are stored high bit first.
			name:  "mode 0x0b twelve bits",
			block: bc6hBlock(0, 1, 3, 43),
			def:   15875,
		},
		{
			name:  "mode 0x0f sixteen bits",
			block: bc6hBlock(concat([]int{0, 1, 2, 3}, span(35, 39), span(68, 71))...),
			def:   15872,
			red:   map[int]uint16{1: 15871},
		},
		{
			name:   "mode 0x03 signed",
			block:  bc6hBlock(concat([]int{0, 1, 14}, span(35, 43), span(68, 71))...),
			signed: true,
			def:    0xFBFF,
			red:    map[int]uint16{1: 0x7BFF},
		},
		{
			name:  "reserved mode 0x13",
			block: bc6hBlock(0, 1, 4, 20, 40, 100),
			def:   0,
		},
	}
	for _, c := range cases {
		var out halfBlock
		for i := range out {
			out[i] = [3]uint16{1, 1, 1}
		}
		decodeBC6H(c.block, &out, c.signed)
		for i, got := range out {
			want, ok := c.red[i]
			if !ok {
				want = c.def
			}
			if got != [3]uint16{want, 0, 0} {
				t.Fatalf("%s texel %d: got %#04x want %#04x", c.name, i, got, [3]uint16{want, 0, 0})
			}
		}
	}
}

func TestBC6HModes_Complete(t *testing.T) {
	two, one := 0, 0
	for _, m := range bc6hModes {
		bits := 5
		if m.code < 2 {
			bits = 2
		}
		for _, f := range m.fields {
			bits += int(f.n)
		}
		if m.regions == 2 {
			bits += 5 + 46
			two++
		} else {
			bits += 63
			one++
		}
		if bits != 128 {
			t.Fatalf("mode %#02x: got %d bits want 128", m.code, bits)
		}
		if bc6hModeFor(m.code) == nil {
			t.Fatalf("mode %#02x: not found by code", m.code)
		}
	}
	if two != 10 || one != 4 {
		t.Fatalf("modes: got %d two-region and %d single-region want 10 and 4", two, one)
	}
	for _, code := range []uint32{0x13, 0x17, 0x1B, 0x1F} {
		if bc6hModeFor(code) != nil {
			t.Fatalf("reserved mode %#02x: got a mode want nil", code)
		}
	}
}
