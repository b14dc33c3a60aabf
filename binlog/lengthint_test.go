package binlog

import "testing"

func TestReadLengthEncodedInt(t *testing.T) {
	cases := []struct {
		name    string
		in      []byte
		want    uint64
		wantN   int
		wantErr bool
	}{
		{"literal", []byte{42}, 42, 1, false},
		{"two-byte", []byte{0xfc, 0x34, 0x12}, 0x1234, 3, false},
		{"three-byte", []byte{0xfd, 0x01, 0x02, 0x03}, 0x030201, 4, false},
		{"eight-byte", []byte{0xfe, 1, 0, 0, 0, 0, 0, 0, 0}, 1, 9, false},
		{"truncated two-byte", []byte{0xfc, 0x01}, 0, 0, true},
		{"empty", []byte{}, 0, 0, true},
		{"invalid prefix", []byte{0xff}, 0, 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, n, err := ReadLengthEncodedInt(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want || n != c.wantN {
				t.Fatalf("got (%d, %d), want (%d, %d)", got, n, c.want, c.wantN)
			}
		})
	}
}

func TestFixedLengthInt(t *testing.T) {
	if got := FixedLengthInt([]byte{0x01, 0x02, 0x03, 0x04}); got != 0x04030201 {
		t.Fatalf("got %x", got)
	}
	if got := FixedLengthInt([]byte{0xff}); got != 0xff {
		t.Fatalf("got %x", got)
	}
}
