package humanize

import "testing"

func TestSize(t *testing.T) {
	cases := map[int64]string{
		0:           "0 B",
		512:         "512 B",
		1024:        "1.00 KB",
		1536:        "1.50 KB",
		1048576:     "1.00 MB",
		1073741824:  "1.00 GB",
	}
	for bytes, want := range cases {
		if got := Size(bytes); got != want {
			t.Errorf("Size(%d) = %q, want %q", bytes, got, want)
		}
	}
}

func TestSpeed(t *testing.T) {
	if got := Speed(1048576, 1); got != "1.00 MB/s" {
		t.Errorf("Speed = %q", got)
	}
	if got := Speed(100, 0); got != "-- B/s" {
		t.Errorf("Speed with zero elapsed = %q", got)
	}
}

func TestETA(t *testing.T) {
	if eta := ETA(500, 1000, 5); eta != 5 {
		t.Errorf("ETA = %v, want 5", eta)
	}
	if eta := ETA(0, 1000, 5); eta != -1 {
		t.Errorf("ETA with zero transferred = %v, want -1", eta)
	}
}
