package strx

import "testing"

func TestCoalesce(t *testing.T) {
	if Coalesce("", "io") != "io" || Coalesce("dac", "io") != "dac" {
		t.Fatal("Coalesce")
	}
	if Or(0, 2500) != 2500 || Or(3300, 2500) != 3300 {
		t.Fatal("Or")
	}
}
