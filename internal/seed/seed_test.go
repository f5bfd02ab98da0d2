package seed

import "testing"

func TestFromPhraseIsStable(t *testing.T) {
	a := FromPhrase("Dark Tower")
	b := FromPhrase("  dark tower ")
	if a != b {
		t.Errorf("normalised phrases differ: %d vs %d", a, b)
	}
	if a < 0 {
		t.Errorf("FromPhrase returned negative seed %d", a)
	}
	if FromPhrase("dark tower") == FromPhrase("dark towers") {
		t.Error("different phrases should not collide")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"42", 42},
		{" -7 ", -7},
		{"labyrinth", FromPhrase("labyrinth")},
	}
	for _, tc := range tests {
		if got := Parse(tc.input); got != tc.want {
			t.Errorf("Parse(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
	if Parse("") == 0 {
		t.Error("Parse(\"\") should produce a time-based seed")
	}
}

func TestRandIsDeterministic(t *testing.T) {
	a, b := Rand(99), Rand(99)
	for i := 0; i < 10; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatal("same seed produced different sequences")
		}
	}
}
