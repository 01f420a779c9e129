package slug

import "testing"

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Cloud -- Migration!! ", "cloud-migration"},
		{"UPPER case 123", "upper-case-123"},
		{"???", ""},
		{"", ""},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tc := range cases {
		if got := Make(tc.in); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func setTaken(set map[string]bool) Taken {
	return func(candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestUniqueFreeBase(t *testing.T) {
	got, err := Unique("hello-world", setTaken(map[string]bool{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello-world" {
		t.Fatalf("got %q, want hello-world", got)
	}
}

func TestUniqueProbesSuffixes(t *testing.T) {
	taken := map[string]bool{
		"hello-world":   true,
		"hello-world-1": true,
	}
	got, err := Unique("hello-world", setTaken(taken))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello-world-2" {
		t.Fatalf("got %q, want hello-world-2", got)
	}
}

func TestUniqueEmptyBaseTerminates(t *testing.T) {
	taken := map[string]bool{"": true, "-1": true}
	got, err := Unique("", setTaken(taken))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "-2" {
		t.Fatalf("got %q, want -2", got)
	}
}

func TestForTitle(t *testing.T) {
	got, err := ForTitle("Hello World", setTaken(map[string]bool{"hello-world": true}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello-world-1" {
		t.Fatalf("got %q, want hello-world-1", got)
	}
}
