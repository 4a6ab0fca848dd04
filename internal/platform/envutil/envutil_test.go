package envutil

import "testing"

func TestInt(t *testing.T) {
	t.Setenv("GEO_TEST_INT", " 42 ")
	if got := Int("GEO_TEST_INT", 7); got != 42 {
		t.Fatalf("want=42 got=%d", got)
	}
	t.Setenv("GEO_TEST_INT", "forty")
	if got := Int("GEO_TEST_INT", 7); got != 7 {
		t.Fatalf("bad value should fall back: got=%d", got)
	}
}

func TestStringTrimsAndDefaults(t *testing.T) {
	t.Setenv("GEO_TEST_STR", "   ")
	if got := String("GEO_TEST_STR", "def"); got != "def" {
		t.Fatalf("blank should fall back: got=%q", got)
	}
	t.Setenv("GEO_TEST_STR", " neo4j://db ")
	if got := String("GEO_TEST_STR", "def"); got != "neo4j://db" {
		t.Fatalf("want=%q got=%q", "neo4j://db", got)
	}
}

func TestBool(t *testing.T) {
	for raw, want := range map[string]bool{"yes": true, "ON": true, "0": false, "off": false} {
		t.Setenv("GEO_TEST_BOOL", raw)
		if got := Bool("GEO_TEST_BOOL", !want); got != want {
			t.Fatalf("%q: want=%v got=%v", raw, want, got)
		}
	}
	t.Setenv("GEO_TEST_BOOL", "maybe")
	if !Bool("GEO_TEST_BOOL", true) {
		t.Fatalf("unknown value should return the default")
	}
}
