package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("X_DURATION", "750ms")
	if got := Duration("X_DURATION", time.Second); got != 750*time.Millisecond {
		t.Fatalf("Duration: want=%v got=%v", 750*time.Millisecond, got)
	}
	t.Setenv("X_DURATION", "3")
	if got := Duration("X_DURATION", time.Second); got != 3*time.Second {
		t.Fatalf("Duration seconds: want=%v got=%v", 3*time.Second, got)
	}
	t.Setenv("X_DURATION", "soon")
	if got := Duration("X_DURATION", time.Second); got != time.Second {
		t.Fatalf("Duration fallback: want=%v got=%v", time.Second, got)
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("X_BOOL", "off")
	if Bool("X_BOOL", true) {
		t.Fatalf("Bool: want=false got=true")
	}
	t.Setenv("X_BOOL", "maybe")
	if !Bool("X_BOOL", true) {
		t.Fatalf("Bool fallback: want=true got=false")
	}
	t.Setenv("X_INT", "abc")
	if got := Int("X_INT", 7); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	t.Setenv("X_STR", "  neo4j  ")
	if got := String("X_STR", "x"); got != "neo4j" {
		t.Fatalf("String: want=%q got=%q", "neo4j", got)
	}
}
