package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatchingThroughWrap(t *testing.T) {
	err := fmt.Errorf("load products: %w", Row(KindIntegrityViolation, "Product", "P9", "category_id is null"))

	if !errors.Is(err, ErrIntegrityViolation) {
		t.Fatalf("errors.Is(ErrIntegrityViolation): want=true got=false")
	}
	if errors.Is(err, ErrInvalidValue) {
		t.Fatalf("errors.Is(ErrInvalidValue): want=false got=true")
	}
	if got := KindOf(err); got != KindIntegrityViolation {
		t.Fatalf("KindOf: want=%q got=%q", KindIntegrityViolation, got)
	}
	want := "integrity_violation entity=Product id=P9: category_id is null"
	if got := errors.Unwrap(err).Error(); got != want {
		t.Fatalf("Error(): want=%q got=%q", want, got)
	}
}

func TestTransient(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	if !Transient(New(KindStoreUnavailable, "ping", cause)) {
		t.Fatalf("Transient(store unavailable): want=true got=false")
	}
	if Transient(Newf(KindDanglingReference, "load", "CONTAINS O1->P9")) {
		t.Fatalf("Transient(dangling reference): want=false got=true")
	}
	if Transient(cause) {
		t.Fatalf("Transient(plain error): want=false got=true")
	}
	if !errors.Is(New(KindStoreUnavailable, "ping", cause), cause) {
		t.Fatalf("errors.Is(cause): want=true got=false")
	}
}
