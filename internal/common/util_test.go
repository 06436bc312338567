package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("Abc12345!")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestSentinels_AreDistinctAndWrappable(t *testing.T) {
	all := []error{
		ErrorNotFound, ErrorValidation, ErrorUnauthorized, ErrInvalidToken,
		ErrorAlreadyExists, ErrorPersistence, ErrorHashing, ErrorToken,
	}
	for i, a := range all {
		wrapped := fmt.Errorf("context: %w", a)
		if !errors.Is(wrapped, a) {
			t.Fatalf("wrapped %v does not match itself", a)
		}
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v unexpectedly matches %v", a, b)
			}
		}
	}
}
