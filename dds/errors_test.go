package dds_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ddsplus/ddsplus/dds"
)

func TestErrorString_StableNames(t *testing.T) {
	cases := []struct {
		code dds.ErrorCode
		want string
	}{
		{dds.Success, "SUCCESS"},
		{dds.ErrInvalidArgument, "INVALID_ARGUMENT"},
		{dds.ErrOutOfMemory, "OUT_OF_MEMORY"},
		{dds.ErrUnsupportedFormat, "UNSUPPORTED_FORMAT"},
		{dds.ErrConversionFailed, "CONVERSION_FAILED"},
		{dds.ErrInvalidLayout, "INVALID_LAYOUT"},
		{dds.ErrCancelled, "CANCELLED"},
		{dds.ErrDeviceLost, "DEVICE_LOST"},
	}
	for _, c := range cases {
		if got := dds.ErrorString(c.code); got != c.want {
			t.Fatalf("ErrorString(%d): got %q want %q", uint32(c.code), got, c.want)
		}
	}
	if got := dds.ErrorString(dds.ErrorCode(0xDEADBEEF)); got != "" {
		t.Fatalf("ErrorString(unknown): got %q want %q", got, "")
	}
}

func TestErrorCodeOf(t *testing.T) {
	if got := dds.ErrorCodeOf(nil); got != dds.Success {
		t.Fatalf("ErrorCodeOf(nil): got %v want %v", got, dds.Success)
	}

	_, _, err := dds.Load(nil, nil)
	wantCode(t, "Load(nil)", err, dds.ErrInvalidArgument)

	wrapped := fmt.Errorf("save: %w", err)
	if got := dds.ErrorCodeOf(wrapped); got != dds.ErrInvalidArgument {
		t.Fatalf("ErrorCodeOf(wrapped): got %v want %v", got, dds.ErrInvalidArgument)
	}
	if !errors.Is(wrapped, dds.ErrInvalidArgument) {
		t.Fatalf("errors.Is(wrapped, ErrInvalidArgument): got false want true")
	}
	if errors.Is(wrapped, dds.ErrCancelled) {
		t.Fatalf("errors.Is(wrapped, ErrCancelled): got true want false")
	}

	if got := dds.ErrorCodeOf(errors.New("some other error")); got != dds.ErrConversionFailed {
		t.Fatalf("ErrorCodeOf(foreign): got %v want %v", got, dds.ErrConversionFailed)
	}
}
