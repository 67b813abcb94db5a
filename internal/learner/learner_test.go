package learner

import (
	"errors"
	"fmt"
	"testing"
)

func TestCheckWidth(t *testing.T) {
	t.Parallel()

	if err := CheckWidth(4, 4); err != nil {
		t.Fatalf("matching widths must pass, got %v", err)
	}

	err := CheckWidth(4, 6)
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if shapeErr.Want != 4 || shapeErr.Got != 6 {
		t.Errorf("expected want=4 got=6, got want=%d got=%d", shapeErr.Want, shapeErr.Got)
	}
}

func TestShapeError_SurvivesWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("row 3: %w", CheckWidth(2, 5))
	var shapeErr *ShapeError
	if !errors.As(wrapped, &shapeErr) {
		t.Fatalf("expected ShapeError through wrapping, got %v", wrapped)
	}
	if shapeErr.Got != 5 {
		t.Errorf("expected got=5, got %d", shapeErr.Got)
	}
}
