package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestCompare(t *testing.T) {
	a := &SessionRecord{SessionID: "a", EmotionCounts: counts(5, 1, 2, 0, 3)}
	b := &SessionRecord{SessionID: "b", EmotionCounts: Counts{LabelFocused: 1, LabelSad: 4}}

	cmp, err := Compare(a, b)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if !reflect.DeepEqual(cmp.Labels, Labels) {
		t.Errorf("Labels = %v, want %v", cmp.Labels, Labels)
	}
	if want := []int64{5, 1, 2, 0, 3}; !reflect.DeepEqual(cmp.A, want) {
		t.Errorf("A = %v, want %v", cmp.A, want)
	}
	if want := []int64{1, 0, 0, 4, 0}; !reflect.DeepEqual(cmp.B, want) {
		t.Errorf("B = %v, want %v", cmp.B, want)
	}
	if want := []int64{-4, -1, -2, 4, -3}; !reflect.DeepEqual(cmp.Delta, want) {
		t.Errorf("Delta = %v, want %v", cmp.Delta, want)
	}
}

func TestCompare_MissingSession(t *testing.T) {
	rec := &SessionRecord{SessionID: "a", EmotionCounts: NewCounts()}
	if _, err := Compare(rec, nil); !errors.Is(err, ErrMissingSession) {
		t.Errorf("error = %v, want ErrMissingSession", err)
	}
	if _, err := Compare(nil, rec); !errors.Is(err, ErrMissingSession) {
		t.Errorf("error = %v, want ErrMissingSession", err)
	}
}
