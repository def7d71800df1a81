package domain

import "fmt"

// Comparison aligns two sessions on the canonical labels.
type Comparison struct {
	SessionA string  `json:"session_a"`
	SessionB string  `json:"session_b"`
	Labels   []Label `json:"labels"`
	A        []int64 `json:"a_values"`
	B        []int64 `json:"b_values"`
	Delta    []int64 `json:"delta"`
}

// Compare lines up a and b label by label in display order. A label
// absent from either record counts as 0. Both records must be present;
// resolving ids is the caller's job.
func Compare(a, b *SessionRecord) (Comparison, error) {
	if a == nil || b == nil {
		return Comparison{}, fmt.Errorf("%w: both sessions are required", ErrMissingSession)
	}

	cmp := Comparison{
		SessionA: a.SessionID,
		SessionB: b.SessionID,
		Labels:   make([]Label, len(Labels)),
		A:        make([]int64, len(Labels)),
		B:        make([]int64, len(Labels)),
		Delta:    make([]int64, len(Labels)),
	}
	copy(cmp.Labels, Labels)
	for i, l := range Labels {
		cmp.A[i] = a.EmotionCounts.Get(l)
		cmp.B[i] = b.EmotionCounts.Get(l)
		cmp.Delta[i] = cmp.B[i] - cmp.A[i]
	}
	return cmp, nil
}
