package domain

import (
	"fmt"
	"strings"
)

// Label is one of the canonical engagement states a session counts.
type Label string

const (
	LabelFocused    Label = "focused"
	LabelLaughing   Label = "laughing"
	LabelBored      Label = "bored"
	LabelSad        Label = "sad"
	LabelUsingPhone Label = "using_phone"
)

// Labels lists the canonical labels in display order.
var Labels = []Label{LabelFocused, LabelLaughing, LabelBored, LabelSad, LabelUsingPhone}

func (l Label) String() string { return string(l) }

// Valid reports whether l is one of the canonical labels.
func (l Label) Valid() bool {
	for _, c := range Labels {
		if c == l {
			return true
		}
	}
	return false
}

// ParseLabel converts a stored key into a canonical label.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}
	return l, nil
}

var emotionLabels = map[string]Label{
	"happy":    LabelLaughing,
	"surprise": LabelLaughing,
	"neutral":  LabelFocused,
	"angry":    LabelBored,
	"disgust":  LabelBored,
	"fear":     LabelBored,
	"sad":      LabelSad,
}

// MapEmotion reduces a raw emotion classifier label to a canonical label.
// The second result is false for any label outside the known vocabulary;
// callers must not record anything in that case.
func MapEmotion(raw string) (Label, bool) {
	l, ok := emotionLabels[strings.ToLower(strings.TrimSpace(raw))]
	return l, ok
}

// MapDetection reports whether any detected object in a sampled frame is a phone.
// One phone anywhere in the frame flags the whole sample.
func MapDetection(labels []string) bool {
	for _, raw := range labels {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "cell phone", "phone":
			return true
		}
	}
	return false
}

// Counts maps labels to their tallies. Records read from older sources may
// carry keys outside the canonical set; those are kept but ignored by metrics.
type Counts map[Label]int64

// NewCounts returns counts with every canonical label present and zeroed.
func NewCounts() Counts {
	c := make(Counts, len(Labels))
	for _, l := range Labels {
		c[l] = 0
	}
	return c
}

// Get returns the count for l, or 0 if absent.
func (c Counts) Get(l Label) int64 {
	return c[l]
}

// Total sums the canonical labels only.
func (c Counts) Total() int64 {
	var total int64
	for _, l := range Labels {
		total += c[l]
	}
	return total
}

// Sum adds every key, canonical or not.
func (c Counts) Sum() int64 {
	var sum int64
	for _, v := range c {
		sum += v
	}
	return sum
}

func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
