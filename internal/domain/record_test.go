package domain

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func closedTestRecord(t *testing.T) *SessionRecord {
	t.Helper()
	s := openTestSession(t)
	_ = s.RecordFrameObserved()
	_, _ = s.Apply(Observation{Emotion: "neutral", Objects: []string{"cell phone"}})
	rec, err := s.Close(1.5, EndReasonCompleted, time.Date(2025, 3, 1, 9, 10, 0, 123456789, time.UTC))
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	return rec
}

func TestEncodeDecodeRecord_RoundTrip(t *testing.T) {
	rec := closedTestRecord(t)

	data, err := EncodeRecord(rec)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	got, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, rec)
	}
}

func TestEncodeRecord_RecomputesSamples(t *testing.T) {
	rec := closedTestRecord(t)
	rec.TotalEmotionSamples = 42

	data, err := EncodeRecord(rec)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	if !strings.Contains(string(data), `"total_emotion_samples": 2`) {
		t.Errorf("samples not recomputed:\n%s", data)
	}
	if rec.TotalEmotionSamples != 42 {
		t.Error("EncodeRecord modified its input")
	}
}

func TestDecodeRecord_LegacyFormat(t *testing.T) {
	data := []byte(`{
    "session_id": "20240501_102030",
    "duration_minutes": 1,
    "total_frames": 120,
    "total_faces_analyzed": 9,
    "emotion_counts": {"focused": 4, "laughing": 2, "bored": 1, "sad": 0, "using_phone": 2},
    "total_emotion_samples": 9,
    "saved_at": "2024-05-01T10:21:30.654321"
}`)

	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 21, 30, 654321000, time.UTC)
	if !rec.SavedAt.Equal(want) {
		t.Errorf("SavedAt = %v, want %v", rec.SavedAt, want)
	}
	if rec.StartedAt != nil || rec.EndReason != "" {
		t.Error("optional fields should stay empty")
	}
}

func TestDecodeRecord_Corrupt(t *testing.T) {
	valid := `"session_id": "s1", "duration_minutes": 1, "total_frames": 1, "total_faces_analyzed": 1, "emotion_counts": {"focused": 1}, "saved_at": "2025-01-01T00:00:00Z"`

	tests := []struct {
		name string
		data string
	}{
		{"truncated", `{"session_id": "s1", "duration_min`},
		{"empty", ``},
		{"not an object", `[]`},
		{"missing samples", `{` + valid + `}`},
		{"samples mismatch", `{` + valid + `, "total_emotion_samples": 3}`},
		{"negative count", `{"session_id": "s1", "duration_minutes": 1, "total_frames": 1, "total_faces_analyzed": 0, "emotion_counts": {"focused": -1, "sad": 1}, "total_emotion_samples": 0, "saved_at": "2025-01-01T00:00:00Z"}`},
		{"bad timestamp", `{"session_id": "s1", "duration_minutes": 1, "total_frames": 1, "total_faces_analyzed": 1, "emotion_counts": {"focused": 1}, "total_emotion_samples": 1, "saved_at": "yesterday"}`},
		{"fractional count", `{"session_id": "s1", "duration_minutes": 1, "total_frames": 1, "total_faces_analyzed": 1, "emotion_counts": {"focused": 1.5}, "total_emotion_samples": 1, "saved_at": "2025-01-01T00:00:00Z"}`},
		{"trailing garbage", `{` + valid + `, "total_emotion_samples": 1} x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRecord([]byte(tt.data))
			if !errors.Is(err, ErrCorruptRecord) {
				t.Errorf("error = %v, want ErrCorruptRecord", err)
			}
			if rec != nil {
				t.Errorf("got partial record %+v", rec)
			}
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	at := func(h int) Timestamp { return NewTimestamp(time.Date(2025, 1, 1, h, 0, 0, 0, time.UTC)) }
	records := []*SessionRecord{
		{SessionID: "a", SavedAt: at(9)},
		{SessionID: "b", SavedAt: at(11)},
		{SessionID: "c", SavedAt: at(10)},
	}

	SortNewestFirst(records)

	var ids []string
	for _, r := range records {
		ids = append(ids, r.SessionID)
	}
	if strings.Join(ids, ",") != "b,c,a" {
		t.Errorf("order = %v, want [b c a]", ids)
	}
}
