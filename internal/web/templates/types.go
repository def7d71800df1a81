package templates

import "time"

type SessionRow struct {
	ID         string
	SavedAt    time.Time
	Duration   float64
	Frames     int64
	Samples    int64
	Engagement float64 // ratio 0-1
	Phone      float64 // ratio 0-1
}

type SessionsData struct {
	Sessions       []SessionRow
	MeanEngagement float64 // percent
	MeanPhone      float64 // percent
	Grade          string
}

type LabelCount struct {
	Label string
	Count int64
	Share float64
}

type SessionData struct {
	ID          string
	SavedAt     time.Time
	Duration    float64
	Elapsed     *float64
	EndReason   string
	Frames      int64
	Faces       int64
	Samples     int64
	Counts      []LabelCount
	Engagement  float64
	Phone       float64
	Disengaged  float64
	Suggestions []string
}

type CompareRow struct {
	Label string
	A     int64
	B     int64
	Delta int64
}

type CompareData struct {
	SessionA string
	SessionB string
	Rows     []CompareRow
}
