package batch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
)

// Report is the report.json written at the end of a run.
type Report struct {
	RunID     string         `json:"run_id"`
	Generated time.Time      `json:"generated"`
	Subjects  []SubjectEntry `json:"subjects"`
	Anomalies []Anomaly      `json:"anomalies"`
}

// SubjectEntry represents one subject in the report.
type SubjectEntry struct {
	ID            string        `json:"id"`
	Success       bool          `json:"success"`
	Error         string        `json:"error,omitempty"`
	Primary       string        `json:"primary,omitempty"`
	GroundOffsetY int           `json:"ground_offset_y"`
	CenterOffsetX int           `json:"center_offset_x"`
	Sheets        []SheetResult `json:"sheets,omitempty"`
}

// NewRunID returns a time-ordered id for a batch run.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// WriteReport writes report.json. anomalies should include both the
// per-subject findings and any catalog-wide ones.
func WriteReport(path, runID string, results []Result, anomalies []Anomaly) error {
	rep := Report{
		RunID:     runID,
		Generated: time.Now().UTC(),
		Subjects:  make([]SubjectEntry, len(results)),
		Anomalies: anomalies,
	}
	if rep.Anomalies == nil {
		rep.Anomalies = []Anomaly{}
	}
	for i, r := range results {
		rep.Subjects[i] = SubjectEntry{
			ID:            r.ID,
			Success:       r.Success,
			Error:         r.Error,
			Primary:       r.Primary,
			GroundOffsetY: r.Proposal.GroundOffsetY,
			CenterOffsetX: r.Proposal.CenterOffsetX,
			Sheets:        r.Sheets,
		}
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Anomalies gathers per-subject anomalies in result order.
func Anomalies(results []Result) []Anomaly {
	var out []Anomaly
	for _, r := range results {
		out = append(out, r.Anomalies...)
	}
	return out
}
