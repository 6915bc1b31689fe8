// Package migrate holds the primitives shared by every migration flow:
// run summaries with skip descriptors, and the paginated fetch loop.
package migrate

// Skip describes one source record that a flow declined to write. Key
// carries enough natural-key information to find the record again; Fields
// holds any extra identifying columns a flow wants to report.
type Skip struct {
	Key    string            `json:"key"`
	Reason string            `json:"reason"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Summary is the result contract of every migration flow.
type Summary struct {
	TotalMigrated int    `json:"totalMigrated"`
	SkippedCount  int    `json:"skippedCount"`
	SkippedItems  []Skip `json:"skippedItems"`
}

func NewSummary() *Summary {
	return &Summary{SkippedItems: []Skip{}}
}

func (s *Summary) Migrated() {
	s.TotalMigrated++
}

func (s *Summary) Skip(key, reason string) {
	s.SkippedItems = append(s.SkippedItems, Skip{Key: key, Reason: reason})
	s.SkippedCount++
}

func (s *Summary) SkipRecord(sk Skip) {
	s.SkippedItems = append(s.SkippedItems, sk)
	s.SkippedCount++
}

// Common skip reasons shared across flows. Flow-specific reasons live with
// their flow.
const (
	ReasonDuplicate     = "Duplicate record"
	ReasonMissingFields = "Missing required fields"
)
