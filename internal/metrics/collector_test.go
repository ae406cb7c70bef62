package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpFetch, 100*time.Millisecond)
	c.RecordTiming(OpFetch, 300*time.Millisecond)

	snap := c.Snapshot()
	if snap.Fetch == nil {
		t.Fatal("expected fetch snapshot")
	}
	if snap.Fetch.Count != 2 {
		t.Errorf("count = %d, want 2", snap.Fetch.Count)
	}
	if snap.Fetch.TotalTimeMs != 400 {
		t.Errorf("total = %dms, want 400", snap.Fetch.TotalTimeMs)
	}
	if snap.Fetch.MinTimeMs != 100 || snap.Fetch.MaxTimeMs != 300 {
		t.Errorf("min/max = %d/%d, want 100/300", snap.Fetch.MinTimeMs, snap.Fetch.MaxTimeMs)
	}
	if snap.Fetch.AvgTimeMs != 200 {
		t.Errorf("avg = %f, want 200", snap.Fetch.AvgTimeMs)
	}
}

func TestSnapshotUnrecordedStagesAreNil(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpPersona, time.Millisecond)

	snap := c.Snapshot()
	if snap.Persona == nil {
		t.Error("expected persona snapshot")
	}
	if snap.Fetch != nil || snap.Extraction != nil || snap.Ingestion != nil {
		t.Error("unrecorded stages should be nil")
	}
}

func TestTimePassesErrorThrough(t *testing.T) {
	c := NewCollector()
	boom := errors.New("boom")

	err := c.Time(OpIngestion, func() error { return boom })
	if err != boom {
		t.Errorf("expected error passthrough, got %v", err)
	}
	if snap := c.Snapshot(); snap.Ingestion == nil || snap.Ingestion.Count != 1 {
		t.Error("failed runs are still timed")
	}
}
