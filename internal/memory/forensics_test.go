package memory

import (
	"os"
	"testing"
)

func TestEnumerateProcessesFindsSelf(t *testing.T) {
	ef := NewEnhancedForensics()
	procs, err := ef.EnumerateProcesses()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	self := os.Getpid()
	for _, p := range procs {
		if p.PID == self {
			return
		}
	}
	t.Fatalf("own pid %d not found among %d enumerated processes", self, len(procs))
}

func TestFindProcessByNameNoMatch(t *testing.T) {
	ef := NewEnhancedForensics()
	matches, err := ef.FindProcessByName("definitely-not-a-real-process-name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestGetMemoryRegionsSelf(t *testing.T) {
	ef := NewEnhancedForensics()
	regions, err := ef.GetMemoryRegions(os.Getpid())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) == 0 {
		t.Fatal("expected at least one mapped region for the running process")
	}
}

func TestDetectProcessHollowingUnknownPID(t *testing.T) {
	ef := NewEnhancedForensics()
	if _, _, err := ef.DetectProcessHollowing(-1); err == nil {
		t.Fatal("expected an error for a nonexistent pid")
	}
}
