package siem

import "testing"

func TestParseLineSyslog(t *testing.T) {
	s := NewSIEMIntegration()
	entry, err := s.ParseLine("syslog", "<34>Jan 12 10:00:00 myhost sshd: failed password for root")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Host != "myhost" {
		t.Errorf("Host = %q, want %q", entry.Host, "myhost")
	}
	if entry.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", entry.Level)
	}
}

func TestParseLineUnsupportedFormat(t *testing.T) {
	s := NewSIEMIntegration()
	if _, err := s.ParseLine("bogus", "whatever"); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}

func TestSupportedFormats(t *testing.T) {
	s := NewSIEMIntegration()
	formats := s.SupportedFormats()
	want := map[string]bool{"syslog": true, "apache": true, "nginx": true, "windows": true, "json": true, "cef": true, "leef": true}
	if len(formats) != len(want) {
		t.Fatalf("got %d formats, want %d", len(formats), len(want))
	}
	for _, f := range formats {
		if !want[f] {
			t.Errorf("unexpected format %q", f)
		}
	}
}

func TestAnalyzeLogsThreatIndicators(t *testing.T) {
	s := NewSIEMIntegration()
	var entries []*LogEntry
	for _, line := range []string{
		"<34>Jan 12 10:00:00 myhost sshd: union select from users",
		"<34>Jan 12 10:00:05 myhost sshd: connection from 0.0.0.0 refused",
	} {
		entry, err := s.ParseLine("syslog", line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entries = append(entries, entry)
	}

	stats := s.AnalyzeLogs(entries)
	if stats.TotalEvents != 2 {
		t.Fatalf("TotalEvents = %d, want 2", stats.TotalEvents)
	}
	if len(stats.ThreatIndicators) == 0 {
		t.Fatal("expected at least one threat indicator")
	}

	found := false
	for _, ind := range stats.ThreatIndicators {
		if ind.Type == "attack_pattern" && ind.Value == "union select" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a union select attack_pattern indicator, got %+v", stats.ThreatIndicators)
	}
}

func TestApacheParser(t *testing.T) {
	p := &ApacheParser{}
	entry, err := p.Parse(`127.0.0.1 - frank [10/Oct/2023:13:55:36 -0700] "GET /apache.gif HTTP/1.0" 500 2326`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR for a 500 status", entry.Level)
	}
	if entry.Fields["method"] != "GET" {
		t.Errorf("method = %q, want GET", entry.Fields["method"])
	}
}
