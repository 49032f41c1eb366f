// Package siem backs the siem_* natives in internal/stdlib/siem.go.
// SIEMIntegration dispatches a raw log line to one of the seven format
// parsers in parsers.go and scores the parsed entries for threat
// indicators.
package siem

import (
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"time"
)

// SIEMIntegration holds the registered per-format parsers.
type SIEMIntegration struct {
	parsers map[string]LogParser
}

// LogEntry is what every LogParser.Parse returns.
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Source    string            `json:"source"`
	Host      string            `json:"host"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields"`
	EventType string            `json:"event_type"`
	Severity  int               `json:"severity"`
	Category  string            `json:"category"`
	Raw       string            `json:"raw"`
}

// LogParser parses one log line format.
type LogParser interface {
	Parse(line string) (*LogEntry, error)
	GetFormat() string
	GetPatterns() []string
}

// EventStats is the outcome of AnalyzeLogs.
type EventStats struct {
	TotalEvents      int
	EventsBySource   map[string]int
	EventsByLevel    map[string]int
	EventsByType     map[string]int
	TopSources       []SourceStats
	ThreatIndicators []ThreatIndicator
}

// SourceStats is one entry in EventStats.TopSources.
type SourceStats struct {
	Source string
	Count  int
}

// ThreatIndicator is one IP/hash/attack-pattern hit found in a message.
type ThreatIndicator struct {
	Type        string
	Value       string
	Confidence  float64
	FirstSeen   time.Time
	LastSeen    time.Time
	Count       int
	Description string
}

// NewSIEMIntegration registers the seven built-in parsers.
func NewSIEMIntegration() *SIEMIntegration {
	s := &SIEMIntegration{parsers: make(map[string]LogParser)}
	s.registerDefaultParsers()
	return s
}

func (s *SIEMIntegration) registerDefaultParsers() {
	s.parsers["syslog"] = &SyslogParser{}
	s.parsers["apache"] = &ApacheParser{}
	s.parsers["nginx"] = &NginxParser{}
	s.parsers["windows"] = &WindowsEventParser{}
	s.parsers["json"] = &JSONParser{}
	s.parsers["cef"] = &CEFParser{}
	s.parsers["leef"] = &LEEFParser{}
}

// SupportedFormats lists the registered parser format names.
func (s *SIEMIntegration) SupportedFormats() []string {
	formats := make([]string, 0, len(s.parsers))
	for f := range s.parsers {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// ParseLine runs line through the named format's parser.
func (s *SIEMIntegration) ParseLine(format, line string) (*LogEntry, error) {
	parser, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
	entry, err := parser.Parse(line)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		entry.Raw = line
	}
	return entry, nil
}

// AnalyzeLogs aggregates parsed entries into per-source/level/type counts
// and extracts threat indicators from each entry's message.
func (s *SIEMIntegration) AnalyzeLogs(entries []*LogEntry) *EventStats {
	stats := &EventStats{
		TotalEvents:    len(entries),
		EventsBySource: make(map[string]int),
		EventsByLevel:  make(map[string]int),
		EventsByType:   make(map[string]int),
	}

	threatMap := make(map[string]*ThreatIndicator)

	for _, entry := range entries {
		stats.EventsBySource[entry.Source]++
		stats.EventsByLevel[entry.Level]++
		stats.EventsByType[entry.EventType]++

		for _, indicator := range s.extractThreatIndicators(entry) {
			key := indicator.Type + ":" + indicator.Value
			if existing, ok := threatMap[key]; ok {
				existing.Count++
				existing.LastSeen = entry.Timestamp
			} else {
				indicator.FirstSeen = entry.Timestamp
				indicator.LastSeen = entry.Timestamp
				indicator.Count = 1
				threatMap[key] = &indicator
			}
		}
	}

	for _, indicator := range threatMap {
		stats.ThreatIndicators = append(stats.ThreatIndicators, *indicator)
	}
	sort.Slice(stats.ThreatIndicators, func(i, j int) bool {
		return stats.ThreatIndicators[i].Count > stats.ThreatIndicators[j].Count
	})

	for source, count := range stats.EventsBySource {
		stats.TopSources = append(stats.TopSources, SourceStats{Source: source, Count: count})
	}
	sort.Slice(stats.TopSources, func(i, j int) bool {
		return stats.TopSources[i].Count > stats.TopSources[j].Count
	})
	if len(stats.TopSources) > 10 {
		stats.TopSources = stats.TopSources[:10]
	}

	return stats
}

var (
	ipRegex     = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)
	hashRegex   = regexp.MustCompile(`\b[a-fA-F0-9]{32,64}\b`)
	attackTerms = map[string]float64{
		"sql injection": 0.9,
		"union select":  0.9,
		"<script":       0.8,
		"javascript:":   0.7,
		"../":           0.6,
		"passwd":        0.7,
		"shadow":        0.7,
		"cmd.exe":       0.8,
		"powershell":    0.7,
		"base64":        0.5,
	}
)

func (s *SIEMIntegration) extractThreatIndicators(entry *LogEntry) []ThreatIndicator {
	var indicators []ThreatIndicator

	for _, ip := range ipRegex.FindAllString(entry.Message, -1) {
		if isSuspiciousIP(ip) {
			indicators = append(indicators, ThreatIndicator{
				Type: "ip", Value: ip, Confidence: 0.7,
				Description: "suspicious IP address detected",
			})
		}
	}

	for _, hash := range hashRegex.FindAllString(entry.Message, -1) {
		indicators = append(indicators, ThreatIndicator{
			Type: "hash", Value: hash, Confidence: 0.8,
			Description: "file hash detected",
		})
	}

	lowerMessage := strings.ToLower(entry.Message)
	for pattern, confidence := range attackTerms {
		if strings.Contains(lowerMessage, pattern) {
			indicators = append(indicators, ThreatIndicator{
				Type: "attack_pattern", Value: pattern, Confidence: confidence,
				Description: fmt.Sprintf("attack pattern %q detected", pattern),
			})
		}
	}

	return indicators
}

func isSuspiciousIP(ip string) bool {
	if net.ParseIP(ip) == nil {
		return false
	}
	for _, prefix := range []string{"0.0.0.0", "255.255.255.255"} {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	return false
}
