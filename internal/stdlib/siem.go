package stdlib

import (
	"sentra/internal/siem"
	"sentra/internal/vm"
)

var siemIntegration = siem.NewSIEMIntegration()

// RegisterSIEM installs siem_* natives over the teacher's seven log-line
// parsers (internal/siem/parsers.go), dispatched by format name.
func RegisterSIEM(m *vm.VM) {
	m.RegisterNative("siem_parse_syslog", nativeSIEMParseSyslog)
	m.RegisterNative("siem_parse_log", nativeSIEMParseLog)
	m.RegisterNative("siem_list_formats", nativeSIEMListFormats)
	m.RegisterNative("siem_analyze_logs", nativeSIEMAnalyzeLogs)
}

func entryToValue(entry *siem.LogEntry) vm.Value {
	obj := vm.NewVMObject()
	obj.Set("level", vm.String(entry.Level))
	obj.Set("host", vm.String(entry.Host))
	obj.Set("source", vm.String(entry.Source))
	obj.Set("message", vm.String(entry.Message))
	obj.Set("event_type", vm.String(entry.EventType))
	obj.Set("category", vm.String(entry.Category))
	obj.Set("severity", vm.Int(int64(entry.Severity)))
	return vm.ObjectValue(obj)
}

func nativeSIEMParseSyslog(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	entry, err := siemIntegration.ParseLine("syslog", args[0].Str())
	if err != nil {
		return vm.Null()
	}
	return entryToValue(entry)
}

func nativeSIEMParseLog(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	entry, err := siemIntegration.ParseLine(args[0].Str(), args[1].Str())
	if err != nil {
		return vm.Null()
	}
	return entryToValue(entry)
}

func nativeSIEMListFormats(argc int, args []vm.Value) vm.Value {
	formats := siemIntegration.SupportedFormats()
	out := make([]vm.Value, len(formats))
	for i, f := range formats {
		out[i] = vm.String(f)
	}
	return vm.ListVal(out)
}

// nativeSIEMAnalyzeLogs parses every line in args[1] (a List of Strings)
// under format args[0] and returns aggregate counts plus the threat
// indicators found across all of them.
func nativeSIEMAnalyzeLogs(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	format := args[0].Str()
	lines := args[1].ListItems()

	var entries []*siem.LogEntry
	for _, lineVal := range lines {
		entry, err := siemIntegration.ParseLine(format, lineVal.Str())
		if err == nil && entry != nil {
			entries = append(entries, entry)
		}
	}

	stats := siemIntegration.AnalyzeLogs(entries)

	obj := vm.NewVMObject()
	obj.Set("total_events", vm.Int(int64(stats.TotalEvents)))

	bySource := vm.NewVMObject()
	for k, v := range stats.EventsBySource {
		bySource.Set(k, vm.Int(int64(v)))
	}
	obj.Set("events_by_source", vm.ObjectValue(bySource))

	byLevel := vm.NewVMObject()
	for k, v := range stats.EventsByLevel {
		byLevel.Set(k, vm.Int(int64(v)))
	}
	obj.Set("events_by_level", vm.ObjectValue(byLevel))

	indicators := make([]vm.Value, len(stats.ThreatIndicators))
	for i, ind := range stats.ThreatIndicators {
		indObj := vm.NewVMObject()
		indObj.Set("type", vm.String(ind.Type))
		indObj.Set("value", vm.String(ind.Value))
		indObj.Set("confidence", vm.Float(ind.Confidence))
		indObj.Set("count", vm.Int(int64(ind.Count)))
		indicators[i] = vm.ObjectValue(indObj)
	}
	obj.Set("threat_indicators", vm.ListVal(indicators))

	return vm.ObjectValue(obj)
}
