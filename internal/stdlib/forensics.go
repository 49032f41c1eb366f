package stdlib

import (
	"unicode"

	"github.com/pkg/errors"

	"sentra/internal/memory"
	"sentra/internal/vm"
)

var forensicsModule = memory.NewEnhancedForensics()

// RegisterForensics installs forensics_* natives over
// memory.EnhancedForensics, which walks the OS process table via runtime
// and os-level syscalls rather than a third-party library, plus
// mem_scan_strings, a standalone printable-string extractor wrapped with
// pkg/errors for annotated error chains (the memory forensics module is
// the one corner of the pack that reaches for pkg/errors instead of the
// language core's own error taxonomy).
func RegisterForensics(m *vm.VM) {
	m.RegisterNative("forensics_processes", nativeForensicsProcesses)
	m.RegisterNative("forensics_find_process", nativeForensicsFindProcess)
	m.RegisterNative("forensics_detect_hollowing", nativeForensicsDetectHollowing)
	m.RegisterNative("mem_scan_strings", nativeMemScanStrings)
}

// scanStrings extracts printable-ASCII runs of at least minLen bytes,
// the same signal a forensics tool pulls out of a raw memory dump.
func scanStrings(buf []byte, minLen int) ([]string, error) {
	if minLen < 1 {
		return nil, errors.New("mem_scan_strings: minLen must be >= 1")
	}
	var out []string
	var run []byte
	flush := func() {
		if len(run) >= minLen {
			out = append(out, string(run))
		}
		run = nil
	}
	for _, b := range buf {
		if b < 128 && (unicode.IsPrint(rune(b)) || b == ' ') {
			run = append(run, b)
		} else {
			flush()
		}
	}
	flush()
	return out, nil
}

func nativeMemScanStrings(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	minLen := 4
	if argc >= 2 {
		minLen = int(args[1].Int)
	}
	strs, err := scanStrings([]byte(args[0].Str()), minLen)
	if err != nil {
		return vm.Null()
	}
	out := make([]vm.Value, len(strs))
	for i, s := range strs {
		out[i] = vm.String(s)
	}
	return vm.ListVal(out)
}

func nativeForensicsProcesses(argc int, args []vm.Value) vm.Value {
	procs, err := forensicsModule.EnumerateProcesses()
	if err != nil {
		return vm.Null()
	}
	return processListValue(procs)
}

func nativeForensicsFindProcess(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	procs, err := forensicsModule.FindProcessByName(args[0].Str())
	if err != nil {
		return vm.Null()
	}
	return processListValue(procs)
}

func nativeForensicsDetectHollowing(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Bool(false)
	}
	hollowed, _, err := forensicsModule.DetectProcessHollowing(int(args[0].Int))
	if err != nil {
		return vm.Bool(false)
	}
	return vm.Bool(hollowed)
}

func processListValue(procs []*memory.ProcessInfo) vm.Value {
	out := make([]vm.Value, len(procs))
	for i, p := range procs {
		obj := vm.NewVMObject()
		obj.Set("pid", vm.Int(int64(p.PID)))
		obj.Set("name", vm.String(p.Name))
		obj.Set("path", vm.String(p.Path))
		obj.Set("parent_pid", vm.Int(int64(p.ParentPID)))
		out[i] = vm.ObjectValue(obj)
	}
	return vm.ListVal(out)
}
