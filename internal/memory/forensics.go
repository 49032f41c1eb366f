package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ProcessInfo represents information about a running process
type ProcessInfo struct {
	PID         int
	Name        string
	Path        string
	ParentPID   int
	WorkingSet  uint64
	VirtualSize uint64
	CommandLine string
	Threads     int
	Handles     int
}

// MemoryRegion represents a mapped region in a process's address space
type MemoryRegion struct {
	BaseAddress uintptr
	Size        uint64
	Protection  string
	Path        string
}

// EnhancedForensics enumerates processes and their memory maps off
// /proc, the same source `ps`/`pmap` read from on Linux.
type EnhancedForensics struct {
	processCache map[int]*ProcessInfo
	regionCache  map[int][]*MemoryRegion
}

func NewEnhancedForensics() *EnhancedForensics {
	return &EnhancedForensics{
		processCache: make(map[int]*ProcessInfo),
		regionCache:  make(map[int][]*MemoryRegion),
	}
}

// EnumerateProcesses walks /proc/[pid] for every numeric entry and reads
// its stat/cmdline/status files. Entries that vanish mid-scan (a process
// exiting) or that this user can't read are skipped, not reported as
// errors.
func (ef *EnhancedForensics) EnumerateProcesses() ([]*ProcessInfo, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("reading /proc: %w", err)
	}

	var processes []*ProcessInfo
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		p := ef.readProcess(pid)
		if p == nil {
			continue
		}
		processes = append(processes, p)
		ef.processCache[pid] = p
	}
	return processes, nil
}

func (ef *EnhancedForensics) readProcess(pid int) *ProcessInfo {
	statPath := filepath.Join("/proc", strconv.Itoa(pid), "stat")
	stat, err := os.ReadFile(statPath)
	if err != nil {
		return nil
	}

	// stat's comm field is parenthesized and may itself contain spaces or
	// parens, so split on the last ')' rather than a fixed field index.
	line := string(stat)
	open := strings.IndexByte(line, '(')
	close := strings.LastIndexByte(line, ')')
	if open < 0 || close < 0 || close < open {
		return nil
	}
	name := line[open+1 : close]
	fields := strings.Fields(line[close+1:])
	if len(fields) < 20 {
		return nil
	}
	ppid, _ := strconv.Atoi(fields[1])
	numThreads, _ := strconv.Atoi(fields[17])
	vsize, _ := strconv.ParseUint(fields[20], 10, 64)

	cmdline, _ := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "cmdline"))
	cmd := strings.ReplaceAll(strings.TrimRight(string(cmdline), "\x00"), "\x00", " ")

	exePath, _ := os.Readlink(filepath.Join("/proc", strconv.Itoa(pid), "exe"))

	return &ProcessInfo{
		PID:         pid,
		Name:        name,
		Path:        exePath,
		ParentPID:   ppid,
		VirtualSize: vsize,
		WorkingSet:  ef.residentSetSize(pid),
		CommandLine: cmd,
		Threads:     numThreads,
	}
}

func (ef *EnhancedForensics) residentSetSize(pid int) uint64 {
	status, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "status"))
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(status), "\n") {
		if strings.HasPrefix(line, "VmRSS:") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				kb, _ := strconv.ParseUint(fields[1], 10, 64)
				return kb * 1024
			}
		}
	}
	return 0
}

// FindProcessByName finds processes by exact comm-name match
func (ef *EnhancedForensics) FindProcessByName(name string) ([]*ProcessInfo, error) {
	allProcesses, err := ef.EnumerateProcesses()
	if err != nil {
		return nil, err
	}

	var matches []*ProcessInfo
	for _, p := range allProcesses {
		if p.Name == name {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// GetMemoryRegions parses /proc/[pid]/maps into MemoryRegion entries.
func (ef *EnhancedForensics) GetMemoryRegions(pid int) ([]*MemoryRegion, error) {
	if regions, exists := ef.regionCache[pid]; exists {
		return regions, nil
	}

	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "maps"))
	if err != nil {
		return nil, fmt.Errorf("reading memory map for pid %d: %w", pid, err)
	}

	var regions []*MemoryRegion
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		addrRange := strings.SplitN(fields[0], "-", 2)
		if len(addrRange) != 2 {
			continue
		}
		start, err1 := strconv.ParseUint(addrRange[0], 16, 64)
		end, err2 := strconv.ParseUint(addrRange[1], 16, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		path := ""
		if len(fields) >= 6 {
			path = fields[5]
		}
		regions = append(regions, &MemoryRegion{
			BaseAddress: uintptr(start),
			Size:        end - start,
			Protection:  fields[1],
			Path:        path,
		})
	}

	ef.regionCache[pid] = regions
	return regions, nil
}

// DetectProcessHollowing flags a process when any of four /proc signals
// shows: an executable mapping with no backing file, no executable
// mapping at all, an empty or unreadable exe link, or a binary path that
// no longer exists on disk.
func (ef *EnhancedForensics) DetectProcessHollowing(pid int) (bool, []string, error) {
	process, exists := ef.processCache[pid]
	if !exists {
		processes, err := ef.EnumerateProcesses()
		if err != nil {
			return false, nil, err
		}
		for _, p := range processes {
			if p.PID == pid {
				process = p
				break
			}
		}
		if process == nil {
			return false, nil, fmt.Errorf("process %d not found", pid)
		}
	}

	regions, err := ef.GetMemoryRegions(pid)
	if err != nil {
		return false, nil, err
	}

	var indicators []string
	hasExecutable := false
	for _, r := range regions {
		if strings.Contains(r.Protection, "x") {
			hasExecutable = true
			if r.Path == "" {
				indicators = append(indicators, fmt.Sprintf("executable region at 0x%x has no backing file", r.BaseAddress))
			}
		}
	}
	if !hasExecutable {
		indicators = append(indicators, "no executable regions found")
	}
	if process.Path == "" {
		indicators = append(indicators, "process exe symlink is empty or unreadable")
	} else if _, err := os.Stat(process.Path); err != nil {
		indicators = append(indicators, fmt.Sprintf("process binary %s no longer exists on disk", process.Path))
	}

	return len(indicators) > 0, indicators, nil
}
