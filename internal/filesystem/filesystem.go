// Package filesystem backs the fsys_* natives in internal/stdlib/fsys.go:
// checksum hashing/verification and a security scan over file
// permissions, suspicious names, and crude malware signatures.
package filesystem

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileSystemModule has no state of its own beyond the scan results it
// accumulates; every operation reads the filesystem fresh.
type FileSystemModule struct {
	ScanResults []ScanResult
	mu          sync.Mutex
}

// ScanResult is one finding from ScanDirectory.
type ScanResult struct {
	Path        string
	Type        string // MALWARE, SUSPICIOUS, PERMISSION
	Severity    string // LOW, MEDIUM, HIGH, CRITICAL
	Description string
	Evidence    string
	Timestamp   time.Time
}

// HashType names a supported digest algorithm.
type HashType string

const (
	MD5Hash    HashType = "md5"
	SHA1Hash   HashType = "sha1"
	SHA256Hash HashType = "sha256"
)

func NewFileSystemModule() *FileSystemModule {
	return &FileSystemModule{
		ScanResults: make([]ScanResult, 0),
	}
}

// ScanDirectory walks path running permission, suspicious-name, and
// signature checks on every entry.
func (fs *FileSystemModule) ScanDirectory(path string, recursive bool) ([]ScanResult, error) {
	var results []ScanResult
	var mu sync.Mutex

	err := filepath.Walk(path, func(currentPath string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() && currentPath != path && !recursive {
			return filepath.SkipDir
		}

		scanResults := fs.performSecurityChecks(currentPath, info)

		mu.Lock()
		results = append(results, scanResults...)
		mu.Unlock()

		return nil
	})

	if err != nil {
		return results, err
	}

	fs.mu.Lock()
	fs.ScanResults = append(fs.ScanResults, results...)
	fs.mu.Unlock()

	return results, nil
}

func (fs *FileSystemModule) performSecurityChecks(path string, info os.FileInfo) []ScanResult {
	var results []ScanResult

	if permResult := fs.checkPermissions(path, info); permResult != nil {
		results = append(results, *permResult)
	}

	if suspResult := fs.checkSuspiciousFile(path, info); suspResult != nil {
		results = append(results, *suspResult)
	}

	if info.Mode().IsRegular() {
		if malwareResult := fs.checkMalwareSignatures(path, info); malwareResult != nil {
			results = append(results, *malwareResult)
		}
	}

	return results
}

func (fs *FileSystemModule) checkPermissions(path string, info os.FileInfo) *ScanResult {
	mode := info.Mode()

	if mode.Perm()&0002 != 0 {
		return &ScanResult{
			Path:        path,
			Type:        "PERMISSION",
			Severity:    "HIGH",
			Description: "world-writable file detected",
			Evidence:    fmt.Sprintf("permissions: %s", mode.String()),
			Timestamp:   time.Now(),
		}
	}

	if mode&os.ModeSetuid != 0 {
		return &ScanResult{
			Path:        path,
			Type:        "PERMISSION",
			Severity:    "MEDIUM",
			Description: "SUID file detected",
			Evidence:    fmt.Sprintf("permissions: %s", mode.String()),
			Timestamp:   time.Now(),
		}
	}

	if mode&os.ModeSetgid != 0 {
		return &ScanResult{
			Path:        path,
			Type:        "PERMISSION",
			Severity:    "MEDIUM",
			Description: "SGID file detected",
			Evidence:    fmt.Sprintf("permissions: %s", mode.String()),
			Timestamp:   time.Now(),
		}
	}

	return nil
}

func (fs *FileSystemModule) checkSuspiciousFile(path string, info os.FileInfo) *ScanResult {
	basename := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(basename))

	suspiciousExts := []string{
		".exe", ".bat", ".cmd", ".scr", ".pif", ".com",
		".dll", ".so", ".dylib", ".vbs", ".js", ".jar",
		".ps1", ".sh", ".py", ".pl", ".rb",
	}
	for _, suspExt := range suspiciousExts {
		if ext == suspExt {
			return &ScanResult{
				Path:        path,
				Type:        "SUSPICIOUS",
				Severity:    "MEDIUM",
				Description: "potentially suspicious executable file",
				Evidence:    fmt.Sprintf("extension: %s", ext),
				Timestamp:   time.Now(),
			}
		}
	}

	if strings.HasPrefix(basename, ".") && basename != "." && basename != ".." {
		return &ScanResult{
			Path:        path,
			Type:        "SUSPICIOUS",
			Severity:    "LOW",
			Description: "hidden file detected",
			Evidence:    fmt.Sprintf("filename: %s", basename),
			Timestamp:   time.Now(),
		}
	}

	suspiciousNames := []string{
		"passwd", "shadow", "hosts", "backdoor", "keylogger",
		"trojan", "virus", "malware", "exploit", "payload",
	}
	lowerName := strings.ToLower(basename)
	for _, suspName := range suspiciousNames {
		if strings.Contains(lowerName, suspName) {
			return &ScanResult{
				Path:        path,
				Type:        "SUSPICIOUS",
				Severity:    "HIGH",
				Description: "suspicious filename detected",
				Evidence:    fmt.Sprintf("filename contains: %s", suspName),
				Timestamp:   time.Now(),
			}
		}
	}

	return nil
}

func (fs *FileSystemModule) checkMalwareSignatures(path string, info os.FileInfo) *ScanResult {
	if info.Size() > 100*1024*1024 {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	buffer := make([]byte, 4096)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return nil
	}

	contentLower := strings.ToLower(string(buffer[:n]))

	malwarePatterns := []string{
		"eval(", "exec(", "system(", "shell_exec(",
		"cmd.exe", "powershell", "/bin/sh", "/bin/bash",
		"backdoor", "trojan", "keylogger", "rootkit",
		"metasploit", "meterpreter", "shellcode",
	}
	for _, pattern := range malwarePatterns {
		if strings.Contains(contentLower, pattern) {
			return &ScanResult{
				Path:        path,
				Type:        "MALWARE",
				Severity:    "CRITICAL",
				Description: "potential malware signature detected",
				Evidence:    fmt.Sprintf("pattern found: %s", pattern),
				Timestamp:   time.Now(),
			}
		}
	}

	return nil
}

// CalculateFileHash computes a single digest of path's contents.
func (fs *FileSystemModule) CalculateFileHash(path string, hashType HashType) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var h io.Writer
	var sum func([]byte) []byte

	switch hashType {
	case MD5Hash:
		hasher := md5.New()
		h, sum = hasher, hasher.Sum
	case SHA1Hash:
		hasher := sha1.New()
		h, sum = hasher, hasher.Sum
	case SHA256Hash:
		hasher := sha256.New()
		h, sum = hasher, hasher.Sum
	default:
		return "", fmt.Errorf("unsupported hash type: %s", hashType)
	}

	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(sum(nil)), nil
}

// VerifyChecksum reports whether path's digest matches expectedHash.
func (fs *FileSystemModule) VerifyChecksum(path string, expectedHash string, hashType HashType) (bool, error) {
	actualHash, err := fs.CalculateFileHash(path, hashType)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(actualHash, expectedHash), nil
}

// GetFileInfo reports size/mode/hash details about a single file.
func (fs *FileSystemModule) GetFileInfo(path string) (map[string]interface{}, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"path":        path,
		"size":        info.Size(),
		"mode":        info.Mode().String(),
		"mod_time":    info.ModTime(),
		"is_dir":      info.IsDir(),
		"permissions": fmt.Sprintf("%o", info.Mode().Perm()),
	}

	if info.Mode().IsRegular() {
		if h, err := fs.CalculateFileHash(path, SHA256Hash); err == nil {
			result["sha256"] = h
		}
	}

	return result, nil
}
