package stdlib

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"sentra/internal/filesystem"
	"sentra/internal/vm"
)

var fsModule = filesystem.NewFileSystemModule()

// RegisterFS installs fsys_* natives over filesystem.FileSystemModule's
// integrity-checking surface (crypto/md5, crypto/sha1, crypto/sha256),
// plus file_glob/file_stat_human which go straight to path/filepath and
// dustin/go-humanize for human-readable size formatting.
func RegisterFS(m *vm.VM) {
	m.RegisterNative("fsys_hash", nativeFSHash)
	m.RegisterNative("fsys_verify_checksum", nativeFSVerifyChecksum)
	m.RegisterNative("fsys_scan", nativeFSScan)
	m.RegisterNative("fsys_info", nativeFSInfo)
	m.RegisterNative("file_glob", nativeFileGlob)
	m.RegisterNative("file_stat_human", nativeFileStatHuman)
}

func nativeFileGlob(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	matches, err := filepath.Glob(args[0].Str())
	if err != nil {
		return vm.Null()
	}
	out := make([]vm.Value, len(matches))
	for i, p := range matches {
		out[i] = vm.String(p)
	}
	return vm.ListVal(out)
}

func nativeFileStatHuman(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	info, err := os.Stat(args[0].Str())
	if err != nil {
		return vm.Null()
	}
	obj := vm.NewVMObject()
	obj.Set("size", vm.String(humanize.Bytes(uint64(info.Size()))))
	obj.Set("modified", vm.String(humanize.Time(info.ModTime())))
	return vm.ObjectValue(obj)
}

func nativeFSHash(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	kind := filesystem.SHA256Hash
	if argc >= 2 {
		kind = filesystem.HashType(args[1].Str())
	}
	h, err := fsModule.CalculateFileHash(args[0].Str(), kind)
	if err != nil {
		return vm.Null()
	}
	return vm.String(h)
}

func nativeFSVerifyChecksum(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Bool(false)
	}
	kind := filesystem.SHA256Hash
	if argc >= 3 {
		kind = filesystem.HashType(args[2].Str())
	}
	ok, err := fsModule.VerifyChecksum(args[0].Str(), args[1].Str(), kind)
	if err != nil {
		return vm.Bool(false)
	}
	return vm.Bool(ok)
}

func nativeFSScan(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	recursive := argc >= 2 && args[1].Bool
	results, err := fsModule.ScanDirectory(args[0].Str(), recursive)
	if err != nil {
		return vm.Null()
	}
	out := make([]vm.Value, len(results))
	for i, r := range results {
		obj := vm.NewVMObject()
		obj.Set("path", vm.String(r.Path))
		obj.Set("type", vm.String(r.Type))
		obj.Set("severity", vm.String(r.Severity))
		obj.Set("description", vm.String(r.Description))
		out[i] = vm.ObjectValue(obj)
	}
	return vm.ListVal(out)
}

func nativeFSInfo(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	info, err := fsModule.GetFileInfo(args[0].Str())
	if err != nil {
		return vm.Null()
	}
	obj := vm.NewVMObject()
	for k, v := range info {
		obj.Set(k, scalarToValue(v))
	}
	return vm.ObjectValue(obj)
}
