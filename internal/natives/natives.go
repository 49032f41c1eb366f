// Package natives implements the minimum native-function set spec
// §6.4 requires the host to make resolvable: print, split, join,
// substring, replace, to_upper, to_lower, len, append, pop, insert,
// remove, sqrt, pow, sin, cos, tan, log, abs, int, float, str, bool,
// open, read, write, close, exit, time, type, range, enumerate.
//
// These are host glue over Go's standard library, not domain logic —
// there is no third-party library whose concern is "coerce a VM Value
// to a string" or "open a file handle for a scripting VM's File kind".
package natives

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"sentra/internal/vm"
)

// RegisterAll installs every native this package provides into m.
func RegisterAll(m *vm.VM) {
	for name, fn := range table {
		m.RegisterNative(name, fn)
	}
}

var table = map[string]vm.NativeFunc{
	"print":     nativePrint,
	"split":     nativeSplit,
	"join":      nativeJoin,
	"substring": nativeSubstring,
	"replace":   nativeReplace,
	"to_upper":  nativeToUpper,
	"to_lower":  nativeToLower,
	"len":       nativeLen,
	"append":    nativeAppend,
	"pop":       nativePop,
	"insert":    nativeInsert,
	"remove":    nativeRemove,
	"sqrt":      nativeMath1(math.Sqrt),
	"pow":       nativePow,
	"sin":       nativeMath1(math.Sin),
	"cos":       nativeMath1(math.Cos),
	"tan":       nativeMath1(math.Tan),
	"log":       nativeMath1(math.Log),
	"abs":       nativeAbs,
	"int":       nativeInt,
	"float":     nativeFloat,
	"str":       nativeStr,
	"bool":      nativeBool,
	"open":      nativeOpen,
	"read":      nativeRead,
	"write":     nativeWrite,
	"close":     nativeClose,
	"exit":      nativeExit,
	"time":      nativeTime,
	"type":      nativeType,
	"range":     nativeRange,
	"enumerate": nativeEnumerate,
	// __list__ and __index__ back the compiler's array-literal and
	// subscript lowering (internal/compiler/compiler.go); they are not
	// part of the spec's public native-function contract.
	"__list__":  nativeListLit,
	"__index__": nativeIndexGet,
}

func nativePrint(argc int, args []vm.Value) vm.Value {
	parts := make([]string, argc)
	for i := 0; i < argc; i++ {
		parts[i] = args[i].String()
	}
	fmt.Println(strings.Join(parts, " "))
	return vm.Null()
}

func nativeSplit(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	parts := strings.Split(args[0].Str(), args[1].Str())
	out := make([]vm.Value, len(parts))
	for i, p := range parts {
		out[i] = vm.String(p)
	}
	return vm.ListVal(out)
}

func nativeJoin(argc int, args []vm.Value) vm.Value {
	if argc == 0 {
		return vm.String("")
	}
	if argc == 1 && args[0].Kind == vm.KindList {
		items := args[0].ListItems()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.String()
		}
		return vm.String(strings.Join(parts, ""))
	}
	parts := make([]string, argc)
	for i := 0; i < argc; i++ {
		parts[i] = args[i].String()
	}
	return vm.String(strings.Join(parts, ""))
}

func nativeSubstring(argc int, args []vm.Value) vm.Value {
	if argc < 3 {
		return vm.String("")
	}
	s := args[0].Str()
	start := int(args[1].Int)
	end := int(args[2].Int)
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start > end {
		return vm.String("")
	}
	return vm.String(s[start:end])
}

func nativeReplace(argc int, args []vm.Value) vm.Value {
	if argc < 3 {
		return vm.Null()
	}
	return vm.String(strings.ReplaceAll(args[0].Str(), args[1].Str(), args[2].Str()))
}

func nativeToUpper(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	return vm.String(strings.ToUpper(args[0].Str()))
}

func nativeToLower(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	return vm.String(strings.ToLower(args[0].Str()))
}

func nativeLen(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Int(0)
	}
	switch args[0].Kind {
	case vm.KindString:
		return vm.Int(int64(len(args[0].Str())))
	case vm.KindList:
		return vm.Int(int64(len(args[0].ListItems())))
	default:
		return vm.Int(0)
	}
}

func nativeAppend(argc int, args []vm.Value) vm.Value {
	if argc < 2 || args[0].Kind != vm.KindList {
		return vm.Null()
	}
	items := append(args[0].ListItems(), args[1])
	args[0].SetListItems(items)
	return args[0]
}

func nativePop(argc int, args []vm.Value) vm.Value {
	if argc < 1 || args[0].Kind != vm.KindList {
		return vm.Null()
	}
	items := args[0].ListItems()
	if len(items) == 0 {
		return vm.Null()
	}
	last := items[len(items)-1]
	args[0].SetListItems(items[:len(items)-1])
	return last
}

func nativeInsert(argc int, args []vm.Value) vm.Value {
	if argc < 3 || args[0].Kind != vm.KindList {
		return vm.Null()
	}
	items := args[0].ListItems()
	idx := int(args[1].Int)
	if idx < 0 {
		idx = 0
	}
	if idx > len(items) {
		idx = len(items)
	}
	out := make([]vm.Value, 0, len(items)+1)
	out = append(out, items[:idx]...)
	out = append(out, args[2])
	out = append(out, items[idx:]...)
	args[0].SetListItems(out)
	return args[0]
}

func nativeRemove(argc int, args []vm.Value) vm.Value {
	if argc < 2 || args[0].Kind != vm.KindList {
		return vm.Null()
	}
	items := args[0].ListItems()
	idx := int(args[1].Int)
	if idx < 0 || idx >= len(items) {
		return vm.Null()
	}
	removed := items[idx]
	out := append(items[:idx:idx], items[idx+1:]...)
	args[0].SetListItems(out)
	return removed
}

func nativeMath1(f func(float64) float64) vm.NativeFunc {
	return func(argc int, args []vm.Value) vm.Value {
		if argc < 1 {
			return vm.Float(0)
		}
		return vm.Float(f(toFloat(args[0])))
	}
}

func nativePow(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Float(0)
	}
	return vm.Float(math.Pow(toFloat(args[0]), toFloat(args[1])))
}

func nativeAbs(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Int(0)
	}
	if args[0].Kind == vm.KindFloat {
		return vm.Float(math.Abs(args[0].Float))
	}
	v := args[0].Int
	if v < 0 {
		v = -v
	}
	return vm.Int(v)
}

func toFloat(v vm.Value) float64 {
	switch v.Kind {
	case vm.KindFloat:
		return v.Float
	case vm.KindInt:
		return float64(v.Int)
	default:
		f, _ := strconv.ParseFloat(v.Str(), 64)
		return f
	}
}

func nativeInt(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Int(0)
	}
	switch args[0].Kind {
	case vm.KindInt:
		return args[0]
	case vm.KindFloat:
		return vm.Int(int64(args[0].Float))
	case vm.KindBool:
		if args[0].Bool {
			return vm.Int(1)
		}
		return vm.Int(0)
	default:
		i, _ := strconv.ParseInt(strings.TrimSpace(args[0].Str()), 10, 64)
		return vm.Int(i)
	}
}

func nativeFloat(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Float(0)
	}
	return vm.Float(toFloat(args[0]))
}

func nativeStr(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.String("")
	}
	return vm.String(args[0].String())
}

func nativeBool(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Bool(false)
	}
	switch args[0].Kind {
	case vm.KindBool:
		return args[0]
	case vm.KindInt:
		return vm.Bool(args[0].Int != 0)
	case vm.KindFloat:
		return vm.Bool(args[0].Float != 0)
	case vm.KindString:
		return vm.Bool(args[0].Str() != "")
	case vm.KindNull:
		return vm.Bool(false)
	default:
		return vm.Bool(true)
	}
}

func nativeOpen(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	mode := "r"
	if argc > 1 {
		mode = args[1].Str()
	}
	var f *os.File
	var err error
	switch mode {
	case "w":
		f, err = os.Create(args[0].Str())
	case "a":
		f, err = os.OpenFile(args[0].Str(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	default:
		f, err = os.Open(args[0].Str())
	}
	if err != nil {
		return vm.Null()
	}
	return vm.FileHandle(f)
}

func nativeRead(argc int, args []vm.Value) vm.Value {
	if argc < 1 || args[0].Kind != vm.KindFile {
		return vm.Null()
	}
	f, ok := args[0].File().(*os.File)
	if !ok {
		return vm.Null()
	}
	data, err := os.ReadFile(f.Name())
	if err != nil {
		return vm.Null()
	}
	return vm.String(string(data))
}

func nativeWrite(argc int, args []vm.Value) vm.Value {
	if argc < 2 || args[0].Kind != vm.KindFile {
		return vm.Null()
	}
	f, ok := args[0].File().(*os.File)
	if !ok {
		return vm.Null()
	}
	n, err := f.WriteString(args[1].Str())
	if err != nil {
		return vm.Null()
	}
	return vm.Int(int64(n))
}

func nativeClose(argc int, args []vm.Value) vm.Value {
	if argc < 1 || args[0].Kind != vm.KindFile {
		return vm.Null()
	}
	if f, ok := args[0].File().(*os.File); ok {
		f.Close()
	}
	return vm.Null()
}

func nativeExit(argc int, args []vm.Value) vm.Value {
	code := 0
	if argc > 0 {
		code = int(args[0].Int)
	}
	os.Exit(code)
	return vm.Null()
}

func nativeTime(argc int, args []vm.Value) vm.Value {
	return vm.Int(time.Now().Unix())
}

func nativeType(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.String("null")
	}
	switch args[0].Kind {
	case vm.KindNull:
		return vm.String("null")
	case vm.KindInt:
		return vm.String("int")
	case vm.KindFloat:
		return vm.String("float")
	case vm.KindBool:
		return vm.String("bool")
	case vm.KindString:
		return vm.String("string")
	case vm.KindList:
		return vm.String("list")
	case vm.KindFile:
		return vm.String("file")
	case vm.KindObject:
		return vm.String("object")
	default:
		return vm.String("unknown")
	}
}

func nativeRange(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.ListVal(nil)
	}
	start, end, step := int64(0), args[0].Int, int64(1)
	if argc >= 2 {
		start, end = args[0].Int, args[1].Int
	}
	if argc >= 3 {
		step = args[2].Int
	}
	if step == 0 {
		return vm.ListVal(nil)
	}
	var out []vm.Value
	if step > 0 {
		for i := start; i < end; i += step {
			out = append(out, vm.Int(i))
		}
	} else {
		for i := start; i > end; i += step {
			out = append(out, vm.Int(i))
		}
	}
	return vm.ListVal(out)
}

func nativeEnumerate(argc int, args []vm.Value) vm.Value {
	if argc < 1 || args[0].Kind != vm.KindList {
		return vm.ListVal(nil)
	}
	items := args[0].ListItems()
	out := make([]vm.Value, len(items))
	for i, it := range items {
		obj := vm.NewVMObject()
		obj.Set("index", vm.Int(int64(i)))
		obj.Set("value", it)
		out[i] = vm.ObjectValue(obj)
	}
	return vm.ListVal(out)
}

func nativeListLit(argc int, args []vm.Value) vm.Value {
	items := make([]vm.Value, argc)
	copy(items, args[:argc])
	return vm.ListVal(items)
}

func nativeIndexGet(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	switch args[0].Kind {
	case vm.KindList:
		items := args[0].ListItems()
		idx := int(args[1].Int)
		if idx < 0 || idx >= len(items) {
			return vm.Null()
		}
		return items[idx]
	case vm.KindString:
		s := args[0].Str()
		idx := int(args[1].Int)
		if idx < 0 || idx >= len(s) {
			return vm.Null()
		}
		return vm.String(string(s[idx]))
	default:
		return vm.Null()
	}
}
