// Package stdlib bridges the teacher's domain modules (database, network,
// cryptanalysis, machine learning, filesystem, memory forensics, SIEM) into
// the VM's native-function table. Each file here owns one domain and stays
// a thin adapter: argument decoding in, a VMObject/Value out, the actual
// work delegated to the existing module package.
package stdlib

import (
	"fmt"

	"sentra/internal/database"
	"sentra/internal/vm"
)

var dbManager = database.NewDBManager()
var dbSecModule = database.NewDatabaseModule()

// RegisterDB installs db_* natives backed by database.DBManager, which in
// turn dials modernc.org/sqlite, github.com/lib/pq or
// github.com/go-sql-driver/mysql depending on the requested driver.
func RegisterDB(m *vm.VM) {
	m.RegisterNative("db_open", nativeDBConnect)
	m.RegisterNative("db_close", nativeDBClose)
	m.RegisterNative("db_query", nativeDBQuery)
	m.RegisterNative("db_exec", nativeDBExecute)
	m.RegisterNative("db_query_one", nativeDBQueryOne)
	m.RegisterNative("db_list", nativeDBList)
	m.RegisterNative("db_test_sql_injection", nativeDBTestSQLInjection)
}

func nativeDBTestSQLInjection(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	result, err := dbSecModule.TestSQLInjection(args[0].Str(), args[1].Str())
	if err != nil {
		return vm.Null()
	}
	obj := vm.NewVMObject()
	obj.Set("vulnerable", vm.Bool(result.Vulnerable))
	evidence := make([]vm.Value, len(result.Evidence))
	for i, e := range result.Evidence {
		evidence[i] = vm.String(e)
	}
	obj.Set("evidence", vm.ListVal(evidence))
	return vm.ObjectValue(obj)
}

func nativeDBConnect(argc int, args []vm.Value) vm.Value {
	if argc != 3 {
		return vm.Bool(false)
	}
	err := dbManager.Connect(args[0].Str(), args[1].Str(), args[2].Str())
	return vm.Bool(err == nil)
}

func nativeDBClose(argc int, args []vm.Value) vm.Value {
	if argc != 1 {
		return vm.Bool(false)
	}
	return vm.Bool(dbManager.Close(args[0].Str()) == nil)
}

func nativeDBQuery(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	rows, err := dbManager.Query(args[0].Str(), args[1].Str(), queryArgs(args[2:])...)
	if err != nil {
		return vm.Null()
	}
	out := make([]vm.Value, len(rows))
	for i, row := range rows {
		obj := vm.NewVMObject()
		for k, v := range row {
			obj.Set(k, scalarToValue(v))
		}
		out[i] = vm.ObjectValue(obj)
	}
	return vm.ListVal(out)
}

func nativeDBQueryOne(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	row, err := dbManager.QueryOne(args[0].Str(), args[1].Str(), queryArgs(args[2:])...)
	if err != nil {
		return vm.Null()
	}
	obj := vm.NewVMObject()
	for k, v := range row {
		obj.Set(k, scalarToValue(v))
	}
	return vm.ObjectValue(obj)
}

func nativeDBExecute(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Int(0)
	}
	affected, err := dbManager.Execute(args[0].Str(), args[1].Str(), queryArgs(args[2:])...)
	if err != nil {
		return vm.Int(-1)
	}
	return vm.Int(affected)
}

func nativeDBList(argc int, args []vm.Value) vm.Value {
	conns := dbManager.ListConnections()
	out := make([]vm.Value, len(conns))
	for i, c := range conns {
		obj := vm.NewVMObject()
		for k, v := range c {
			obj.Set(k, scalarToValue(v))
		}
		out[i] = vm.ObjectValue(obj)
	}
	return vm.ListVal(out)
}

func queryArgs(vs []vm.Value) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = valueToScalar(v)
	}
	return out
}

func valueToScalar(v vm.Value) interface{} {
	switch v.Kind {
	case vm.KindInt:
		return v.Int
	case vm.KindFloat:
		return v.Float
	case vm.KindBool:
		return v.Bool
	case vm.KindString:
		return v.Str()
	default:
		return nil
	}
}

func scalarToValue(v interface{}) vm.Value {
	switch x := v.(type) {
	case nil:
		return vm.Null()
	case string:
		return vm.String(x)
	case []byte:
		return vm.String(string(x))
	case int:
		return vm.Int(int64(x))
	case int32:
		return vm.Int(int64(x))
	case int64:
		return vm.Int(x)
	case float32:
		return vm.Float(float64(x))
	case float64:
		return vm.Float(x)
	case bool:
		return vm.Bool(x)
	default:
		return vm.String(fmt.Sprintf("%v", x))
	}
}
