package stdlib

import (
	"sentra/internal/network"
	"sentra/internal/vm"
)

var netModule = network.NewNetworkModule()

// RegisterNet installs the http_*, net_* and ws_* natives over
// network.NetworkModule, which exercises net/http directly and
// github.com/gorilla/websocket for the ws_* natives.
func RegisterNet(m *vm.VM) {
	m.RegisterNative("http_get", nativeHTTPGet)
	m.RegisterNative("http_post", nativeHTTPPost)
	m.RegisterNative("net_download", nativeDownload)
	m.RegisterNative("net_port_scan", nativePortScan)
	m.RegisterNative("ws_connect", nativeWSConnect)
	m.RegisterNative("ws_send", nativeWSSend)
	m.RegisterNative("ws_recv", nativeWSReceive)
	m.RegisterNative("ws_close", nativeWSClose)
}

func nativePortScan(argc int, args []vm.Value) vm.Value {
	if argc < 3 {
		return vm.Null()
	}
	scanType := "tcp"
	if argc >= 4 {
		scanType = args[3].Str()
	}
	results := netModule.PortScan(args[0].Str(), int(args[1].Int), int(args[2].Int), scanType)
	out := make([]vm.Value, len(results))
	for i, r := range results {
		obj := vm.NewVMObject()
		obj.Set("port", vm.Int(int64(r.Port)))
		obj.Set("state", vm.String(r.State))
		obj.Set("service", vm.String(r.Service))
		obj.Set("banner", vm.String(r.Banner))
		out[i] = vm.ObjectValue(obj)
	}
	return vm.ListVal(out)
}

func nativeHTTPGet(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	resp, err := netModule.HTTPGet(args[0].Str())
	if err != nil {
		return vm.Null()
	}
	return httpResponseValue(resp.StatusCode, resp.Body)
}

func httpResponseValue(status int, body string) vm.Value {
	obj := vm.NewVMObject()
	obj.Set("status", vm.Int(int64(status)))
	obj.Set("body", vm.String(body))
	return vm.ObjectValue(obj)
}

func nativeHTTPPost(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	resp, err := netModule.HTTPPost(args[0].Str(), []byte(args[1].Str()), nil)
	if err != nil {
		return vm.Null()
	}
	return httpResponseValue(resp.StatusCode, resp.Body)
}

func nativeDownload(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	data, err := netModule.Download(args[0].Str())
	if err != nil {
		return vm.Null()
	}
	return vm.String(string(data))
}

func nativeWSConnect(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Bool(false)
	}
	conn, err := netModule.WebSocketConnect(args[0].Str())
	if err != nil {
		return vm.Bool(false)
	}
	wsConns[args[0].Str()] = conn
	return vm.Bool(true)
}

var wsConns = map[string]*network.WebSocketConn{}

func nativeWSSend(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Bool(false)
	}
	return vm.Bool(netModule.WebSocketSend(args[0].Str(), args[1].Str()) == nil)
}

func nativeWSReceive(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	msg, err := netModule.WebSocketReceive(args[0].Str(), 0)
	if err != nil {
		return vm.Null()
	}
	return vm.String(msg)
}

func nativeWSClose(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Bool(false)
	}
	delete(wsConns, args[0].Str())
	return vm.Bool(netModule.WebSocketClose(args[0].Str()) == nil)
}
