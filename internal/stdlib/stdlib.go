package stdlib

import "sentra/internal/vm"

// RegisterAll installs every domain-module bridge (db, net, crypto,
// filesystem, memory forensics, SIEM, ml) into m. Call this alongside
// natives.RegisterAll for a VM that should see the full native surface.
func RegisterAll(m *vm.VM) {
	RegisterDB(m)
	RegisterNet(m)
	RegisterCrypto(m)
	RegisterFS(m)
	RegisterForensics(m)
	RegisterSIEM(m)
	RegisterML(m)
}
