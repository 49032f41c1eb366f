package stdlib

import (
	"encoding/hex"
	"math"

	"golang.org/x/crypto/bcrypt"

	"sentra/internal/cryptoanalysis"
	"sentra/internal/vm"
)

var cryptoModule = cryptoanalysis.NewCryptoAnalysisModule()

// RegisterCrypto installs crypto_* natives over cryptoanalysis.CryptoAnalysisModule
// (AES/SHA256/key generation, itself built on crypto/aes, crypto/sha256 and
// crypto/rand) plus a bcrypt_* pair wired directly to golang.org/x/crypto.
func RegisterCrypto(m *vm.VM) {
	m.RegisterNative("hash_sha256", nativeHashSHA256)
	m.RegisterNative("hash_entropy", nativeEntropy)
	m.RegisterNative("xor_bruteforce", nativeXORBruteforce)
	m.RegisterNative("crypto_encrypt_aes", nativeEncryptAES)
	m.RegisterNative("crypto_decrypt_aes", nativeDecryptAES)
	m.RegisterNative("crypto_gen_key", nativeGenKey)
	m.RegisterNative("bcrypt_hash", nativeBcryptHash)
	m.RegisterNative("bcrypt_check", nativeBcryptCheck)
}

// nativeXORBruteforce tries every single-byte XOR key against ciphertext
// and returns the plaintext whose byte entropy is lowest (English text
// and other structured plaintext score far below random ciphertext),
// the classic single-byte-XOR break.
func nativeXORBruteforce(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	ct := []byte(args[0].Str())
	bestKey, bestScore := 0, math.Inf(1)
	var best []byte
	for k := 0; k < 256; k++ {
		pt := make([]byte, len(ct))
		for i, b := range ct {
			pt[i] = b ^ byte(k)
		}
		result, err := cryptoModule.TestRandomness(pt, "xor-trial")
		if err != nil {
			continue
		}
		if result.Entropy < bestScore {
			bestScore, bestKey, best = result.Entropy, k, pt
		}
	}
	obj := vm.NewVMObject()
	obj.Set("key", vm.Int(int64(bestKey)))
	obj.Set("plaintext", vm.String(string(best)))
	obj.Set("entropy", vm.Float(bestScore))
	return vm.ObjectValue(obj)
}

func nativeHashSHA256(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	sum := cryptoModule.HashSHA256([]byte(args[0].Str()))
	return vm.String(hex.EncodeToString(sum))
}

func nativeEncryptAES(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	ct, err := cryptoModule.EncryptAES([]byte(args[0].Str()), []byte(args[1].Str()))
	if err != nil {
		return vm.Null()
	}
	return vm.String(hex.EncodeToString(ct))
}

func nativeDecryptAES(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	ct, err := hex.DecodeString(args[0].Str())
	if err != nil {
		return vm.Null()
	}
	pt, err := cryptoModule.DecryptAES(ct, []byte(args[1].Str()))
	if err != nil {
		return vm.Null()
	}
	return vm.String(string(pt))
}

func nativeGenKey(argc int, args []vm.Value) vm.Value {
	size := 256
	if argc >= 1 {
		size = int(args[0].Int)
	}
	key, err := cryptoModule.GenerateSecureKey(size)
	if err != nil {
		return vm.Null()
	}
	return vm.String(hex.EncodeToString(key))
}

func nativeEntropy(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Float(0)
	}
	result, err := cryptoModule.TestRandomness([]byte(args[0].Str()), "entropy")
	if err != nil {
		return vm.Float(0)
	}
	return vm.Float(result.Entropy)
}

func nativeBcryptHash(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(args[0].Str()), bcrypt.DefaultCost)
	if err != nil {
		return vm.Null()
	}
	return vm.String(string(hashed))
}

func nativeBcryptCheck(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Bool(false)
	}
	err := bcrypt.CompareHashAndPassword([]byte(args[0].Str()), []byte(args[1].Str()))
	return vm.Bool(err == nil)
}
