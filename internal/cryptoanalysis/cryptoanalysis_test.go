package cryptoanalysis

import "testing"

func TestEncryptDecryptAESRoundTrip(t *testing.T) {
	ca := NewCryptoAnalysisModule()
	key, err := ca.GenerateSecureKey(256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plaintext := []byte("the quick brown fox")

	ct, err := ca.EncryptAES(plaintext, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pt, err := ca.DecryptAES(ct, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(pt) != string(plaintext) {
		t.Errorf("got %q, want %q", pt, plaintext)
	}
}

func TestDecryptAESShortCiphertext(t *testing.T) {
	ca := NewCryptoAnalysisModule()
	key, _ := ca.GenerateSecureKey(256)
	if _, err := ca.DecryptAES([]byte("short"), key); err == nil {
		t.Fatal("expected an error for a too-short ciphertext")
	}
}

func TestTestRandomnessFlagsLowEntropy(t *testing.T) {
	ca := NewCryptoAnalysisModule()
	repeated := make([]byte, 256)
	for i := range repeated {
		repeated[i] = 'a'
	}
	result, err := ca.TestRandomness(repeated, "low-entropy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Passed {
		t.Error("expected a constant byte slice to fail the randomness test")
	}
}

func TestHashSHA256KnownVector(t *testing.T) {
	ca := NewCryptoAnalysisModule()
	sum := ca.HashSHA256([]byte(""))
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := hexEncode(sum)
	if got != want {
		t.Errorf("HashSHA256(\"\") = %s, want %s", got, want)
	}
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0f]
	}
	return string(out)
}
