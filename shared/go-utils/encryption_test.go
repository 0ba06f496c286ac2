package utils

import (
	"testing"
)

func TestAESGCMEncryptionDecryption(t *testing.T) {
	encryptionKey := make([]byte, 32)
	for i := 0; i < 32; i++ {
		encryptionKey[i] = byte(i)
	}

	plaintext := "mot-de-passe-smtp"

	ciphertext, err := Encrypt(encryptionKey, plaintext)
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	if ciphertext == plaintext {
		t.Fatal("ciphertext must differ from plaintext")
	}

	decrypted, err := Decrypt(encryptionKey, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}

	if decrypted != plaintext {
		t.Fatalf("Expected decrypted text '%s', got '%s'", plaintext, decrypted)
	}
}

func TestAESGCMNonceIsRandom(t *testing.T) {
	key, err := RandomKey(32)
	if err != nil {
		t.Fatalf("RandomKey returned error: %v", err)
	}
	a, _ := Encrypt(key, "same")
	b, _ := Encrypt(key, "same")
	if a == b {
		t.Fatal("two encryptions of the same text produced identical ciphertexts")
	}
}

func TestAESGCMInvalidKey(t *testing.T) {
	shortKey := []byte("not-32-bytes")
	if _, err := Encrypt(shortKey, "some text"); err == nil {
		t.Fatal("Expected error with invalid key length, got no error")
	}
	if _, err := Decrypt(shortKey, "some ciphertext"); err == nil {
		t.Fatal("Expected error with invalid key length, got no error")
	}
}

func TestAESGCMTamperedCiphertext(t *testing.T) {
	key := make([]byte, 32)
	ciphertext, err := Encrypt(key, "secret")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	other := make([]byte, 32)
	other[0] = 1
	if _, err := Decrypt(other, ciphertext); err == nil {
		t.Fatal("Expected decrypt with the wrong key to fail")
	}
}
