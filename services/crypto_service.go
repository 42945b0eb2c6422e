package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLength    = 32
	saltLength   = 16
)

type CryptoService interface {
	GenerateSalt() ([]byte, error)
	DeriveKey(passphrase string, salt []byte) []byte
	GenerateDEK() ([]byte, error)
	Encrypt(key []byte, plaintext []byte) (string, error)
	Decrypt(key []byte, payload string) ([]byte, error)
	WrapDEK(kek []byte, dek []byte) (string, error)
	UnwrapDEK(kek []byte, wrapped string) ([]byte, error)
}

type cryptoService struct{}

func NewCryptoService() CryptoService {
	return &cryptoService{}
}

func (s *cryptoService) GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, newAppError(http.StatusInternalServerError, "生成盐值失败", err)
	}
	return salt, nil
}

// DeriveKey turns a passphrase into a 256-bit key with Argon2id.
func (s *cryptoService) DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLength)
}

func (s *cryptoService) GenerateDEK() ([]byte, error) {
	dek := make([]byte, keyLength)
	if _, err := rand.Read(dek); err != nil {
		return nil, newAppError(http.StatusInternalServerError, "生成数据密钥失败", err)
	}
	return dek, nil
}

// Encrypt seals plaintext with AES-256-GCM. The payload is
// base64(nonce) + ":" + base64(ciphertext); a fresh nonce per call.
func (s *cryptoService) Encrypt(key []byte, plaintext []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", newAppError(http.StatusInternalServerError, "生成随机数失败", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(nonce) + ":" + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *cryptoService) Decrypt(key []byte, payload string) ([]byte, error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return nil, newAppError(http.StatusBadRequest, "密文格式错误", nil)
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, newAppError(http.StatusBadRequest, "密文格式错误", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, newAppError(http.StatusBadRequest, "密文格式错误", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, newAppError(http.StatusBadRequest, "密文格式错误", nil)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, newAppError(http.StatusBadRequest, "解密失败，密钥不匹配或数据已损坏", err)
	}
	return plaintext, nil
}

func (s *cryptoService) WrapDEK(kek []byte, dek []byte) (string, error) {
	return s.Encrypt(kek, dek)
}

func (s *cryptoService) UnwrapDEK(kek []byte, wrapped string) ([]byte, error) {
	dek, err := s.Decrypt(kek, wrapped)
	if err != nil {
		return nil, err
	}
	if len(dek) != keyLength {
		return nil, newAppError(http.StatusBadRequest, "数据密钥长度错误", errors.New("unexpected key length"))
	}
	return dek, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keyLength {
		return nil, newAppError(http.StatusBadRequest, "密钥长度错误", errors.New("unexpected key length"))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "初始化加密器失败", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "初始化加密器失败", err)
	}
	return gcm, nil
}
