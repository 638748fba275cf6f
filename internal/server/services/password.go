package services

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/mweller/jotter/internal/common"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// HashPassword derives an argon2id digest for password with a fresh salt.
func HashPassword(password string) (hash, salt []byte) {
	salt = common.GenerateRandByteArray(saltLen)
	hash = argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hash, salt
}

// VerifyPassword reports whether candidate matches the stored digest. The
// comparison is constant time.
func VerifyPassword(candidate string, hash, salt []byte) bool {
	candidateHash := argon2.IDKey([]byte(candidate), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(hash, candidateHash) == 1
}
