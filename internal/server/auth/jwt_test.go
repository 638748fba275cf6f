package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mweller/jotter/internal/common"
)

var secret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	tok, err := GenerateToken("user-1", secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	uid, err := GetUserIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("GetUserIDFromToken error: %v", err)
	}
	if uid != "user-1" {
		t.Fatalf("want user-1, got %q", uid)
	}
}

func TestExpiredToken(t *testing.T) {
	tok, err := GenerateToken("user-1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestWrongSecret(t *testing.T) {
	tok, err := GenerateToken("user-1", secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, []byte("other-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestGarbageToken(t *testing.T) {
	_, err := GetUserIDFromToken("not-a-jwt", secret)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
