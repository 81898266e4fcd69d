package token

import (
	"errors"
	"testing"
	"time"
)

func TestCreateAndVerify(t *testing.T) {
	maker := NewJWTMaker("test-secret-key-that-is-long-enough")

	tok, claims, err := maker.CreateToken("u1", "awa@example.com", true, KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	got, err := maker.VerifyToken(tok, KindAccess)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if got.UserID != "u1" || !got.IsAdmin || got.ID != claims.ID {
		t.Fatalf("claims = %+v", got)
	}

	if _, err := maker.VerifyToken(tok, KindRefresh); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
}

func TestVerifyRejectsExpiredAndForeign(t *testing.T) {
	maker := NewJWTMaker("secret-a")

	expired, _, err := maker.CreateToken("u1", "a@b.c", false, KindAccess, -time.Minute)
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}
	if _, err := maker.VerifyToken(expired, KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token error = %v", err)
	}

	foreign, _, _ := NewJWTMaker("secret-b").CreateToken("u1", "a@b.c", false, KindAccess, time.Minute)
	if _, err := maker.VerifyToken(foreign, KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token error = %v", err)
	}
}
