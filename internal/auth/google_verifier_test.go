package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// --- テストヘルパー ---

const (
	testClientID = "client-id-123.apps.googleusercontent.com"
	testKeyID    = "test-key-1"
)

// newTestKeyAndJWKS はRSA鍵ペアとそれを公開するJWKSサーバーを生成する。
func newTestKeyAndJWKS(t *testing.T) (*rsa.PrivateKey, *httptest.Server, *int) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate rsa key: %v", err)
	}

	fetchCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetchCount++
		writeJWKS(t, w, testKeyID, &key.PublicKey)
	}))
	t.Cleanup(server.Close)

	return key, server, &fetchCount
}

// writeJWKS は公開鍵をJWKS形式でレスポンスに書き込む。
func writeJWKS(t *testing.T, w http.ResponseWriter, kid string, pub *rsa.PublicKey) {
	t.Helper()

	eBytes := []byte{
		byte(pub.E >> 16), byte(pub.E >> 8), byte(pub.E),
	}
	jwks := map[string]interface{}{
		"keys": []map[string]string{
			{
				"kty": "RSA",
				"kid": kid,
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(eBytes),
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jwks)
}

// signIDToken は指定クレームのIDトークンをRS256で署名して返す。
func signIDToken(t *testing.T, key *rsa.PrivateKey, kid string, claims googleIDClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign id token: %v", err)
	}
	return signed
}

// validClaims は検証を通過するクレームを生成する。
func validClaims() googleIDClaims {
	now := time.Now()
	return googleIDClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    googleIssuer,
			Subject:   "google-subject-1",
			Audience:  jwt.ClaimStrings{testClientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Hour)),
		},
		Email:   "taro@example.com",
		Name:    "Taro Yamada",
		Picture: "https://example.com/taro.png",
	}
}

// --- テスト ---

// 正当なIDトークンからユーザー情報が抽出されることを検証
func TestGoogleVerifier_Verify_Success(t *testing.T) {
	key, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	token := signIDToken(t, key, testKeyID, validClaims())

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.SubjectID != "google-subject-1" {
		t.Errorf("SubjectID = %q, want %q", claims.SubjectID, "google-subject-1")
	}
	if claims.Email != "taro@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "taro@example.com")
	}
	if claims.Name != "Taro Yamada" {
		t.Errorf("Name = %q", claims.Name)
	}
	if claims.Picture != "https://example.com/taro.png" {
		t.Errorf("Picture = %q", claims.Picture)
	}
}

// レガシー形式の発行者（スキームなし）も許容されることを検証
func TestGoogleVerifier_Verify_LegacyIssuer(t *testing.T) {
	key, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	claims := validClaims()
	claims.Issuer = googleIssuerLegacy
	token := signIDToken(t, key, testKeyID, claims)

	if _, err := v.Verify(context.Background(), token); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

// audienceが一致しないトークンが拒否されることを検証
func TestGoogleVerifier_Verify_WrongAudience(t *testing.T) {
	key, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	claims := validClaims()
	claims.Audience = jwt.ClaimStrings{"other-client-id"}
	token := signIDToken(t, key, testKeyID, claims)

	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Error("Verify() error = nil, want error for wrong audience")
	}
}

// 期限切れトークンが拒否されることを検証
func TestGoogleVerifier_Verify_Expired(t *testing.T) {
	key, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-1 * time.Hour))
	token := signIDToken(t, key, testKeyID, claims)

	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Error("Verify() error = nil, want error for expired token")
	}
}

// 許容外の発行者が拒否されることを検証
func TestGoogleVerifier_Verify_WrongIssuer(t *testing.T) {
	key, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	claims := validClaims()
	claims.Issuer = "https://evil.example.com"
	token := signIDToken(t, key, testKeyID, claims)

	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Error("Verify() error = nil, want error for wrong issuer")
	}
}

// 別の鍵で署名されたトークンが拒否されることを検証
func TestGoogleVerifier_Verify_WrongKey(t *testing.T) {
	_, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate rsa key: %v", err)
	}
	token := signIDToken(t, otherKey, testKeyID, validClaims())

	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Error("Verify() error = nil, want error for wrong signing key")
	}
}

// HMAC署名のトークンがアルゴリズム制限で拒否されることを検証
func TestGoogleVerifier_Verify_RejectsHMAC(t *testing.T) {
	_, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString([]byte("hmac-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := v.Verify(context.Background(), signed); err == nil {
		t.Error("Verify() error = nil, want error for HS256 token")
	}
}

// 未知のkidのトークンが拒否されることを検証
func TestGoogleVerifier_Verify_UnknownKid(t *testing.T) {
	key, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	token := signIDToken(t, key, "unknown-kid", validClaims())

	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Error("Verify() error = nil, want error for unknown kid")
	}
}

// 形式不正のトークンが拒否されることを検証
func TestGoogleVerifier_Verify_Malformed(t *testing.T) {
	_, server, _ := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := v.Verify(context.Background(), token); err == nil {
			t.Errorf("Verify(%q) error = nil, want error", token)
		}
	}
}

// 2回目以降の検証ではJWKSキャッシュが使われることを検証
func TestGoogleVerifier_Verify_CachesJWKS(t *testing.T) {
	key, server, fetchCount := newTestKeyAndJWKS(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})

	for i := 0; i < 3; i++ {
		token := signIDToken(t, key, testKeyID, validClaims())
		if _, err := v.Verify(context.Background(), token); err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
	}

	if *fetchCount != 1 {
		t.Errorf("jwks fetch count = %d, want 1", *fetchCount)
	}
}
