package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

	googleIssuer       = "https://accounts.google.com"
	googleIssuerLegacy = "accounts.google.com"

	// jwksCacheTTL は公開鍵キャッシュの有効期間。
	// 期限内でも未知のkidに遭遇した場合は再取得する。
	jwksCacheTTL = 1 * time.Hour
)

// IdentityClaims は検証済みIDトークンから抽出したユーザー情報を表す。
type IdentityClaims struct {
	SubjectID string
	Email     string
	Name      string
	Picture   string
}

// TokenVerifier は外部IdPが発行したIDトークンの検証インターフェース。
// 検証は全か無か: いずれかのチェックに失敗した場合はエラーを返し、
// 部分的な情報を返さない。
type TokenVerifier interface {
	// Verify はIDトークンの署名・audience・発行者・有効期限を検証し、
	// ユーザー情報を抽出する。
	Verify(ctx context.Context, rawToken string) (*IdentityClaims, error)
}

// GoogleVerifierConfig はGoogleVerifierの設定。
type GoogleVerifierConfig struct {
	// ClientID はaudienceクレームと照合するOAuthクライアントID。
	ClientID string

	// テスト用にオーバーライド可能なURL
	JWKSURL string
	// Issuers はテスト用にオーバーライド可能な許容発行者リスト。
	Issuers []string
}

// GoogleVerifier はGoogleが発行したIDトークンを検証する。
// 署名検証に使う公開鍵はGoogleのJWKSエンドポイントから取得し、キャッシュする。
type GoogleVerifier struct {
	config GoogleVerifierConfig

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewGoogleVerifier はGoogleVerifierを生成する。
func NewGoogleVerifier(config GoogleVerifierConfig) *GoogleVerifier {
	if config.JWKSURL == "" {
		config.JWKSURL = defaultGoogleJWKSURL
	}
	if len(config.Issuers) == 0 {
		config.Issuers = []string{googleIssuer, googleIssuerLegacy}
	}
	return &GoogleVerifier{config: config}
}

// googleIDClaims はGoogleのIDトークンに含まれるクレーム。
type googleIDClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Verify はIDトークンのRS256署名をGoogleの公開鍵で検証し、
// audience・発行者・有効期限をチェックしてユーザー情報を抽出する。
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*IdentityClaims, error) {
	claims := &googleIDClaims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.config.ClientID),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("missing kid header")
		}
		return v.lookupKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("id token is invalid")
	}

	if !v.issuerAllowed(claims.Issuer) {
		return nil, fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("empty sub claim")
	}

	return &IdentityClaims{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Picture:   claims.Picture,
	}, nil
}

// issuerAllowed は発行者クレームが許容リストに含まれるかを返す。
func (v *GoogleVerifier) issuerAllowed(issuer string) bool {
	for _, iss := range v.config.Issuers {
		if issuer == iss {
			return true
		}
	}
	return false
}

// lookupKey は指定kidの公開鍵をキャッシュから取得する。
// キャッシュが古い、またはkidが未知の場合はJWKSを再取得する。
func (v *GoogleVerifier) lookupKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetchedAt) < jwksCacheTTL
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	key, ok = v.keys[kid]
	v.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown key id: %s", kid)
	}
	return key, nil
}

// jwksResponse はJWKSエンドポイントのレスポンス。
type jwksResponse struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

// refreshKeys はJWKSエンドポイントから公開鍵を取得しキャッシュを入れ替える。
func (v *GoogleVerifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.config.JWKSURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create jwks request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwks request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read jwks response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var jwks jwksResponse
	if err := json.Unmarshal(body, &jwks); err != nil {
		return fmt.Errorf("failed to parse jwks response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			return fmt.Errorf("failed to parse jwk %s: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}

	if len(keys) == 0 {
		return fmt.Errorf("no usable keys in jwks response")
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	return nil
}

// parseRSAPublicKey はbase64url表現のmodulusとexponentからRSA公開鍵を構築する。
func parseRSAPublicKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	exponent := 0
	for _, b := range eBytes {
		exponent = exponent<<8 | int(b)
	}
	if exponent <= 0 {
		return nil, fmt.Errorf("non-positive exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: exponent,
	}, nil
}

// compile-time interface check
var _ TokenVerifier = (*GoogleVerifier)(nil)
