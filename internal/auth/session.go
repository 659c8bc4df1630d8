package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionLeeway は有効期限検証時に許容するクロックスキュー。
const sessionLeeway = 30 * time.Second

// SessionManager はセッショントークンの発行と検証を行う。
// トークンはHS256署名付きJWTで、サーバー側には永続化しない。
// 署名鍵のローテーションは発行済みの全トークンを無効化する。
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionManager はSessionManagerを生成する。
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue は指定ユーザーIDを主体とするセッショントークンを発行する。
// 有効期限は発行時刻 + TTL。
func (m *SessionManager) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate はセッショントークンを検証しユーザーIDを返す。
// 署名不正・形式不正・期限切れの場合はエラーを返す。
// 有効期限の判定には30秒のクロックスキューを許容する。
func (m *SessionManager) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithLeeway(sessionLeeway),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("session token is invalid")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("empty subject claim")
	}

	return claims.Subject, nil
}
