package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/sumika/internal/model"
)

// tokenIssuer はJWTのiss/検証に使用する発行者名。
const tokenIssuer = "sumika"

// tokenClaims はセッショントークンのクレーム。
// subjectにユーザーID、emailクレームにメールアドレスを載せる。
type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager は署名付きセッショントークンの発行と検証を行う。
// トークンは短命（既定15分）で、サーバ側に状態を持たない。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL はトークンの有効期間を返す。CookieのMaxAge設定に使用する。
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue はユーザーのセッショントークンを発行する。
func (m *TokenManager) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗しました: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、認証済みアイデンティティを返す。
// 署名不正・期限切れ・発行者不一致はいずれもUNAUTHORIZEDエラーになる。
func (m *TokenManager) Verify(tokenString string) (*model.TokenIdentity, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, model.NewUnauthorizedError()
	}
	if claims.Subject == "" {
		return nil, model.NewUnauthorizedError()
	}

	return &model.TokenIdentity{
		UserID: claims.Subject,
		Email:  claims.Email,
	}, nil
}
