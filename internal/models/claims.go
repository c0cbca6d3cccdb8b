package models

import "github.com/golang-jwt/jwt/v5"

// Claims представляет стандартные поля JWT и пользовательские данные,
// которые мы включаем в токен доступа.
type Claims struct {
	UserID               string `json:"user_id"`
	Username             string `json:"username"`
	jwt.RegisteredClaims        // Встраиваем стандартные поля: Issuer, Subject, ExpiresAt, IssuedAt и т.д.
}
