package model

import "github.com/golang-jwt/jwt/v5"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// TokenClaims are the claims issued by the practice's identity provider.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}
