package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the signed bearer token payload. Only the principal id and
// role are carried; iat and exp live in the registered claims.
type JWTClaims struct {
	PrincipalID string `json:"principalId"`
	Role        Role   `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the verified caller of a protected operation.
type Actor struct {
	ID   string
	Role Role
}

// ActorOf builds an Actor from verified claims.
func ActorOf(claims *JWTClaims) Actor {
	return Actor{ID: claims.PrincipalID, Role: claims.Role}
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	Token     string
	Principal PrincipalInfo
}
