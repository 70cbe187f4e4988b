package users

import "time"

// User es una cuenta registrada. PasswordHash nunca sale por la API.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         string

	CreatedAt time.Time
}

// Session registra un login (o el alta, que también inicia sesión).
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// AuthResult es lo que devuelven Register y Login.
// Token queda vacío cuando el servicio corre sin firmador (modo dev).
type AuthResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
