package model

import "time"

// Donor represents a registered donor account as stored in the
// `utilizadores` table. The json tags are omitted here because these
// structs are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key, a UUID string generated at registration.
//  Nome         – display name of the donor.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Idade        – age in years; zero when not provided yet.
//  TipoSanguineo – blood type label (e.g. "A+", "O-"); empty when unknown.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Donor struct {
	ID            string    // utilizadores.id (CHAR(36) UUID)
	Nome          string    // utilizadores.nome
	Email         string    // utilizadores.email
	PasswordHash  string    // utilizadores.password_hash
	Idade         uint8     // utilizadores.idade
	TipoSanguineo string    // utilizadores.tipo_sanguineo
	CreatedAt     time.Time // utilizadores.created_at
	UpdatedAt     time.Time // utilizadores.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a donor and contains metadata for expiry
// and revocation. The plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	DonorID   string     // refresh_tokens.donor_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (null while active)
	CreatedAt time.Time  // refresh_tokens.created_at
}
