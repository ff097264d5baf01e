package model

import "time"

// Donation status values. A record only moves forward:
// PENDING -> STARTED -> CONFIRMED, with CANCELLED reachable from
// PENDING or STARTED. CONFIRMED and CANCELLED are terminal.
const (
	StatusPending   = "PENDING"
	StatusStarted   = "STARTED"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Donation records a donor's appointment at a hospital, stored in the
// `doacoes` table. The hospital name is denormalized at booking time so
// history listings survive partner renames. The confirm code is a
// 6-character uppercase alphanumeric string handed to the donor after
// booking; staff enter it once to move the record to CONFIRMED.
//
// Fields:
//  ID           – primary key identifier.
//  DoadorID     – donor who booked the slot (owner; immutable).
//  HospitalID   – facility chosen at booking (immutable).
//  HospitalName – facility name snapshot taken at booking (immutable).
//  EnfermeiroID – nurse assigned to perform the draw; nil until assignment.
//  DataDoacao   – booked slot timestamp (UTC); mutable until confirmed.
//  ConfirmCode  – one-shot confirmation code.
//  Status       – one of the Status* constants above.
//  CreatedAt    – creation timestamp (immutable).
//  UpdatedAt    – last update timestamp.
type Donation struct {
	ID           uint64    // doacoes.id
	DoadorID     string    // doacoes.doador_id
	HospitalID   uint64    // doacoes.hospital_id
	HospitalName string    // doacoes.hospital_name
	EnfermeiroID *uint64   // doacoes.enfermeiro_id (nullable)
	DataDoacao   time.Time // doacoes.data_doacao
	ConfirmCode  string    // doacoes.confirm_code
	Status       string    // doacoes.status
	CreatedAt    time.Time // doacoes.created_at
	UpdatedAt    time.Time // doacoes.updated_at
}

// TerminalStatus reports whether s is one of the two terminal states.
func TerminalStatus(s string) bool {
	return s == StatusConfirmed || s == StatusCancelled
}
