package model

// Nurse is a staff member who performs and confirms a blood draw,
// stored in the `enfermeiros` table. Rows are created on demand the
// first time a name is assigned to a donation; lookup is by trimmed,
// case-insensitive name so " Maria " and "maria" resolve to one row.
type Nurse struct {
	ID   uint64 // enfermeiros.id
	Nome string // enfermeiros.nome
}
