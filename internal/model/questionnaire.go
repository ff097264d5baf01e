package model

import "time"

// Questionnaire stores a donor's pre-donation eligibility answers from
// the `questionarios` table. Elegivel is computed server-side when the
// answers are submitted: recent fever or contact with a transmissible
// disease disqualifies; taking medication leaves the outcome to staff
// review and does not flip the flag on its own.
type Questionnaire struct {
	ID              uint64    // questionarios.id
	DoadorID        string    // questionarios.doador_id
	DoouSangue      bool      // questionarios.doou_sangue
	TomaMedicamento bool      // questionarios.toma_medicamento
	QualMedicamento string    // questionarios.qual_medicamento
	TeveFebre       bool      // questionarios.teve_febre
	ContatoDoenca   bool      // questionarios.contato_doenca
	Elegivel        bool      // questionarios.elegivel
	CreatedAt       time.Time // questionarios.created_at
}
