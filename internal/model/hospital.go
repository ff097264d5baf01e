package model

// Hospital is a partner facility where donations take place, stored in
// the `hospitais` table. Districts are free-form labels entered by the
// partner onboarding process and are matched case-insensitively when
// donors filter the list.
type Hospital struct {
	ID       uint64 // hospitais.id
	Name     string // hospitais.name
	Distrito string // hospitais.distrito
}
