// Package queue defines message payloads exchanged over the message broker.
package queue

// DonationConfirmedEvent is published when a donation reaches the
// CONFIRMED state, whether through the staff code exchange or the
// donor's own finish action. It carries enough information for
// downstream consumers to log, notify, or feed stock dashboards
// without querying the primary database.
type DonationConfirmedEvent struct {
	DonationID   uint64 `json:"donation_id"`
	DonorID      string `json:"donor_id"`
	HospitalID   uint64 `json:"hospital_id"`
	HospitalName string `json:"hospital_name"`
	DataDoacao   string `json:"data_doacao"`
	NurseName    string `json:"nurse_name,omitempty"`
	ConfirmedAt  string `json:"confirmed_at"`
}
