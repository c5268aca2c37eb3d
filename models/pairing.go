package models

// PairingSlot is one board of a round pairing preview. Bye slots carry no
// opponent and are credited automatically by the standings engine.
type PairingSlot struct {
	Board     int  `json:"board"`
	WhiteID   *int `json:"white_id,omitempty"`
	BlackID   *int `json:"black_id,omitempty"`
	IsBye     bool `json:"is_bye"`
	ByeUserID *int `json:"bye_user_id,omitempty"`
}
