package model

// Player is a row of the static player reference table.
type Player struct {
	PlayerID   string `csv:"player_id"`
	PlayerName string `csv:"player_name"`
	Position   string `csv:"position"`
	Status     string `csv:"status"`
}

// Tables is the raw input of one pipeline run, as decoded from the source.
type Tables struct {
	Players  []Player
	Sessions []RawSession
	Wellness []RawWellness
}
