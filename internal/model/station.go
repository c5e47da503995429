package model

// Station constants (spec §3): effectively immovable, constant spin, and
// an ever-growing vinyl store that is the team's score.
const (
	StationSize  = 30.0
	StationMass  = 99999.9
	StationOmega = 0.9
)

// StationData is the Station variant payload.
type StationData struct {
	VinylStore float64
}
