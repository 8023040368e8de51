package riskscoreconstants

const (
	Critical = 4
	High     = 3
	Moderate = 2
	Low      = 1
	Info     = 0
)
