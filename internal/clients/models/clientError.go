package models

// Error is the body the advisory service returns on a rejected request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
