package domain

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// HistoryEntry is one classification shown to a user. Refining the
// instructions for a photo produces a new entry sharing the same ImageKey.
// ImageURL is only set for entries recorded through the JSON API, where the
// client hosts the photo itself.
type HistoryEntry struct {
	ID                    string
	UserID                string
	ImageKey              string
	MimeType              string
	ImageURL              string
	WasteType             string
	Confidence            float64
	Details               string
	UserDescription       string
	RecyclingInstructions string
	CreatedAt             time.Time
}
