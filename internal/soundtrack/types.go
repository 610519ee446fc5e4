package soundtrack

import "time"

type Account struct {
	ID           string `json:"id"`
	BusinessName string `json:"businessName"`
}

type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AccountRef struct {
	ID string `json:"id"`
}

// Zone is a remote playback endpoint, grouped under an account.
type Zone struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Location *Location  `json:"location,omitempty"`
	Account  AccountRef `json:"account"`
}

// Assignable is a playlist or schedule that can be pushed to a zone.
type Assignable struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Library struct {
	Playlists []Assignable `json:"playlists"`
	Schedules []Assignable `json:"schedules"`
}

type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// LoginResponse is the token triple issued by a login or refresh exchange.
type LoginResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
