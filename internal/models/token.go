package models

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User *User `json:"user"`
	TokenPair
}
