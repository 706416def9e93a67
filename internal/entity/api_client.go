package entity

// APIClientData identifies the caller behind a verified access token.
type APIClientData struct {
	KeyID     string
	IssuedFor string
}
