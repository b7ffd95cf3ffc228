package model

// Identity is the authenticated principal issued by the verification
// provider after a phone number is confirmed. The session layer holds
// a read-only reference; it never mints or mutates one.
type Identity struct {
	UID         string `json:"uid"`
	PhoneNumber string `json:"phone_number"`
	Token       string `json:"token"` // signed identity token from the provider
}
