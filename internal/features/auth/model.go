package auth

import "time"

// Identity is an account known to the auth provider. Its ID keys the user document.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Credential is the stored form of an identity.
type Credential struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

func (c *Credential) Identity() *Identity {
	return &Identity{ID: c.ID, Email: c.Email}
}
