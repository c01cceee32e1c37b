package clientcommon

import (
	"errors"
	"net/http"
	"strings"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "bearer "

var ErrMissingCredential = errors.New("no upstream credential provided")

// Credential is the access token used against the catalog API.
// UserScoped credentials can read listening history, app credentials cannot.
type Credential struct {
	Token      string
	UserScoped bool
}

func (c Credential) IsEmpty() bool {
	return c.Token == ""
}

// CredentialFromRequest reads a bearer token from the Authorization header.
func CredentialFromRequest(r *http.Request) (Credential, error) {
	header := strings.TrimSpace(r.Header.Get(authorizationHeader))

	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return Credential{}, ErrMissingCredential
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	if token == "" {
		return Credential{}, ErrMissingCredential
	}

	return Credential{Token: token, UserScoped: true}, nil
}
