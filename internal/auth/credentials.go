package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fitstack/gymtracker/internal/httpapi"
)

const (
	UsernameHeader = "X-Username"
	PasswordHeader = "X-Password"
)

type Credentials struct {
	Username string
	Password string
}

// ResolveCredentials extracts the caller's credentials from the request,
// in order of precedence:
//  1. the X-Username / X-Password header pair
//  2. for mutating methods, an "auth" object nested in the JSON body,
//     read leniently (a missing or malformed body yields nothing)
//  3. username / password query parameters, filling in whichever of the
//     two fields is still missing
//
// The body is restored so downstream handlers can decode it again.
func ResolveCredentials(r *http.Request) (Credentials, error) {
	creds := Credentials{
		Username: r.Header.Get(UsernameHeader),
		Password: r.Header.Get(PasswordHeader),
	}

	if (creds.Username == "" || creds.Password == "") && methodCarriesBody(r.Method) && r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err == nil {
			r.Body = io.NopCloser(bytes.NewReader(body))

			var payload struct {
				Auth struct {
					Username string `json:"username"`
					Password string `json:"password"`
				} `json:"auth"`
			}
			if err := json.Unmarshal(body, &payload); err == nil {
				if creds.Username == "" {
					creds.Username = payload.Auth.Username
				}
				if creds.Password == "" {
					creds.Password = payload.Auth.Password
				}
			}
		}
	}

	if creds.Username == "" || creds.Password == "" {
		query := r.URL.Query()
		if creds.Username == "" {
			creds.Username = query.Get("username")
		}
		if creds.Password == "" {
			creds.Password = query.Get("password")
		}
	}

	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, httpapi.Unauthenticated("missing credentials")
	}

	return creds, nil
}

func methodCarriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}
