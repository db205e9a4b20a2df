package auth_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fitstack/gymtracker/internal/auth"
	"github.com/fitstack/gymtracker/internal/httpapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCredentials_FromHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/members", nil)
	req.Header.Set("X-Username", "mile")
	req.Header.Set("X-Password", "voja-sekula")

	creds, err := auth.ResolveCredentials(req)
	require.NoError(t, err)
	assert.Equal(t, "mile", creds.Username)
	assert.Equal(t, "voja-sekula", creds.Password)
}

func TestResolveCredentials_FromBody(t *testing.T) {
	body := `{"auth":{"username":"mile","password":"sekula"},"name":"whatever"}`
	req := httptest.NewRequest("POST", "/sessions", strings.NewReader(body))

	creds, err := auth.ResolveCredentials(req)
	require.NoError(t, err)
	assert.Equal(t, "mile", creds.Username)
	assert.Equal(t, "sekula", creds.Password)

	// the body must still be readable by the handler afterwards
	restored, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(restored))
}

func TestResolveCredentials_FromQueryParams(t *testing.T) {
	req := httptest.NewRequest("GET", "/members?username=mile&password=sekula", nil)

	creds, err := auth.ResolveCredentials(req)
	require.NoError(t, err)
	assert.Equal(t, "mile", creds.Username)
	assert.Equal(t, "sekula", creds.Password)
}

func TestResolveCredentials_SourcesCombine(t *testing.T) {
	// username from header, password filled in from the body
	req := httptest.NewRequest(
		"POST", "/sessions",
		strings.NewReader(`{"auth":{"password":"sekula"}}`),
	)
	req.Header.Set("X-Username", "mile")

	creds, err := auth.ResolveCredentials(req)
	require.NoError(t, err)
	assert.Equal(t, "mile", creds.Username)
	assert.Equal(t, "sekula", creds.Password)
}

func TestResolveCredentials_HeadersWin(t *testing.T) {
	req := httptest.NewRequest(
		"POST", "/sessions?username=paramuser&password=parampass",
		strings.NewReader(`{"auth":{"username":"bodyuser","password":"bodypass"}}`),
	)
	req.Header.Set("X-Username", "headeruser")
	req.Header.Set("X-Password", "headerpass")

	creds, err := auth.ResolveCredentials(req)
	require.NoError(t, err)
	assert.Equal(t, "headeruser", creds.Username)
	assert.Equal(t, "headerpass", creds.Password)
}

func TestResolveCredentials_MalformedBodyIgnored(t *testing.T) {
	// a body that is not JSON must not fail resolution when other
	// sources can still provide the credentials
	req := httptest.NewRequest(
		"POST", "/sessions?username=mile&password=sekula",
		strings.NewReader(`this is not json`),
	)

	creds, err := auth.ResolveCredentials(req)
	require.NoError(t, err)
	assert.Equal(t, "mile", creds.Username)
	assert.Equal(t, "sekula", creds.Password)
}

func TestResolveCredentials_BodyNotReadForGet(t *testing.T) {
	req := httptest.NewRequest(
		"GET", "/members",
		strings.NewReader(`{"auth":{"username":"mile","password":"sekula"}}`),
	)

	_, err := auth.ResolveCredentials(req)
	require.Error(t, err)
}

func TestResolveCredentials_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/members", nil)
	_, err := auth.ResolveCredentials(req)
	require.Error(t, err)

	var apiErr *httpapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, httpapi.KindUnauthenticated, apiErr.Kind)
}

func TestResolveCredentials_PartialIsStillMissing(t *testing.T) {
	req := httptest.NewRequest("GET", "/members?username=mile", nil)

	_, err := auth.ResolveCredentials(req)
	require.Error(t, err)

	var apiErr *httpapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, httpapi.KindUnauthenticated, apiErr.Kind)
}
