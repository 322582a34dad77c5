package lfserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAPI(t *testing.T) (API, string) {
	t.Helper()
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	creds := Credentials{Username: "admin", PasswordHash: hash}
	api := API{Store: NewMemStore(), Secret: []byte("test-secret-test-secret-test-secret"), Creds: creds}

	tok, err := generateJWT(api.Secret, creds)
	require.NoError(t, err)
	return api, tok
}

func jsonRequest(method, path string, body interface{}, token string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestEndpoints_loginSucceedsWithCorrectPassword(t *testing.T) {
	api, _ := testAPI(t)
	router := api.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/login", loginRequest{Username: "admin", Password: "hunter2"}, ""))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestEndpoints_loginFailsWithWrongPassword(t *testing.T) {
	api, _ := testAPI(t)
	router := api.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/login", loginRequest{Username: "admin", Password: "wrong"}, ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEndpoints_lexiconsRequireAuth(t *testing.T) {
	api, _ := testAPI(t)
	router := api.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/lexicons", nil, ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

const testLexiconSource = `
format = "1.0"
type = "lexicon"

[tokens]
N = "[0-9]+"
`

func TestEndpoints_createGetAndScanLexicon(t *testing.T) {
	api, tok := testAPI(t)
	router := api.Router()

	createReq := createLexiconRequest{Name: "numbers", Section: "tokens", Source: testLexiconSource}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/lexicons", createReq, tok))
	require.Equal(t, http.StatusCreated, w.Code)

	var created lexiconSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "numbers", created.Name)
	assert.Greater(t, created.States, 0)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/lexicons/"+created.ID, nil, tok))
	require.Equal(t, http.StatusOK, w.Code)

	scanReq := scanRequest{Input: "42"}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/lexicons/"+created.ID+"/scan", scanReq, tok))
	require.Equal(t, http.StatusOK, w.Code)

	var toks []scanToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toks))
	require.Len(t, toks, 1)
	assert.Equal(t, scanToken{Name: "N", Text: "42"}, toks[0])
}

func TestEndpoints_scanFailureReturns422WithPosition(t *testing.T) {
	api, tok := testAPI(t)
	router := api.Router()

	createReq := createLexiconRequest{Name: "numbers", Section: "tokens", Source: testLexiconSource}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/lexicons", createReq, tok))
	require.Equal(t, http.StatusCreated, w.Code)

	var created lexiconSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	scanReq := scanRequest{Input: "12x"}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/lexicons/"+created.ID+"/scan", scanReq, tok))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp noMatchErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Position)
	require.Len(t, resp.Tokens, 1)
	assert.Equal(t, scanToken{Name: "N", Text: "12"}, resp.Tokens[0])
}

func TestEndpoints_getUnknownLexiconIsNotFound(t *testing.T) {
	api, tok := testAPI(t)
	router := api.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/lexicons/00000000-0000-0000-0000-000000000000", nil, tok))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
