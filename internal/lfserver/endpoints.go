package lfserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dekarrin/lexforge/internal/automaton"
	"github.com/dekarrin/lexforge/internal/lexicon"
)

// API holds everything an endpoint needs to do its job: the store of
// compiled lexicons, the JWT secret, and the single operator account.
type API struct {
	Store       Store
	Secret      []byte
	Creds       Credentials
	UnauthDelay time.Duration
}

type endpointFunc func(req *http.Request) result

// endpoint adapts an endpointFunc into an http.HandlerFunc, recovering
// from panics and slowing down unauthorized/forbidden/server-error
// responses the same way the teacher's Endpoint wrapper does.
func endpoint(ep endpointFunc, unauthDelay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		r := ep(req)
		if r.status == http.StatusUnauthorized || r.status == http.StatusForbidden || r.status == http.StatusInternalServerError {
			time.Sleep(unauthDelay)
		}
		r.writeResponse(w, req)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Router assembles the chi router for every endpoint this server exposes:
// POST /login (unauthenticated), and POST /lexicons, GET /lexicons/{id},
// GET /lexicons, POST /lexicons/{id}/scan (all requiring a bearer token).
func (api API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(dontPanic())

	r.Post("/login", endpoint(api.epLogin, api.UnauthDelay))

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(api.Secret, api.Creds, api.UnauthDelay))
		r.Post("/lexicons", endpoint(api.epCreateLexicon, api.UnauthDelay))
		r.Get("/lexicons", endpoint(api.epGetAllLexicons, api.UnauthDelay))
		r.Get("/lexicons/{id}", endpoint(api.epGetLexicon, api.UnauthDelay))
		r.Post("/lexicons/{id}/scan", endpoint(api.epScan, api.UnauthDelay))
	})

	return r
}

func (api API) epLogin(req *http.Request) result {
	var body loginRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), "parse login request: %s", err.Error())
	}
	if body.Username != api.Creds.Username {
		return jsonUnauthorized("", "unknown user %q", body.Username)
	}
	if err := api.Creds.checkPassword(body.Password); err != nil {
		return jsonUnauthorized("", "bad password for %q: %s", body.Username, err.Error())
	}

	tok, err := generateJWT(api.Secret, api.Creds)
	if err != nil {
		return jsonInternalServerError("generate jwt: %s", err.Error())
	}
	return jsonCreated(loginResponse{Token: tok}, "user %q logged in", body.Username)
}

type createLexiconRequest struct {
	Name    string `json:"name"`
	Section string `json:"section"`
	Source  string `json:"source"` // raw TOML lexicon document
}

type lexiconSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section"`
	Created string `json:"created"`
	States  int    `json:"states"`
}

func (api API) epCreateLexicon(req *http.Request) result {
	var body createLexiconRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), "parse create-lexicon request: %s", err.Error())
	}
	if body.Section == "" {
		return jsonBadRequest("section: property is empty or missing", "empty section")
	}
	if body.Source == "" {
		return jsonBadRequest("source: property is empty or missing", "empty source")
	}

	lex, err := lexicon.Parse([]byte(body.Source))
	if err != nil {
		return jsonBadRequest(err.Error(), "parse lexicon source: %s", err.Error())
	}

	a, err := lex.Build(body.Section)
	if err != nil {
		return jsonBadRequest(err.Error(), "build section %q: %s", body.Section, err.Error())
	}

	cl, err := api.Store.Create(req.Context(), body.Name, body.Section, a)
	if err != nil {
		return jsonInternalServerError("store compiled lexicon: %s", err.Error())
	}

	return jsonCreated(toSummary(cl), "compiled and stored lexicon %q section %q as %s", body.Name, body.Section, cl.ID)
}

func (api API) epGetAllLexicons(req *http.Request) result {
	all, err := api.Store.GetAll(req.Context())
	if err != nil {
		return jsonInternalServerError("list lexicons: %s", err.Error())
	}
	resp := make([]lexiconSummary, len(all))
	for i, cl := range all {
		resp[i] = toSummary(cl)
	}
	return jsonOK(resp, "listed %d lexicons", len(resp))
}

func (api API) epGetLexicon(req *http.Request) result {
	id, err := requireIDParam(req)
	if err != nil {
		return jsonBadRequest(err.Error(), "parse id param: %s", err.Error())
	}

	cl, err := api.Store.GetByID(req.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return jsonNotFound("lexicon %s not found", id)
		}
		return jsonInternalServerError("get lexicon %s: %s", id, err.Error())
	}
	return jsonOK(toSummary(cl), "fetched lexicon %s", id)
}

type scanRequest struct {
	Input string `json:"input"`
}

type scanToken struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func (api API) epScan(req *http.Request) result {
	id, err := requireIDParam(req)
	if err != nil {
		return jsonBadRequest(err.Error(), "parse id param: %s", err.Error())
	}

	cl, err := api.Store.GetByID(req.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return jsonNotFound("lexicon %s not found", id)
		}
		return jsonInternalServerError("get lexicon %s: %s", id, err.Error())
	}

	var body scanRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), "parse scan request: %s", err.Error())
	}

	toks, position, err := scanAll(cl.Automaton, body.Input)
	if err != nil {
		return jsonUnprocessableEntity(err.Error(), position, toks, "scan input against %s: %s", id, err.Error())
	}

	return jsonOK(toks, "scanned %d bytes against %s, got %d tokens", len(body.Input), id, len(toks))
}

// scanAll runs a's Scanner over input to completion. On a no-match error it
// returns the tokens matched against the prefix before the failure, along
// with the rune offset where the unmatched text begins - that offset is
// exactly the combined rune length of the tokens already returned, since
// Scanner's matches partition a prefix of the input.
func scanAll(a *automaton.Automaton, input string) ([]scanToken, int, error) {
	runes := []rune(input)
	i := 0
	source := func() (rune, bool) {
		if i >= len(runes) {
			return 0, false
		}
		r := runes[i]
		i++
		return r, true
	}
	s := automaton.NewScanner(a, source, func(r rune) int { return int(r) }, func(rs []rune) string { return string(rs) })

	var out []scanToken
	position := 0
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return out, 0, nil
		}
		if err != nil {
			return out, position, err
		}
		out = append(out, scanToken{Name: tok.Name, Text: tok.Text})
		position += len([]rune(tok.Text))
	}
}

func toSummary(cl CompiledLexicon) lexiconSummary {
	return lexiconSummary{
		ID:      cl.ID.String(),
		Name:    cl.Name,
		Section: cl.Section,
		Created: cl.Created.Format(time.RFC3339),
		States:  cl.Automaton.NumStates(),
	}
}

func requireIDParam(req *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(req, "id")
	if idStr == "" {
		return uuid.UUID{}, fmt.Errorf("no id parameter present")
	}
	return uuid.Parse(idStr)
}

// parseJSON decodes req's body as JSON into v, which must be a pointer.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if !strings.EqualFold(contentType, "application/json") {
		return fmt.Errorf("request content-type is not application/json")
	}
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(v)
}
