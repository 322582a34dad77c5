package lfserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// errorResponse is the JSON body written for any non-2xx result.
type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// noMatchErrorResponse is the JSON body written for a 422 scan failure; it
// carries the rune offset into the scanned input where no pattern could
// match, alongside the tokens matched against the prefix before it.
type noMatchErrorResponse struct {
	Error    string      `json:"error"`
	Status   int         `json:"status"`
	Position int         `json:"position"`
	Tokens   []scanToken `json:"tokens"`
}

// result is a pending HTTP response: a status code, a JSON body, and a
// message logged for operators that never reaches the client.
type result struct {
	status      int
	resp        interface{}
	internalMsg string
	headers     [][2]string
}

func jsonOK(resp interface{}, internalMsg string, v ...interface{}) result {
	return result{status: http.StatusOK, resp: resp, internalMsg: fmt.Sprintf(internalMsg, v...)}
}

func jsonCreated(resp interface{}, internalMsg string, v ...interface{}) result {
	return result{status: http.StatusCreated, resp: resp, internalMsg: fmt.Sprintf(internalMsg, v...)}
}

func jsonBadRequest(userMsg, internalMsg string, v ...interface{}) result {
	return jsonErr(http.StatusBadRequest, userMsg, internalMsg, v...)
}

func jsonUnauthorized(userMsg, internalMsg string, v ...interface{}) result {
	if userMsg == "" {
		userMsg = "you are not authorized to do that"
	}
	r := jsonErr(http.StatusUnauthorized, userMsg, internalMsg, v...)
	r.headers = append(r.headers, [2]string{"WWW-Authenticate", `Bearer realm="lexforge"`})
	return r
}

func jsonNotFound(internalMsg string, v ...interface{}) result {
	return jsonErr(http.StatusNotFound, "the requested resource was not found", internalMsg, v...)
}

// jsonUnprocessableEntity reports a scan that died partway through input:
// position is the rune offset of the start of the unmatched text, and
// matched holds the tokens recognized before it.
func jsonUnprocessableEntity(userMsg string, position int, matched []scanToken, internalMsg string, v ...interface{}) result {
	return result{
		status:      http.StatusUnprocessableEntity,
		internalMsg: fmt.Sprintf(internalMsg, v...),
		resp: noMatchErrorResponse{
			Error:    userMsg,
			Status:   http.StatusUnprocessableEntity,
			Position: position,
			Tokens:   matched,
		},
	}
}

func jsonInternalServerError(internalMsg string, v ...interface{}) result {
	return jsonErr(http.StatusInternalServerError, "an internal server error occurred", internalMsg, v...)
}

func jsonErr(status int, userMsg, internalMsg string, v ...interface{}) result {
	return result{
		status:      status,
		internalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        errorResponse{Error: userMsg, Status: status},
	}
}

func (r result) writeResponse(w http.ResponseWriter, req *http.Request) {
	var body []byte
	if r.status != http.StatusNoContent && r.resp != nil {
		var err error
		body, err = json.Marshal(r.resp)
		if err != nil {
			panic(fmt.Sprintf("lfserver: could not marshal response: %s", err.Error()))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	for _, h := range r.headers {
		w.Header().Set(h[0], h[1])
	}
	w.WriteHeader(r.status)
	if len(body) > 0 {
		w.Write(body)
	}

	log.Printf("%s %s -> %d: %s", req.Method, req.URL.Path, r.status, r.internalMsg)
}
