package httpapi

import (
	"encoding/json"
	"net/http"
)

// errObj is the JSON error body shape returned on every non-2xx response.
type errObj struct {
	Code   string `json:"error"`
	Detail string `json:"detail"`
}

// result is this adapter's internal response contract: a status code plus
// either a JSON payload or a structured error, in the spirit of the
// teacher's resp.Result.
type result struct {
	status int
	body   any
	err    *errObj
}

func ok(body any) result                      { return result{status: http.StatusOK, body: body} }
func created(body any) result                 { return result{status: http.StatusCreated, body: body} }
func badRequest(code, detail string) result   { return result{status: http.StatusBadRequest, err: &errObj{code, detail}} }
func unauthorized(code, detail string) result { return result{status: http.StatusUnauthorized, err: &errObj{code, detail}} }
func forbidden(code, detail string) result    { return result{status: http.StatusForbidden, err: &errObj{code, detail}} }
func notFound(code, detail string) result     { return result{status: http.StatusNotFound, err: &errObj{code, detail}} }
func conflict(code, detail string) result     { return result{status: http.StatusConflict, err: &errObj{code, detail}} }
func unprocessable(code, detail string) result {
	return result{status: http.StatusUnprocessableEntity, err: &errObj{code, detail}}
}
func internalErr(code, detail string) result { return result{status: http.StatusInternalServerError, err: &errObj{code, detail}} }

// write serializes result to w as JSON.
func (r result) write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	if r.err != nil {
		json.NewEncoder(w).Encode(r.err)
		return
	}
	if r.body != nil {
		json.NewEncoder(w).Encode(r.body)
	}
}
