package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"spd/internal/models"
)

const maxRequestBodySize = 1 << 20 // 1 MB

func writeEnvelope(w http.ResponseWriter, status int, env models.Envelope) {
	gson, err := json.Marshal(env)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeOk(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, models.Ok(data))
}

func writeErr(w http.ResponseWriter, err error) {
	writeEnvelope(w, statusFor(err), models.Fail(err))
}

// statusFor picks an HTTP status for an envelope error; the envelope code
// stays authoritative for callers.
func statusFor(err error) int {
	switch models.CodeOf(err) {
	case models.CodeInvalidName, models.CodeValidation:
		return http.StatusBadRequest
	case models.CodeDuplicateName, models.CodeBusy:
		return http.StatusConflict
	case models.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// requestConfirmer carries the confirmation the UI layer already collected
// from the user into the core's injected confirm capability.
type requestConfirmer struct {
	confirmed bool
}

func (c requestConfirmer) Confirm(_ string) (bool, error) {
	return c.confirmed, nil
}
