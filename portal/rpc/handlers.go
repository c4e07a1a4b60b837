package rpc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/router"
)

const maxFormBytes = 16 << 10

// submitFormHandler accepts the transfer form as a urlencoded or multipart post.
// Fields: chain_id (optional), address, value.
func (s *PortalServer) submitFormHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "unreadable form: " + err.Error()})
		return
	}

	msg := &models.SubmitTransferRequest{
		Address: r.PostForm.Get("address"),
		Value:   r.PostForm.Get("value"),
	}
	if raw := strings.TrimSpace(r.PostForm.Get("chain_id")); raw != "" {
		chainID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
				Error: "chain id must be a positive integer",
				Field: "chain_id",
			})
			return
		}
		msg.ChainID = &chainID
	}

	resp, err := s.submit(r.Context(), msg)
	if err != nil {
		status, body := formError(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// formError maps a submission failure to its HTTP status and body
func formError(err error) (int, models.ErrorResponse) {
	var fieldErr *router.SubmissionError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, models.ErrorResponse{Error: fieldErr.Reason, Field: fieldErr.Field}
	case errors.Is(err, router.ErrUnsupportedChain):
		return http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Field: "chain_id"}
	case errors.Is(err, router.ErrDispatchFailed):
		return http.StatusBadGateway, models.ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Logger.Error().Err(err).Msg("Failed to write response")
	}
}
