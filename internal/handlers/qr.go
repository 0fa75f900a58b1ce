package handlers

import (
	"net/http"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/abrezinsky/scrumdeck/internal/store"
)

// handleSessionQR renders the session's shareable join link as a QR PNG.
func (h *Handlers) handleSessionQR(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	// Only mint codes for sessions that exist.
	if _, err := h.Store.Get(r.Context(), sessionID); err != nil {
		if err == store.ErrNotFound {
			respondError(w, NotFound("Session not found"))
			return
		}
		respondError(w, err)
		return
	}

	url := h.shareURL(sessionID)
	if url == "" {
		respondError(w, BadRequest("No base URL configured for share links"))
		return
	}

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
