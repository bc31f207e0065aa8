package server

import (
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

// Join deep links let the companion app open straight into a room from a
// shared code. The QR variant renders the same link for scanning off a
// host's screen.

func (s *Server) deepLink(code string) string {
	return fmt.Sprintf("%s://join?code=%s", s.cfg.DeepLinkScheme, normalizeJoinCode(code))
}

func (s *Server) handleJoinLink(w http.ResponseWriter, r *http.Request) {
	code := normalizeJoinCode(r.PathValue("code"))
	if _, err := s.store.FindByCode(code); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"code":      code,
		"deep_link": s.deepLink(code),
	})
}

func (s *Server) handleJoinQR(w http.ResponseWriter, r *http.Request) {
	code := normalizeJoinCode(r.PathValue("code"))
	if _, err := s.store.FindByCode(code); err != nil {
		writeOpError(w, err)
		return
	}
	png, err := qrcode.Encode(s.deepLink(code), qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
