package main

import (
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// HandleRoomQR serves a PNG QR code encoding the join link of a live room,
// so a second player can hop in by pointing a phone at the first screen.
// GET /qr?room=CODE
func HandleRoomQR(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("room")))
		if code == "" || reg.Room(code) == nil {
			http.NotFound(w, r)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		link := scheme + "://" + r.Host + "/?room=" + code

		png, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	}
}
