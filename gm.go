/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/ulvareth/quiz"
	"github.com/Seednode/ulvareth/roster"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func getOrSetPlayerID(cfg *Config, w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id, err := newPlayerID()
	if err != nil {
		logErr(cfg, "unable to assign player id", err)

		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// serveSessionWS picks the hub based on :session.
func serveSessionWS(cfg *Config, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID := ps.ByName("session")
		if sessionID == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(cfg, w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub := sm.getHub(cfg, sessionID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GM: Upgrade failed for %s: %v", realIP(r), err)
			return
		}
		conn.SetReadLimit(cfg.maxUpload + 4096)

		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			playerID: playerID,
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "upload", "load_sample", "clear", "settings", "move", "reset", "remove", "lock_inbox", "submit":
			select {
			case h.cmds <- command{client: c, msg: msg}:
			case <-h.done:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// serveSessionQR renders a PNG QR code pointing players at the quiz for this
// session.
func serveSessionQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID := ps.ByName("session")
		if sessionID == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}

		url := externalURL(cfg, r, "/quiz?session="+sessionID)

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		_, err = writeText(cfg, w, http.StatusOK, "image/png", string(png))
		if err != nil {
			errs <- err
		}
	}
}

// readPayload takes a share payload from a request body, either raw text or
// a JSON object with a data field.
func readPayload(cfg *Config, w http.ResponseWriter, r *http.Request) (quiz.Payload, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.maxUpload))
	if err != nil {
		return quiz.Payload{}, err
	}

	data := string(body)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return quiz.Payload{}, err
		}
		data = req.Data
	}

	return quiz.Decode(data)
}

func submitStatus(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errInboxLocked):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func serveSubmit(cfg *Config, sm *SessionManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		hub, ok := sm.lookup(ps.ByName("session"))
		if !ok {
			writeError(cfg, w, http.StatusNotFound, "unknown session", errs)

			return
		}

		p, err := readPayload(cfg, w, r)
		if err == nil {
			var s Submission

			s, err = hub.submit(p, "post")
			if err == nil {
				_, err = writeJSON(cfg, w, http.StatusAccepted, map[string]string{
					"id":      s.ID,
					"message": "Your result was sent to the GM.",
				})
				if err != nil {
					errs <- err

					return
				}

				logf(cfg, "GM: Session %s received %q from %s in %s",
					hub.id,
					p.Player,
					realIP(r),
					time.Since(startTime).Round(time.Microsecond),
				)

				return
			}
		}

		writeError(cfg, w, submitStatus(err), err.Error(), errs)
	}
}

// serveImport accepts a share link opened by the GM and returns them to the
// session page.
func serveImport(cfg *Config, path string, sm *SessionManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID := ps.ByName("session")

		hub, ok := sm.lookup(sessionID)
		if !ok {
			_, err := writeText(cfg, w, http.StatusNotFound, "text/html; charset=utf-8",
				newPage(cfg.prefix, "Unknown Session", "That session has ended."))
			if err != nil {
				errs <- err
			}

			return
		}

		p, err := quiz.Decode(r.URL.Query().Get("data"))
		if err == nil {
			_, err = hub.submit(p, "import")
		}
		if err != nil {
			_, err = writeText(cfg, w, submitStatus(err), "text/html; charset=utf-8",
				newPage(cfg.prefix, "Import Failed", err.Error()))
			if err != nil {
				errs <- err
			}

			return
		}

		http.Redirect(w, r, cfg.prefix+path+"/"+sessionID, http.StatusSeeOther)
	}
}

func serveExport(cfg *Config, sm *SessionManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		hub, ok := sm.lookup(ps.ByName("session"))
		if !ok {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
		w.Header().Set("Cache-Control", "no-store")

		written, err := writeText(cfg, w, http.StatusOK, "text/csv; charset=utf-8",
			roster.BOM+roster.Format(hub.export()))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "GM: Exported session %s (%s) to %s in %s",
			hub.id,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveSessionPage(cfg *Config, errs chan<- error) httprouter.Handle {
	page := servePage(cfg, "assets/gm/index.html", errs)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if getOrSetPlayerID(cfg, w, r) == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		page(w, r, ps)
	}
}

// redirectNewSession generates a new random session ID and redirects to
// $path/:session.
func redirectNewSession(cfg *Config, path string, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		sessionID := sm.newSessionID()
		logf(cfg, "GM: Created session %s%s/%s", cfg.prefix, path, sessionID)
		http.Redirect(w, r, cfg.prefix+path+"/"+sessionID, http.StatusTemporaryRedirect)
	}
}

func registerSessions(cfg *Config, path string, mux *httprouter.Router, errs chan<- error) *SessionManager {
	sm := newSessionManager(cfg.sessionTimeout)

	mux.GET(cfg.prefix+path, redirectNewSession(cfg, path, sm))

	mux.GET(cfg.prefix+path+"/:session", serveSessionPage(cfg, errs))

	mux.GET(cfg.prefix+path+"/:session/ws", serveSessionWS(cfg, sm))

	mux.GET(cfg.prefix+path+"/:session/qr", serveSessionQR(cfg, errs))

	mux.POST(cfg.prefix+path+"/:session/submit", serveSubmit(cfg, sm, errs))

	mux.GET(cfg.prefix+path+"/:session/import", serveImport(cfg, path, sm, errs))

	mux.GET(cfg.prefix+path+"/:session/export", serveExport(cfg, sm, errs))

	return sm
}
