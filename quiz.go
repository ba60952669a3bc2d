/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Player quiz
//
// Routes:
//   - $path            → quiz page
//   - $path/questions  → the question bank as JSON
//   - $path/score      → POST selections, get the result, its CSV row and a
//                        share link (pointed at a GM session when one is given)

package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/ulvareth/quiz"
	"github.com/Seednode/ulvareth/roster"
)

type ScoreRequest struct {
	Player     string          `json:"player"`
	Selections quiz.Selections `json:"selections"`
	Session    string          `json:"session,omitempty"`
}

type ScoreResponse struct {
	Result   quiz.Result `json:"result"`
	CSV      string      `json:"csv"`
	Filename string      `json:"filename"`
	Payload  string      `json:"payload"`
	Link     string      `json:"link"`
}

// shareBase is where a share link should land: the import route of a GM
// session, or the public inbox.
func shareBase(cfg *Config, r *http.Request, sessionsPath, session string) string {
	if session != "" {
		return externalURL(cfg, r, sessionsPath+"/"+url.PathEscape(session)+"/import")
	}

	return externalURL(cfg, r, "/inbox")
}

func serveQuestions(cfg *Config, bank *quiz.Bank, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Cache-Control", "public, max-age=3600")

		_, err := writeJSON(cfg, w, http.StatusOK, bank)
		if err != nil {
			errs <- err
		}
	}
}

func serveScore(cfg *Config, sessionsPath string, bank *quiz.Bank, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		var req ScoreRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, cfg.maxUpload)).Decode(&req); err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid request: "+err.Error(), errs)

			return
		}

		result := quiz.Score(bank, req.Selections)
		payload := quiz.NewPayload(req.Player, result, req.Selections, time.Now())

		encoded, err := payload.Encode()
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, err.Error(), errs)

			return
		}

		link, err := payload.Link(shareBase(cfg, r, sessionsPath, req.Session))
		if err != nil {
			writeError(cfg, w, http.StatusBadRequest, err.Error(), errs)

			return
		}

		quizSubmissions.WithLabelValues("score").Inc()

		written, err := writeJSON(cfg, w, http.StatusOK, ScoreResponse{
			Result:   result,
			CSV:      roster.Format([]roster.Row{result.Row(req.Player)}),
			Filename: quiz.Filename(req.Player),
			Payload:  encoded,
			Link:     link,
		})
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "QUIZ: Scored %d answers (%s) for %s in %s",
			result.Answered,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func registerQuiz(cfg *Config, path string, bank *quiz.Bank, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+path, servePage(cfg, "assets/quiz/index.html", errs))

	mux.GET(cfg.prefix+path+"/questions", serveQuestions(cfg, bank, errs))

	mux.POST(cfg.prefix+path+"/score", serveScore(cfg, "/gm", bank, errs))
}
