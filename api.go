/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/ulvareth/party"
	"github.com/Seednode/ulvareth/quiz"
	"github.com/Seednode/ulvareth/roster"
)

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}

	return writeText(cfg, w, status, "application/json; charset=utf-8", string(data)+"\n")
}

// writeError reports a failure as {"error": msg}.
func writeError(cfg *Config, w http.ResponseWriter, status int, msg string, errs chan<- error) {
	_, err := writeJSON(cfg, w, status, map[string]string{"error": msg})
	if err != nil {
		errs <- err
	}
}

// GroupsResponse is the JSON form of POST /api/groups.
type GroupsResponse struct {
	Mode    party.Mode  `json:"mode"`
	Size    int         `json:"size"`
	Summary party.Tally `json:"summary"`
	Groups  []GroupView `json:"groups"`
}

// groupingParams reads mode and size from the query, defaulting to the
// server configuration.
func groupingParams(cfg *Config, r *http.Request) (party.Mode, int, error) {
	q := r.URL.Query()

	mode := cfg.groupMode()
	if s := q.Get("mode"); s != "" {
		m, err := party.ParseMode(s)
		if err != nil {
			return "", 0, err
		}
		mode = m
	}

	size := cfg.partySize
	if s := q.Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", 0, fmt.Errorf("invalid party size %q", s)
		}
		size = n
	}

	return mode, party.ClampSize(size), nil
}

func serveGroups(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		mode, size, err := groupingParams(cfg, r)
		if err != nil {
			writeError(cfg, w, http.StatusBadRequest, err.Error(), errs)

			return
		}

		rows, err := roster.ParseReader(http.MaxBytesReader(w, r.Body, cfg.maxUpload))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(cfg, w, http.StatusRequestEntityTooLarge, err.Error(), errs)

				return
			}

			writeError(cfg, w, http.StatusBadRequest, err.Error(), errs)

			return
		}

		if err := roster.Validate(rows); err != nil {
			rostersRejected.WithLabelValues("api").Inc()

			writeError(cfg, w, http.StatusBadRequest, err.Error(), errs)

			return
		}
		rostersParsed.WithLabelValues("api").Inc()

		groups := party.Suggest(mode, rows, size)
		groupingsTotal.WithLabelValues(string(mode)).Inc()

		var written int
		if r.URL.Query().Get("format") == "json" {
			written, err = writeJSON(cfg, w, http.StatusOK, GroupsResponse{
				Mode:    mode,
				Size:    size,
				Summary: party.Summarize(rows),
				Groups:  groupViews(party.NonEmpty(groups)),
			})
		} else {
			written, err = writeText(cfg, w, http.StatusOK, "text/csv; charset=utf-8",
				roster.Format(party.Export(groups)))
		}
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "API: Grouped %d players by %s (%s) for %s in %s",
			len(rows),
			mode,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveSampleList(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		_, err := writeJSON(cfg, w, http.StatusOK, roster.SampleNames())
		if err != nil {
			errs <- err
		}
	}
}

func serveSample(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		text, err := roster.Sample(p.ByName("name"), nil)
		if err != nil {
			writeError(cfg, w, http.StatusNotFound, err.Error(), errs)

			return
		}

		_, err = writeText(cfg, w, http.StatusOK, "text/csv; charset=utf-8", text)
		if err != nil {
			errs <- err
		}
	}
}

// serveInbox turns a share link into the CSV row the GM tool imports.
func serveInbox(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		payload, err := quiz.Decode(r.URL.Query().Get("data"))
		if err != nil {
			_, err = writeText(cfg, w, http.StatusBadRequest, "text/plain; charset=utf-8", err.Error()+"\n")
			if err != nil {
				errs <- err
			}

			return
		}

		_, err = writeText(cfg, w, http.StatusOK, "text/csv; charset=utf-8",
			roster.Format([]roster.Row{payload.Row()}))
		if err != nil {
			errs <- err
		}
	}
}

func registerAPI(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	mux.POST(cfg.prefix+"/api/groups", serveGroups(cfg, errs))

	mux.GET(cfg.prefix+"/api/samples", serveSampleList(cfg, errs))

	mux.GET(cfg.prefix+"/api/samples/:name", serveSample(cfg, errs))

	mux.GET(cfg.prefix+"/inbox", serveInbox(cfg, errs))
}
