package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/xtding233/lighting-backend/internal/lighting"
	"github.com/xtding233/lighting-backend/internal/logging"
	"github.com/xtding233/lighting-backend/internal/preset"
	"github.com/xtding233/lighting-backend/internal/registry"
	"github.com/xtding233/lighting-backend/internal/service"
	"github.com/xtding233/lighting-backend/internal/wire"
)

type errResp struct {
	Err string `json:"err"`
}

type exposureResp struct {
	Player   string  `json:"player"`
	Observed float32 `json:"observed"`
	Exposure float32 `json:"exposure"`
}

type api struct {
	svc *service.Service
	log logging.Logger
}

func (a *api) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lighting", a.handleGet)
	mux.HandleFunc("POST /lighting", a.handleSet)
	mux.HandleFunc("DELETE /lighting", a.handleDelete)
	mux.HandleFunc("GET /lighting/packet", a.handlePacket)
	mux.HandleFunc("GET /exposure", a.handleExposure)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux
}

func parseFloat(r *http.Request, key string) (float64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

// writeJSON encodes before touching the response so an encoding failure
// still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		code = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errResp{Err: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

func (a *api) writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, registry.ErrUnknownPlayer):
		code = http.StatusNotFound
	case errors.Is(err, preset.ErrBadName), errors.Is(err, lighting.ErrInvalidLighting):
		code = http.StatusBadRequest
	default:
		a.log.Errorf("request failed: %v", err)
	}
	writeJSON(w, code, errResp{Err: err.Error()})
}

func player(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := r.URL.Query().Get("player")
	if p == "" {
		http.Error(w, "missing param player", http.StatusBadRequest)
		return "", false
	}
	return p, true
}

func (a *api) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := player(w, r)
	if !ok {
		return
	}
	e, err := a.svc.Get(p)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// POST /lighting?player=&scene= assigns a scene. Without a scene param the
// player's current scene is kept and only the overrides change.
func (a *api) handleSet(w http.ResponseWriter, r *http.Request) {
	p, ok := player(w, r)
	if !ok {
		return
	}

	var o preset.Overrides
	if r.Body != nil {
		dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errResp{Err: "invalid body: " + err.Error()})
			return
		}
	}

	q := r.URL.Query()
	var (
		e   registry.Entry
		err error
	)
	if q.Has("scene") {
		e, err = a.svc.Assign(p, q.Get("scene"), o)
	} else {
		e, err = a.svc.Override(p, o)
		if errors.Is(err, registry.ErrUnknownPlayer) {
			e, err = a.svc.Assign(p, "", o)
		}
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (a *api) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := player(w, r)
	if !ok {
		return
	}
	a.svc.Remove(p)
	w.WriteHeader(http.StatusNoContent)
}

// GET /lighting/packet?player=&format=packet|proto returns the binary form.
func (a *api) handlePacket(w http.ResponseWriter, r *http.Request) {
	p, ok := player(w, r)
	if !ok {
		return
	}
	e, err := a.svc.Get(p)
	if err != nil {
		a.writeErr(w, err)
		return
	}

	var body []byte
	switch r.URL.Query().Get("format") {
	case "", "packet":
		body = wire.MarshalPacket(e.Lighting)
	case "proto":
		body = wire.MarshalProto(e.Lighting)
	default:
		http.Error(w, "format must be packet or proto", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("ETag", strconv.Quote(e.Revision))
	_, _ = w.Write(body)
}

func (a *api) handleExposure(w http.ResponseWriter, r *http.Request) {
	p, ok := player(w, r)
	if !ok {
		return
	}
	observed, ok, msg := parseFloat(r, "observed")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "missing param observed", http.StatusBadRequest)
		return
	}
	if math.IsNaN(observed) || math.IsInf(observed, 0) {
		http.Error(w, "observed must be finite", http.StatusBadRequest)
		return
	}
	exp, err := a.svc.WantedExposure(p, float32(observed))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exposureResp{Player: p, Observed: float32(observed), Exposure: exp})
}
