package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/infection/pkg/buildinfo"
	"github.com/matzehuels/infection/pkg/errors"
	"github.com/matzehuels/infection/pkg/graph"
	"github.com/matzehuels/infection/pkg/propagate"
	"github.com/matzehuels/infection/pkg/store"
)

// maxBodyBytes caps propagate request bodies.
const maxBodyBytes = 1 << 20

// NodeResponse is the body of GET /nodes/{id}.
type NodeResponse struct {
	store.NodeState
	Mentors []graph.NodeID `json:"mentors"`
	Pupils  []graph.NodeID `json:"pupils"`
}

// PropagateRequest is the body of POST /propagate. Omitted fields take the
// server defaults. Seed is a node name.
type PropagateRequest struct {
	Policy   string   `json:"policy"`
	Seed     string   `json:"seed"`
	Version  *float64 `json:"version"`
	MaxCount *int     `json:"max_count"`
}

// PropagateResponse is the body returned by POST /propagate.
type PropagateResponse struct {
	SnapshotID string           `json:"snapshot_id,omitempty"`
	Result     propagate.Result `json:"result"`
}

type errorBody struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	states := store.States(s.graph)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "node id %q is not an integer", raw))
		return
	}
	id := graph.NodeID(n)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.graph.Has(id) {
		writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeUnknownNode, "node %d does not exist", n))
		return
	}
	writeJSON(w, http.StatusOK, NodeResponse{
		NodeState: store.NodeState{ID: id, Name: s.graph.Name(id), Version: s.graph.Version(id)},
		Mentors:   s.graph.Mentors(id),
		Pupils:    s.graph.Pupils(id),
	})
}

func (s *Server) handlePropagate(w http.ResponseWriter, r *http.Request) {
	var req PropagateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}

	policy, version, maxCount, err := s.resolve(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seed, ok := s.graph.Lookup(req.Seed)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeUnknownNode, "seed %q does not exist", req.Seed))
		return
	}

	res, err := s.engine.Run(policy, seed, version, maxCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "propagate"))
		return
	}

	resp := PropagateResponse{Result: res}
	snap := store.NewSnapshot(s.graph, res, maxCount)
	if err := s.store.Save(r.Context(), snap); err != nil {
		// the graph is already updated, so report the result without an id
		s.logger.Error("save snapshot", "err", err)
	} else {
		resp.SnapshotID = snap.ID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolve fills omitted request fields from the defaults and validates them.
func (s *Server) resolve(req PropagateRequest) (propagate.Policy, float64, int, error) {
	if req.Seed == "" {
		return "", 0, 0, errors.New(errors.ErrCodeInvalidInput, "seed is required")
	}

	name := req.Policy
	if name == "" {
		name = s.defaults.Policy
	}
	policy, err := propagate.ParsePolicy(name)
	if err != nil {
		return "", 0, 0, errors.Wrap(errors.ErrCodeInvalidPolicy, err, "policy")
	}

	version := s.defaults.Version
	if req.Version != nil {
		version = *req.Version
	}
	if err := errors.ValidateVersion(version); err != nil {
		return "", 0, 0, err
	}

	maxCount := s.defaults.MaxCount
	if req.MaxCount != nil {
		maxCount = *req.MaxCount
	}
	if policy == propagate.PolicyAtomic && maxCount < 0 {
		return "", 0, 0, errors.New(errors.ErrCodeInvalidInput, "max_count must be >= 0 for the atomic policy, got %d", maxCount)
	}
	return policy, version, maxCount, nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "snapshot id %q", raw))
		return
	}

	snap, err := s.store.Get(r.Context(), id)
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, errNotFound("snapshot %s not found", id))
	case err != nil:
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeStore, err, "load snapshot %s", id))
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}

func errNotFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Error: errors.Detail(err)})
}

func errInternal(v any) error {
	if err, ok := v.(error); ok {
		return errors.Wrap(errors.ErrCodeInternal, err, "internal error")
	}
	return errors.New(errors.ErrCodeInternal, "internal error: %v", v)
}
