package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sprite-ai/revise/internal/aggregate"
	"github.com/sprite-ai/revise/internal/classify"
	"github.com/sprite-ai/revise/internal/guide"
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/stale"
	"github.com/sprite-ai/revise/internal/trust"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- State ---

type hunkJSON struct {
	ID          string   `json:"id"`
	FilePath    string   `json:"filePath"`
	Section     string   `json:"section,omitempty"`
	MovePairID  string   `json:"movePairId,omitempty"`
	Status      string   `json:"status"`
	Label       []string `json:"label,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
	ApprovedVia string   `json:"approvedVia,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Trusted     bool     `json:"trusted"`
	Reviewed    bool     `json:"reviewed"`
}

type stateResponse struct {
	Comparison  model.Comparison     `json:"comparison"`
	Totals      aggregate.HunkStatus `json:"totals"`
	Hunks       []hunkJSON           `json:"hunks"`
	TrustList   []string             `json:"trustList"`
	Notes       string               `json:"notes,omitempty"`
	CompletedAt string               `json:"completedAt,omitempty"`
	Artifacts   stale.Artifacts      `json:"artifacts"`
	Refresh     string               `json:"refresh"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.session.State()
	hunks := s.session.Hunks()

	c := aggregate.SessionCounter(s.session)
	resp := stateResponse{
		Comparison:  st.Comparison,
		Totals:      c.Sum(hunks),
		TrustList:   st.TrustList,
		Notes:       st.Notes,
		CompletedAt: st.CompletedAt,
		Artifacts:   stale.Check(st, hunks),
	}

	unclassified := classify.Unclassified(hunks, st)
	resp.Refresh = classify.SelectMode(len(unclassified), resp.Artifacts.ClassifyStale).String()

	for _, h := range hunks {
		hs := st.Hunk(h.ID)
		j := hunkJSON{
			ID:         h.ID,
			FilePath:   h.FilePath,
			Section:    h.Section,
			MovePairID: h.MovePairID,
			Status:     hs.Status.String(),
			Label:      hs.Label,
			Reasoning:  hs.Reasoning,
			Notes:      hs.Notes,
			Trusted:    c.Classifier.IsHunkTrusted(hs),
			Reviewed:   c.Classifier.IsHunkReviewed(h, hs),
		}
		if hs.Status == model.StatusApproved {
			j.ApprovedVia = hs.ApprovedVia.String()
		}
		resp.Hunks = append(resp.Hunks, j)
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Aggregation views ---

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	c := aggregate.SessionCounter(s.session)
	writeJSON(w, http.StatusOK, aggregate.BuildTree(s.session.Hunks(), c))
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	order := aggregate.SortLexical
	if r.URL.Query().Get("sort") == "pending" {
		order = aggregate.SortPendingDesc
	}
	c := aggregate.SessionCounter(s.session)
	writeJSON(w, http.StatusOK, aggregate.FlatList(s.session.Hunks(), c, order))
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	c := aggregate.SessionCounter(s.session)
	hunks := s.session.Hunks()

	if file := r.URL.Query().Get("file"); file != "" {
		writeJSON(w, http.StatusOK, aggregate.SymbolList(hunks, file, c))
		return
	}
	writeJSON(w, http.StatusOK, aggregate.AllSymbols(hunks, c))
}

// --- Hunk decisions ---

func (s *Server) requireHunk(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if s.session.Hunk(id) == nil {
		writeError(w, http.StatusNotFound, "unknown hunk id")
		return "", false
	}
	return id, true
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireHunk(w, r)
	if !ok {
		return
	}
	s.session.Approve(id, model.ApprovalManual)
	s.mutated(w)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireHunk(w, r)
	if !ok {
		return
	}
	s.session.Reject(id)
	s.mutated(w)
}

func (s *Server) handleUnapprove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireHunk(w, r)
	if !ok {
		return
	}
	s.session.Unapprove(id)
	s.mutated(w)
}

func (s *Server) handleUnreject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireHunk(w, r)
	if !ok {
		return
	}
	s.session.Unreject(id)
	s.mutated(w)
}

func (s *Server) handleDefer(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireHunk(w, r)
	if !ok {
		return
	}
	s.session.SaveForLater(id)
	s.mutated(w)
}

func (s *Server) handleHunkNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireHunk(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	s.session.SetHunkNotes(id, req.Text)
	s.mutated(w)
}

// batchRequest selects hunks by scope. Exactly one selector applies:
// an explicit id list, a file, a directory, or "identical" with a
// reference hunk id.
type batchRequest struct {
	Action    string   `json:"action"` // approve or reject
	IDs       []string `json:"ids,omitempty"`
	File      string   `json:"file,omitempty"`
	Directory string   `json:"directory,omitempty"`
	Identical string   `json:"identical,omitempty"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	switch {
	case req.Action == "reject" && len(req.IDs) > 0:
		s.session.RejectMany(req.IDs)
	case req.Action == "approve" && len(req.IDs) > 0:
		s.session.ApproveMany(req.IDs, model.ApprovalManual)
	case req.Action == "approve" && req.File != "":
		s.session.ApproveFile(req.File, model.ApprovalManual)
	case req.Action == "approve" && req.Directory != "":
		s.session.ApproveDirectory(req.Directory, model.ApprovalManual)
	case req.Action == "approve" && req.Identical != "":
		s.session.ApproveIdentical(req.Identical, model.ApprovalManual)
	default:
		writeError(w, http.StatusBadRequest, "unsupported batch action")
		return
	}
	s.mutated(w)
}

// --- Annotations ---

func (s *Server) handleAnnotationList(w http.ResponseWriter, r *http.Request) {
	anns := s.session.State().Annotations
	if anns == nil {
		anns = []model.Annotation{}
	}
	writeJSON(w, http.StatusOK, anns)
}

func (s *Server) handleAnnotationAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FilePath string `json:"filePath"`
		Line     int    `json:"line"`
		Content  string `json:"content"`
		Text     string `json:"text"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.FilePath == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "filePath and text are required")
		return
	}

	a := model.Annotation{
		ID:       uuid.NewString(),
		FilePath: req.FilePath,
		Line:     req.Line,
		Content:  req.Content,
		Text:     req.Text,
	}
	s.session.AddAnnotation(a)
	s.broadcast()
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAnnotationRemove(w http.ResponseWriter, r *http.Request) {
	s.session.RemoveAnnotation(r.PathValue("id"))
	s.mutated(w)
}

// --- Trust ---

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, trust.Taxonomy())
}

func (s *Server) handleTrustList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"trustList": s.session.State().TrustList,
	})
}

func (s *Server) handleTrustAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pattern string `json:"pattern"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Pattern == "" {
		writeError(w, http.StatusBadRequest, "pattern is required")
		return
	}
	s.session.AddTrustPattern(req.Pattern)
	s.mutated(w)
}

func (s *Server) handleTrustRemove(w http.ResponseWriter, r *http.Request) {
	s.session.RemoveTrustPattern(r.PathValue("pattern"))
	s.mutated(w)
}

// --- AI artifacts ---

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if s.svc.Classifier == nil {
		writeError(w, http.StatusServiceUnavailable, "classification service not configured")
		return
	}

	st := s.session.State()
	hunks := s.session.Hunks()
	gen := s.session.Generation()

	targets := classify.Unclassified(hunks, st)
	if r.URL.Query().Get("all") == "true" {
		targets = hunks
	}

	// Static rules first; the model only sees what they leave open.
	results := classify.Static(targets)
	remaining := targets[:0:0]
	for _, h := range targets {
		if _, ok := results[h.ID]; !ok {
			remaining = append(remaining, h)
		}
	}

	if len(remaining) > 0 {
		aiResults, err := s.svc.Classifier.Classify(r.Context(), remaining)
		if err != nil {
			writeError(w, http.StatusBadGateway, "classification failed: "+err.Error())
			return
		}
		for id, c := range aiResults {
			results[id] = c
		}
	}

	if !s.session.MergeClassification(gen, results, stale.Fingerprint(hunks)) {
		writeError(w, http.StatusConflict, "comparison changed while classifying")
		return
	}
	s.broadcast()
	writeJSON(w, http.StatusOK, map[string]int{"classified": len(results)})
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	if s.svc.Grouper == nil {
		writeError(w, http.StatusServiceUnavailable, "grouping service not configured")
		return
	}

	hunks := s.session.Hunks()
	gen := s.session.Generation()

	groups, err := s.svc.Grouper.Group(r.Context(), hunks)
	if err != nil {
		writeError(w, http.StatusBadGateway, "grouping failed: "+err.Error())
		return
	}
	groups = guide.CompleteGroups(groups, hunks)

	if !s.session.SetGroups(gen, groups, stale.Fingerprint(hunks)) {
		writeError(w, http.StatusConflict, "comparison changed while grouping")
		return
	}
	s.guide.Reset(guide.SessionStatuses(s.session))
	s.broadcast()
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	if s.svc.Narrator == nil {
		writeError(w, http.StatusServiceUnavailable, "narrative service not configured")
		return
	}

	hunks := s.session.Hunks()
	gen := s.session.Generation()

	n, err := s.svc.Narrator.Narrate(r.Context(), hunks)
	if err != nil {
		writeError(w, http.StatusBadGateway, "narrative failed: "+err.Error())
		return
	}

	if !s.session.SetNarrative(gen, n.Text, n.Files, stale.Fingerprint(hunks)) {
		writeError(w, http.StatusConflict, "comparison changed while narrating")
		return
	}
	s.broadcast()
	writeJSON(w, http.StatusOK, map[string]any{"narrative": n.Text, "files": n.Files})
}

// --- Guide ---

type guideResponse struct {
	Groups   []model.ReviewGroup    `json:"groups"`
	Statuses []aggregate.HunkStatus `json:"statuses"`
	Active   int                    `json:"active"`
	Phases   []guide.PhaseSection   `json:"phases"`
	Stale    bool                   `json:"stale"`
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	st := s.session.State()
	hunks := s.session.Hunks()

	writeJSON(w, http.StatusOK, guideResponse{
		Groups:   st.Guide.Groups,
		Statuses: guide.SessionStatuses(s.session),
		Active:   s.guide.Active(),
		Phases:   guide.Phases(st.Guide.Groups),
		Stale:    stale.IsStale(st.Guide.GroupsFingerprint, hunks),
	})
}

func (s *Server) handleGuideActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Index < 0 || req.Index >= len(s.session.State().Guide.Groups) {
		writeError(w, http.StatusBadRequest, "group index out of range")
		return
	}
	s.guide.SetActive(req.Index)
	s.broadcast()
	writeJSON(w, http.StatusOK, map[string]int{"active": req.Index})
}

// --- Completion ---

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.session.Complete()
	s.mutated(w)
}

// mutated is the shared tail of every mutation handler: observe for
// guide auto-advance, notify websocket clients, return fresh totals.
func (s *Server) mutated(w http.ResponseWriter) {
	hunks := s.session.Hunks()

	s.guide.Observe(guide.SessionStatuses(s.session))
	s.broadcast()

	c := aggregate.SessionCounter(s.session)
	writeJSON(w, http.StatusOK, map[string]any{"totals": c.Sum(hunks)})
}
