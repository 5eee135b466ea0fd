package httpapi

import (
	"errors"
	"net/http"
	"time"

	"demand-platform/internal/approval"
	"demand-platform/internal/audit"
	"demand-platform/internal/auth"
	"demand-platform/internal/demand"
	"demand-platform/internal/lifecycle"
	"demand-platform/internal/phase"
	"demand-platform/internal/reporting"
	"demand-platform/internal/version"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Demands   *demand.Service
	Lifecycle *lifecycle.Engine
	Approvals *approval.Service
	Audit     *audit.Service
	Versions  *version.Service
	Phases    *phase.Service
	Reports   *reporting.Service
}

// writeError maps domain errors onto HTTP statuses. Validation messages are
// surfaced verbatim; everything else gets a generic body.
func writeError(c *gin.Context, err error) {
	switch {
	case demand.IsValidationError(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, demand.ErrInvalidArgument),
		errors.Is(err, approval.ErrInvalidArgument),
		errors.Is(err, phase.ErrInvalidArgument),
		errors.Is(err, reporting.ErrInvalidRequest),
		errors.Is(err, audit.ErrInvalidEvent):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, demand.ErrNotFound),
		errors.Is(err, approval.ErrNotFound),
		errors.Is(err, phase.ErrNotFound),
		errors.Is(err, audit.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, demand.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "demand was modified concurrently, retry"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// --- Auth ---

type loginRequest struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	SquadID   string `json:"squad_id,omitempty"`
	Role      string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.CompanyID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, company_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.CompanyID, req.SquadID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Demands ---

type createDemandRequest struct {
	Code               string     `json:"code"`
	SquadID            string     `json:"squad_id,omitempty"`
	Priority           string     `json:"priority"`
	Classification     string     `json:"classification,omitempty"`
	Regulatory         bool       `json:"regulatory"`
	RegulatoryDeadline *time.Time `json:"regulatory_deadline,omitempty"`
	Description        string     `json:"description,omitempty"`
	Checklist          string     `json:"checklist,omitempty"`
	EstimatedHours     float64    `json:"estimated_hours,omitempty"`
	EstimatedCostMinor int64      `json:"estimated_cost_minor,omitempty"`
	ROIPercent         float64    `json:"roi_percent,omitempty"`
}

func (h Handlers) CreateDemand(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	var req createDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	d, err := h.Demands.Create(c.Request.Context(), demand.CreateRequest{
		Code:               req.Code,
		CompanyID:          companyID,
		SquadID:            req.SquadID,
		RequesterID:        userID,
		Priority:           demand.Priority(req.Priority),
		Classification:     req.Classification,
		Regulatory:         req.Regulatory,
		RegulatoryDeadline: req.RegulatoryDeadline,
		Description:        req.Description,
		Checklist:          req.Checklist,
		EstimatedHours:     req.EstimatedHours,
		EstimatedCostMinor: req.EstimatedCostMinor,
		ROIPercent:         req.ROIPercent,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h Handlers) GetDemand(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	d, err := h.Demands.Get(c.Request.Context(), companyID, c.Param("demand_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h Handlers) ListDemands(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	ds, err := h.Demands.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"demands": ds})
}

type updateDemandRequest struct {
	SquadID            *string    `json:"squad_id,omitempty"`
	Priority           *string    `json:"priority,omitempty"`
	Classification     *string    `json:"classification,omitempty"`
	Regulatory         *bool      `json:"regulatory,omitempty"`
	RegulatoryDeadline *time.Time `json:"regulatory_deadline,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	Checklist          *string    `json:"checklist,omitempty"`
	EstimatedHours     *float64   `json:"estimated_hours,omitempty"`
	EstimatedCostMinor *int64     `json:"estimated_cost_minor,omitempty"`
	ROIPercent         *float64   `json:"roi_percent,omitempty"`
}

func (h Handlers) UpdateDemand(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	var req updateDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	upd := demand.UpdateRequest{
		ActorID:            userID,
		SquadID:            req.SquadID,
		Classification:     req.Classification,
		Regulatory:         req.Regulatory,
		RegulatoryDeadline: req.RegulatoryDeadline,
		Description:        req.Description,
		Notes:              req.Notes,
		Checklist:          req.Checklist,
		EstimatedHours:     req.EstimatedHours,
		EstimatedCostMinor: req.EstimatedCostMinor,
		ROIPercent:         req.ROIPercent,
	}
	if req.Priority != nil {
		p := demand.Priority(*req.Priority)
		upd.Priority = &p
	}

	d, err := h.Demands.Update(c.Request.Context(), companyID, c.Param("demand_id"), upd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type assignOwnerRequest struct {
	OwnerID string `json:"owner_id"`
}

func (h Handlers) AssignOwner(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	var req assignOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OwnerID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "owner_id required"})
		return
	}
	d, err := h.Demands.AssignOwner(c.Request.Context(), companyID, c.Param("demand_id"), userID, req.OwnerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type dailyUpdateRequest struct {
	Text string `json:"text"`
}

func (h Handlers) LogDailyUpdate(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	var req dailyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Demands.LogDailyUpdate(c.Request.Context(), companyID, c.Param("demand_id"), userID, req.Text); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// --- Status transitions ---

type transitionRequest struct {
	Target    string `json:"target"`
	Confirmed bool   `json:"confirmed"`
	Reason    string `json:"reason,omitempty"`
}

func (h Handlers) ChangeStatus(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Target == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "target required"})
		return
	}

	out, err := h.Lifecycle.ChangeStatus(c.Request.Context(), lifecycle.TransitionRequest{
		CompanyID: companyID,
		DemandID:  c.Param("demand_id"),
		ActorID:   userID,
		Target:    demand.Status(req.Target),
		Confirmed: req.Confirmed,
		Reason:    req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if out.RequiresConfirmation {
		// 409 signals the client to re-submit with confirmed=true.
		c.JSON(http.StatusConflict, out)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) PreviewTransition(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	target := c.Query("target")
	if target == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "target required"})
		return
	}
	res, err := h.Lifecycle.Preview(c.Request.Context(), companyID, c.Param("demand_id"), demand.Status(target))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Approvals ---

type voteRequest struct {
	Level   string `json:"level"`
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
	Name    string `json:"name,omitempty"`
}

func (h Handlers) Vote(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	rec, err := h.Approvals.Vote(c.Request.Context(), approval.VoteRequest{
		CompanyID:    companyID,
		DemandID:     c.Param("demand_id"),
		ApproverID:   userID,
		ApproverName: req.Name,
		Level:        approval.Level(req.Level),
		Approve:      req.Approve,
		Reason:       req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h Handlers) ListApprovals(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	entries, err := h.Approvals.Reconcile(c.Request.Context(), companyID, c.Param("demand_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approvals": entries})
}

// --- History / versions ---

type historyEntry struct {
	audit.Event
	Changes []audit.FieldChange `json:"changes,omitempty"`
}

func (h Handlers) ListHistory(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	demandID := c.Param("demand_id")

	// History is company-scoped through the demand lookup.
	if _, err := h.Demands.Get(c.Request.Context(), companyID, demandID); err != nil {
		writeError(c, err)
		return
	}

	var f audit.ListFilter
	if a := c.Query("action"); a != "" {
		f.Actions = []audit.Action{audit.Action(a)}
	}
	events, err := h.Audit.ListForDemand(c.Request.Context(), demandID, f)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]historyEntry, 0, len(events))
	for _, e := range events {
		out = append(out, historyEntry{Event: e, Changes: audit.Diff(e.Before, e.After)})
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (h Handlers) ListVersions(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	history, err := h.Versions.History(c.Request.Context(), companyID, c.Param("demand_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": history})
}

// --- Phases ---

type addPhaseRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Sequence        int     `json:"sequence,omitempty"`
	EstimatedHours  float64 `json:"estimated_hours,omitempty"`
	Currency        string  `json:"currency,omitempty"`
	HourlyRateMinor int64   `json:"hourly_rate_minor,omitempty"`
}

func (h Handlers) AddPhase(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	demandID := c.Param("demand_id")

	// Phases belong to a demand the caller can see.
	if _, err := h.Demands.Get(c.Request.Context(), companyID, demandID); err != nil {
		writeError(c, err)
		return
	}

	var req addPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	p, err := h.Phases.Add(c.Request.Context(), phase.AddRequest{
		DemandID:        demandID,
		ActorID:         userID,
		Name:            req.Name,
		Description:     req.Description,
		Sequence:        req.Sequence,
		EstimatedHours:  req.EstimatedHours,
		Currency:        req.Currency,
		HourlyRateMinor: req.HourlyRateMinor,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type updatePhaseRequest struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Sequence        *int     `json:"sequence,omitempty"`
	EstimatedHours  *float64 `json:"estimated_hours,omitempty"`
	HourlyRateMinor *int64   `json:"hourly_rate_minor,omitempty"`
}

func (h Handlers) UpdatePhase(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	demandID := c.Param("demand_id")

	if _, err := h.Demands.Get(c.Request.Context(), companyID, demandID); err != nil {
		writeError(c, err)
		return
	}

	var req updatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	p, err := h.Phases.Update(c.Request.Context(), phase.UpdateRequest{
		DemandID:        demandID,
		PhaseID:         c.Param("phase_id"),
		ActorID:         userID,
		Name:            req.Name,
		Description:     req.Description,
		Sequence:        req.Sequence,
		EstimatedHours:  req.EstimatedHours,
		HourlyRateMinor: req.HourlyRateMinor,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) ListPhases(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	demandID := c.Param("demand_id")

	if _, err := h.Demands.Get(c.Request.Context(), companyID, demandID); err != nil {
		writeError(c, err)
		return
	}

	ps, err := h.Phases.ListForDemand(c.Request.Context(), demandID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phases": ps})
}

// --- Reporting ---

func (h Handlers) PortfolioSummary(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	from, to, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.Reports.PortfolioSummary(c.Request.Context(), reporting.PortfolioSummaryRequest{
		CompanyID: companyID,
		SquadID:   c.Query("squad_id"),
		Range:     reporting.TimeRange{From: from, To: to},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ApprovalProgress(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Reports.ApprovalProgress(c.Request.Context(), reporting.ApprovalProgressRequest{
		CompanyID: companyID,
		DemandID:  c.Param("demand_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- helpers ---

func identity(c *gin.Context) (companyID, userID string, ok bool) {
	ctx := c.Request.Context()
	companyID, err := auth.CompanyID(ctx)
	if err != nil || companyID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "company_id required"})
		return "", "", false
	}
	userID, err = auth.UserID(ctx)
	if err != nil || userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return "", "", false
	}
	return companyID, userID, true
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	const layout = time.RFC3339
	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errors.New("from and to are required (RFC 3339)")
	}
	from, err := time.Parse(layout, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("from must be RFC 3339")
	}
	to, err := time.Parse(layout, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("to must be RFC 3339")
	}
	return from, to, nil
}
