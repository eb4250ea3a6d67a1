package httpapi

import (
	"context"
	"net/http"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/engine"
	"recruit-automation/internal/engine/dispatch"
	"recruit-automation/internal/models"
	"recruit-automation/pkg/response"

	"github.com/gin-gonic/gin"
)

// Invalidator drops cached collaborator data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler serves the automation editor endpoints.
type Handler struct {
	engine      *engine.Engine
	operator    models.OperatorProfile
	invalidates []Invalidator
	logger      logger.Logger
}

// NewHandler builds a Handler. operator signs previews and runs whose
// request carries no operator profile of its own.
func NewHandler(e *engine.Engine, operator models.OperatorProfile, log logger.Logger, caches ...Invalidator) *Handler {
	return &Handler{
		engine:      e,
		operator:    operator,
		invalidates: caches,
		logger:      logger.ForComponent(log, "httpapi"),
	}
}

// PreviewRequest previews either a stored rule or an unsaved draft.
type PreviewRequest struct {
	RuleID  string                `json:"ruleId"`
	Draft   *models.DraftRule     `json:"rule"`
	Context models.TriggerContext `json:"context"`
}

// ValidateResponse lists the field errors for a draft.
type ValidateResponse struct {
	Valid  bool        `json:"valid"`
	Errors interface{} `json:"errors"`
}

func (h *Handler) ListRules(c *gin.Context) {
	list, err := h.engine.Rules().List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []models.AutomationRule{}
	}
	response.OK(c, list)
}

func (h *Handler) GetRule(c *gin.Context) {
	rule, err := h.engine.Rules().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, rule)
}

func (h *Handler) CreateRule(c *gin.Context) {
	var d models.DraftRule
	if err := c.ShouldBindJSON(&d); err != nil {
		response.BadRequest(c, "invalid rule payload")
		return
	}
	rule, err := h.engine.Rules().Create(c.Request.Context(), d)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, rule)
}

func (h *Handler) UpdateRule(c *gin.Context) {
	var d models.DraftRule
	if err := c.ShouldBindJSON(&d); err != nil {
		response.BadRequest(c, "invalid rule payload")
		return
	}
	rule, err := h.engine.Rules().Update(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, rule)
}

func (h *Handler) DeleteRule(c *gin.Context) {
	if err := h.engine.Rules().Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) ToggleRule(c *gin.Context) {
	rule, err := h.engine.Rules().Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, rule)
}

// ValidateRule always answers 200; the verdict is in the body.
func (h *Handler) ValidateRule(c *gin.Context) {
	var d models.DraftRule
	if err := c.ShouldBindJSON(&d); err != nil {
		response.BadRequest(c, "invalid rule payload")
		return
	}
	errs := engine.ValidateRule(d)
	resp := ValidateResponse{Valid: len(errs) == 0, Errors: errs}
	if errs == nil {
		resp.Errors = []struct{}{}
	}
	response.OK(c, resp)
}

func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid preview payload")
		return
	}
	tc := h.withOperator(req.Context)

	ctx := c.Request.Context()
	switch {
	case req.RuleID != "":
		res, err := h.engine.PreviewRule(ctx, req.RuleID, tc)
		if err != nil {
			h.fail(c, err)
			return
		}
		response.OK(c, res)
	case req.Draft != nil:
		res, err := h.engine.PreviewDraft(ctx, *req.Draft, tc)
		if err != nil {
			h.fail(c, err)
			return
		}
		response.OK(c, res)
	default:
		response.BadRequest(c, "ruleId or rule is required")
	}
}

func (h *Handler) Variables(c *gin.Context) {
	var d models.DraftRule
	if err := c.ShouldBindJSON(&d); err != nil {
		response.BadRequest(c, "invalid rule payload")
		return
	}
	report, err := h.engine.DraftVariables(c.Request.Context(), d)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, report)
}

// Catalog lists the variables every entity kind can supply.
func (h *Handler) Catalog(c *gin.Context) {
	response.OK(c, engine.Catalog())
}

func (h *Handler) Triggers(c *gin.Context) {
	response.OK(c, engine.Triggers())
}

func (h *Handler) Templates(c *gin.Context) {
	list, err := h.engine.Templates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []models.Template{}
	}
	response.OK(c, list)
}

// FireEvent runs a domain event through the matching active rules.
func (h *Handler) FireEvent(c *gin.Context) {
	var ev dispatch.Event
	if err := c.ShouldBindJSON(&ev); err != nil || ev.Trigger == "" {
		response.BadRequest(c, "trigger is required")
		return
	}
	ev.Context = h.withOperator(ev.Context)

	res, err := h.engine.Run(c.Request.Context(), ev)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, res)
}

func (h *Handler) RefreshCache(c *gin.Context) {
	for _, inv := range h.invalidates {
		if err := inv.Invalidate(c.Request.Context()); err != nil {
			h.logger.Error("cache invalidation failed", map[string]interface{}{"error": err.Error()})
			response.ServiceUnavailable(c, "cache unavailable")
			return
		}
	}
	response.OK(c, gin.H{"refreshed": len(h.invalidates)})
}

func (h *Handler) withOperator(tc models.TriggerContext) models.TriggerContext {
	if tc.Operator.IsZero() {
		tc.Operator = h.operator
	}
	return tc
}

// fail maps a typed engine error to its status. Anything untyped is a 500
// and is logged.
func (h *Handler) fail(c *gin.Context, err error) {
	stdErr, ok := errors.As(err)
	if !ok {
		h.logger.Error("unhandled error", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		response.Internal(c, "internal error")
		return
	}

	var details interface{}
	switch stdErr.Code {
	case errors.ErrCodeValidationFailed:
		details = errors.FieldErrors(err)
	default:
		if stdErr.Details != "" {
			details = stdErr.Details
		}
	}

	status := errors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{
			"path":      c.FullPath(),
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
	}
	response.Fail(c, status, string(stdErr.Code), stdErr.Message, details)
}
