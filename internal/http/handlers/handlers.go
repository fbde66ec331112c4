package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/quayline/terminal-backend/internal/service"
)

// Pinger is the slice of the store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	DB         Pinger
	Vessels    *service.VesselService
	Operations *service.OperationService
	Berths     *service.BerthService
	Teams      *service.TeamService
	Ledger     *service.LedgerService
	Validator  *validator.Validate
	Logger     zerolog.Logger
	AdminKey   string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- vessels ---

// @Summary Register a vessel
// @Tags vessels
// @Accept json
// @Produce json
// @Success 200 {object} models.Vessel
// @Failure 400 {object} map[string]any
// @Router /api/vessels [post]
func (h *Handler) VesselCreate(c *gin.Context) {
	var in service.CreateVesselInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	v, err := h.Vessels.Create(c.Request.Context(), in)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) VesselsList(c *gin.Context) {
	items, err := h.Vessels.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) VesselDetails(c *gin.Context) {
	v, err := h.Vessels.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) VesselArrive(c *gin.Context) {
	v, err := h.Vessels.Arrive(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) VesselDepart(c *gin.Context) {
	v, err := h.Vessels.Depart(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary Vessel discharge progress
// @Tags vessels
// @Produce json
// @Param id path string true "Vessel ID"
// @Success 200 {object} service.VesselProgress
// @Router /api/vessels/{id}/progress [get]
func (h *Handler) VesselProgress(c *gin.Context) {
	p, err := h.Vessels.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ZoneProgress(c *gin.Context) {
	zone := strings.ToUpper(c.Param("zone"))
	p, err := h.Vessels.ZoneProgress(c.Request.Context(), c.Param("id"), zone)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type dischargePayload struct {
	Zone  string `json:"zone" validate:"required"`
	Units int    `json:"units"`
}

// @Summary Record discharge progress for a zone
// @Tags vessels
// @Accept json
// @Produce json
// @Param id path string true "Vessel ID"
// @Success 200 {object} service.ZoneProgress
// @Failure 400 {object} map[string]any
// @Router /api/vessels/{id}/discharge [post]
func (h *Handler) VesselDischarge(c *gin.Context) {
	var payload dischargePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(payload); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	zone := strings.ToUpper(strings.TrimSpace(payload.Zone))
	zp, err := h.Vessels.UpdateDischarge(c.Request.Context(), c.Param("id"), zone, payload.Units)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, zp)
}

// --- operations ---

// @Summary Create a ship operation
// @Tags operations
// @Accept json
// @Produce json
// @Success 200 {object} models.Operation
// @Failure 400 {object} map[string]any
// @Router /api/operations [post]
func (h *Handler) OperationCreate(c *gin.Context) {
	var in service.CreateOperationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(in); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	op, err := h.Operations.Create(c.Request.Context(), in)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

func (h *Handler) OperationsList(c *gin.Context) {
	items, err := h.Operations.List(c.Request.Context(), c.Query("vessel_id"), c.Query("status"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) OperationDetails(c *gin.Context) {
	op, err := h.Operations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// @Summary Complete a workflow step
// @Description Records the provided step fields and advances the operation when the step checklist passes. A failed checklist is reported through result.advanced=false, not as an error.
// @Tags operations
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Param step path int true "Step number (1-4)"
// @Success 200 {object} service.StepOutcome
// @Failure 400 {object} map[string]any
// @Router /api/operations/{id}/steps/{step} [post]
func (h *Handler) OperationCompleteStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil || step < 1 || step > 4 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "step must be 1-4", nil)
		return
	}

	var in service.StepInput
	switch step {
	case 1:
		var payload service.Step1Input
		if err := c.ShouldBindJSON(&payload); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
			return
		}
		in = payload
	case 2:
		var payload service.Step2Input
		if err := c.ShouldBindJSON(&payload); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
			return
		}
		in = payload
	case 3:
		var payload service.Step3Input
		if err := c.ShouldBindJSON(&payload); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
			return
		}
		in = payload
	case 4:
		var payload service.Step4Input
		if err := c.ShouldBindJSON(&payload); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
			return
		}
		in = payload
	}

	outcome, err := h.Operations.CompleteStep(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

type cargoPayload struct {
	Quantity int `json:"quantity"`
}

// @Summary Update cargo progress
// @Tags operations
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} service.StepOutcome
// @Router /api/operations/{id}/cargo [post]
func (h *Handler) OperationCargoProgress(c *gin.Context) {
	var payload cargoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	outcome, err := h.Operations.UpdateCargoProgress(c.Request.Context(), c.Param("id"), payload.Quantity)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) OperationCancel(c *gin.Context) {
	op, err := h.Operations.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// --- berths ---

// @Summary Berth status board
// @Tags berths
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/berths [get]
func (h *Handler) BerthsStatus(c *gin.Context) {
	items, err := h.Berths.Status(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type berthAssignPayload struct {
	BerthNumber string `json:"berth_number" validate:"required"`
}

// @Summary Assign a berth to an operation
// @Tags berths
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} models.Operation
// @Failure 409 {object} map[string]any
// @Router /api/operations/{id}/berth [post]
func (h *Handler) BerthAssign(c *gin.Context) {
	var payload berthAssignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(payload); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	op, err := h.Berths.Assign(c.Request.Context(), c.Param("id"), payload.BerthNumber)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

func (h *Handler) BerthRelease(c *gin.Context) {
	op, err := h.Berths.Release(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// --- teams ---

func (h *Handler) TeamCreate(c *gin.Context) {
	var in service.CreateTeamInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	t, err := h.Teams.Create(c.Request.Context(), in)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) TeamsList(c *gin.Context) {
	zone := strings.ToUpper(strings.TrimSpace(c.Query("zone")))
	items, err := h.Teams.List(c.Request.Context(), c.Query("status"), zone)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) TeamDetails(c *gin.Context) {
	t, err := h.Teams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Find the best-fit stevedore team
// @Description Runs the staged capability filter (availability, zone, cargo, equipment, shift) and returns the ranked best candidate with the filter stages for inspection.
// @Tags teams
// @Accept json
// @Produce json
// @Success 200 {object} service.MatchResult
// @Failure 400 {object} map[string]any
// @Router /api/teams/match [post]
func (h *Handler) TeamMatch(c *gin.Context) {
	var req service.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	result, err := h.Teams.Match(c.Request.Context(), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type teamAssignPayload struct {
	OperationID string `json:"operation_id" validate:"required"`
}

func (h *Handler) TeamAssign(c *gin.Context) {
	var payload teamAssignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(payload); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	t, err := h.Teams.AssignToOperation(c.Request.Context(), c.Param("id"), payload.OperationID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) TeamCompleteAssignment(c *gin.Context) {
	t, err := h.Teams.CompleteAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// --- assignment ledger ---

func (h *Handler) AssignmentCreate(c *gin.Context) {
	var in service.CreateAssignmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(in); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	a, err := h.Ledger.Create(c.Request.Context(), in)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) AssignmentsList(c *gin.Context) {
	items, err := h.Ledger.ListByOperation(c.Request.Context(), c.Query("operation_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AssignmentDetails(c *gin.Context) {
	a, err := h.Ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) AssignmentStart(c *gin.Context) {
	a, err := h.Ledger.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) AssignmentComplete(c *gin.Context) {
	a, err := h.Ledger.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) AssignmentCancel(c *gin.Context) {
	a, err := h.Ledger.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// --- error envelope ---

func writeDomainError(c *gin.Context, err error) {
	switch service.CodeOf(err) {
	case service.CodeValidation:
		writeError(c, http.StatusBadRequest, service.CodeValidation, err.Error(), nil)
	case service.CodeNotFound:
		writeError(c, http.StatusNotFound, service.CodeNotFound, err.Error(), nil)
	case service.CodeConflict:
		writeError(c, http.StatusConflict, service.CodeConflict, err.Error(), nil)
	case service.CodeInvalidState:
		writeError(c, http.StatusUnprocessableEntity, service.CodeInvalidState, err.Error(), nil)
	default:
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Storage failure", err.Error())
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
