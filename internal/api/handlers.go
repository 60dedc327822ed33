package api

import (
	"errors"
	"net/http"

	"github.com/ericogr/arena-engine/internal/constants"
	"github.com/ericogr/arena-engine/internal/economy"
	"github.com/ericogr/arena-engine/internal/engine"
	"github.com/ericogr/arena-engine/internal/events"
	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/ledger"
	"github.com/ericogr/arena-engine/internal/storage"

	"github.com/gin-gonic/gin"
)

// EngineHandler exposes the engine's upstream API surface to the
// (out-of-scope) presentation/command gateway.
type EngineHandler struct {
	ledger     *ledger.Ledger
	economy    *economy.Store
	controller *engine.Controller
	hub        *events.Hub
}

func NewEngineHandler(lg *ledger.Ledger, eco *economy.Store, ctrl *engine.Controller, hub *events.Hub) *EngineHandler {
	return &EngineHandler{ledger: lg, economy: eco, controller: ctrl, hub: hub}
}

// respondError maps engine error kinds to HTTP statuses: validation and
// insufficiency are rejections of the request, a concurrency conflict asks
// the caller to retry, anything else is a server fault.
func respondError(c *gin.Context, err error) {
	var validation *game.ValidationError
	var insufficient *game.InsufficientResourceError
	var conflict *game.ConcurrencyConflictError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: validation.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: insufficient.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			constants.JSONKeyError: constants.ErrConflictRetry,
			constants.JSONKeyRetry: true,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedApplyChange})
	}
}

// GetResource returns the lazily regenerated state of one pool.
func (h *EngineHandler) GetResource(c *gin.Context) {
	view, err := h.ledger.Get(c.Param("entityID"), c.Param("resourceType"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type spendRequest struct {
	Amount       int  `json:"amount"`
	AllowOverMax bool `json:"allow_over_max"`
}

// SpendResource consumes from a pool.
func (h *EngineHandler) SpendResource(c *gin.Context) {
	var req spendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	view, err := h.ledger.Consume(c.Param("entityID"), c.Param("resourceType"), req.Amount, req.AllowOverMax)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type bonusRequest struct {
	Amount int `json:"amount"`
}

// GrantBonusResource adds ephemeral surplus above the pool cap.
func (h *EngineHandler) GrantBonusResource(c *gin.Context) {
	var req bonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	view, err := h.ledger.GrantBonus(c.Param("entityID"), c.Param("resourceType"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetBalance returns the entity's currency balance.
func (h *EngineHandler) GetBalance(c *gin.Context) {
	balance, err := h.economy.Balance(c.Param("entityID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entity_id": c.Param("entityID"), "balance": balance})
}

type adjustRequest struct {
	Delta int64 `json:"delta"`
}

// AdjustBalance applies a delta; underflow clamps to zero.
func (h *EngineHandler) AdjustBalance(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	balance, err := h.economy.AdjustBalance(c.Param("entityID"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entity_id": c.Param("entityID"), "balance": balance})
}

// GetInventory lists the entity's item holdings.
func (h *EngineHandler) GetInventory(c *gin.Context) {
	items, err := h.economy.Inventory(c.Param("entityID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entity_id": c.Param("entityID"), "items": items})
}

type itemQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// AddItem adds quantity of one item to the inventory.
func (h *EngineHandler) AddItem(c *gin.Context) {
	var req itemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	it, err := h.economy.AddItem(c.Param("entityID"), c.Param("itemID"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// RemoveItem removes up to quantity of one item and reports the amount
// actually removed.
func (h *EngineHandler) RemoveItem(c *gin.Context) {
	var req itemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	removed, err := h.economy.RemoveItem(c.Param("entityID"), c.Param("itemID"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// UseItem consumes one unit of an item and applies its instant effect.
func (h *EngineHandler) UseItem(c *gin.Context) {
	view, err := h.controller.UseItem(c.Param("entityID"), c.Param("itemID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetCurrentRound returns the latest round.
func (h *EngineHandler) GetCurrentRound(c *gin.Context) {
	round, err := h.controller.CurrentRound()
	if err == storage.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRoundNotFound})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// StartRound opens a new round (administrative).
func (h *EngineHandler) StartRound(c *gin.Context) {
	round, err := h.controller.StartRound()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, round)
}

type attackRequest struct {
	AttackerID string `json:"attacker_id"`
	DefenderID string `json:"defender_id"`
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
}

// ScheduleAttack queues an attack intent for the open round.
func (h *EngineHandler) ScheduleAttack(c *gin.Context) {
	var req attackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	intent, err := h.controller.ScheduleAttack(req.AttackerID, req.DefenderID, req.ItemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

type settleRequest struct {
	CharBudget int `json:"char_budget"`
}

// SettleRound settles the current round (administrative) and returns both
// the structured result and a formatted summary.
func (h *EngineHandler) SettleRound(c *gin.Context) {
	var req settleRequest
	// Body is optional; a missing or empty budget falls back to the default.
	_ = c.ShouldBindJSON(&req)
	if req.CharBudget <= 0 {
		req.CharBudget = constants.DefaultSummaryBudget
	}
	result, err := h.controller.SettleRound()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"summary": engine.Format(result, req.CharBudget),
	})
}

// RoundEvents upgrades to a websocket feed of settled round results.
func (h *EngineHandler) RoundEvents(c *gin.Context) {
	h.hub.Serve(c.Writer, c.Request)
}
