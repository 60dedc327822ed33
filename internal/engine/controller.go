package engine

import (
	"math/rand"
	"time"

	"github.com/ericogr/arena-engine/internal/economy"
	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/ledger"
	"github.com/ericogr/arena-engine/internal/storage"

	"golang.org/x/sync/singleflight"
)

// Controller orchestrates the round lifecycle: it opens rounds, accumulates
// attack intents, and settles income and combat at round boundaries. All
// state lives in the repository; the controller itself is stateless between
// calls apart from the settlement deduplication group.
type Controller struct {
	repo    storage.Repository
	ledger  *ledger.Ledger
	economy *economy.Store
	items   map[string]game.ItemDefinition

	goodEventProbability float64
	boostResource        string

	rng *rand.Rand
	now func() time.Time

	// settle collapses concurrent SettleRound calls for the same round so
	// exactly one settlement runs and every caller shares its result.
	settle singleflight.Group

	// onSettle, when set, receives every settled round result (used to feed
	// the websocket event hub).
	onSettle func(*game.RoundResult)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock substitutes the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRand substitutes the random source used for the income event draw.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithBoostResource sets the resource type credited by item stamina boosts.
func WithBoostResource(name string) Option {
	return func(c *Controller) { c.boostResource = name }
}

// WithSettleHook registers a callback invoked with every settled result.
func WithSettleHook(fn func(*game.RoundResult)) Option {
	return func(c *Controller) { c.onSettle = fn }
}

func NewController(repo storage.Repository, lg *ledger.Ledger, eco *economy.Store, items []game.ItemDefinition, goodEventProbability float64, opts ...Option) *Controller {
	m := make(map[string]game.ItemDefinition, len(items))
	for _, d := range items {
		m[d.ID] = d
	}
	c := &Controller{
		repo:                 repo,
		ledger:               lg,
		economy:              eco,
		items:                m,
		goodEventProbability: goodEventProbability,
		boostResource:        "stamina",
		rng:                  rand.New(rand.NewSource(time.Now().UnixNano())),
		now:                  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CurrentRound returns the latest round, or ErrNotFound when none exists.
func (c *Controller) CurrentRound() (*game.Round, error) {
	return c.repo.GetCurrentRound()
}

// openRound returns the current round if it is accepting attacks.
func (c *Controller) openRound() (*game.Round, error) {
	r, err := c.repo.GetCurrentRound()
	if err == storage.ErrNotFound {
		return nil, &game.ValidationError{Field: "round", Reason: "no round has been started"}
	}
	if err != nil {
		return nil, err
	}
	if r.State != game.RoundOpen {
		return nil, &game.ValidationError{Field: "round", Reason: "round is not open"}
	}
	return r, nil
}

// UseItem consumes one unit of an item and applies its instant effect.
// Today the only instant effect is a stamina boost: an ephemeral surplus
// above the pool cap that does not regenerate.
func (c *Controller) UseItem(entityID, itemID string) (*game.PoolView, error) {
	def, err := c.economy.ItemDefinition(itemID)
	if err != nil {
		return nil, err
	}
	if def.StaminaBoost <= 0 {
		return nil, &game.ValidationError{Field: "item_id", Reason: "item " + itemID + " has no usable effect"}
	}
	removed, err := c.economy.RemoveItem(entityID, itemID, 1)
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, &game.InsufficientResourceError{EntityID: entityID, Resource: "item:" + itemID, Requested: 1, Available: 0}
	}
	return c.ledger.GrantBonus(entityID, c.boostResource, def.StaminaBoost)
}
