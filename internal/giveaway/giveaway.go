package giveaway

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"monad-tipbot-go/internal/executor"
	"monad-tipbot-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrGiveawayActive rejects a second giveaway while one is still open in the
// same chat. Entry triggers are chat-scoped, so overlapping giveaways would
// make attribution ambiguous.
var ErrGiveawayActive = errors.New("a giveaway is already open in this chat")

// State of a giveaway instance. Terminal once Closed; no reopening.
type State int

const (
	StateOpen State = iota
	StateClosing
	StateClosed
)

// Giveaway is the ephemeral per-chat entry pool. It lives in the manager's
// registry from Start until closure and is never persisted.
type Giveaway struct {
	ChatId   int64
	Sender   *models.Wallet
	Amount   decimal.Decimal
	Deadline time.Time

	state        State
	participants []string
	seen         map[string]struct{}
	timer        *time.Timer
}

// Result reports a closed giveaway's outcome.
type Result struct {
	ChatId       int64
	Winner       string
	Participants int
	Receipt      *models.SettlementReceipt
	Err          error
}

// Settler issues the single settlement call at closure. Satisfied by
// engine.Engine.
type Settler interface {
	Settle(ctx context.Context, sender *models.Wallet, recipientUsername string, amount decimal.Decimal, cbs *executor.Callbacks) (*models.SettlementReceipt, error)
}

// Notifier renders giveaway lifecycle events for the chat platform.
// Rendering is the dispatch layer's concern; the engine only reports.
type Notifier interface {
	GiveawayOpened(chatId int64, amount decimal.Decimal, deadline time.Time)
	GiveawayClosed(result Result)
}

// Manager owns all open giveaways, keyed by chat id. The deadline timer set
// at creation is the sole closer of a giveaway; closure removes the instance
// from the registry under the manager lock, so a duplicate or late timer
// finds nothing to close.
type Manager struct {
	mu     sync.Mutex
	active map[int64]*Giveaway

	settler  Settler
	notifier Notifier
	duration time.Duration
	triggers []string

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewManager(settler Settler, notifier Notifier, cfg models.GiveawayConfig, triggers []string, rng *rand.Rand) *Manager {
	duration := cfg.Duration
	if duration <= 0 {
		duration = 60 * time.Second
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		active:   make(map[int64]*Giveaway),
		settler:  settler,
		notifier: notifier,
		duration: duration,
		triggers: triggers,
		rng:      rng,
	}
}

// Start opens a new giveaway in the chat and arms its deadline timer.
func (m *Manager) Start(ctx context.Context, chatId int64, sender *models.Wallet, amount decimal.Decimal) (*Giveaway, error) {
	if !amount.IsPositive() {
		return nil, errors.New("giveaway amount must be positive")
	}

	m.mu.Lock()
	if _, ok := m.active[chatId]; ok {
		m.mu.Unlock()
		return nil, ErrGiveawayActive
	}

	g := &Giveaway{
		ChatId:   chatId,
		Sender:   sender,
		Amount:   amount,
		Deadline: time.Now().Add(m.duration),
		state:    StateOpen,
		seen:     make(map[string]struct{}),
	}
	m.active[chatId] = g
	g.timer = time.AfterFunc(m.duration, func() {
		m.close(ctx, chatId, g)
	})
	m.mu.Unlock()

	zap.L().Info("Giveaway opened",
		zap.Int64("chat_id", chatId),
		zap.String("sender", sender.Identity),
		zap.String("amount", amount.String()),
		zap.Time("deadline", g.Deadline))

	if m.notifier != nil {
		m.notifier.GiveawayOpened(chatId, amount, g.Deadline)
	}
	return g, nil
}

// HandleMessage feeds one chat message into the entry collector. Only a
// configured trigger word (case-insensitive, trimmed) enters; each identity
// enters at most once, first entry wins. Messages for chats without an open
// giveaway are silent no-ops. Reports whether the message entered someone.
func (m *Manager) HandleMessage(chatId int64, identity, text string) bool {
	if !m.isTrigger(text) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.active[chatId]
	if !ok || g.state != StateOpen {
		return false
	}
	if _, dup := g.seen[identity]; dup {
		return false
	}

	g.seen[identity] = struct{}{}
	g.participants = append(g.participants, identity)

	zap.L().Info("Giveaway entry recorded",
		zap.Int64("chat_id", chatId),
		zap.String("identity", identity),
		zap.Int("participants", len(g.participants)))
	return true
}

// ParticipantCount returns the current entry count of the chat's open
// giveaway, or zero when none is open.
func (m *Manager) ParticipantCount(chatId int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.active[chatId]; ok {
		return len(g.participants)
	}
	return 0
}

func (m *Manager) isTrigger(text string) bool {
	normalized := normalizeTrigger(text)
	for _, trigger := range m.triggers {
		if normalized == trigger {
			return true
		}
	}
	return false
}

// close transitions Open -> Closing -> Closed. The remove-and-check on the
// registry makes closure idempotent: whichever caller removes the instance
// proceeds, every other caller returns without acting.
func (m *Manager) close(ctx context.Context, chatId int64, g *Giveaway) {
	m.mu.Lock()
	current, ok := m.active[chatId]
	if !ok || current != g {
		m.mu.Unlock()
		return
	}
	delete(m.active, chatId)
	g.state = StateClosing
	participants := append([]string(nil), g.participants...)
	m.mu.Unlock()

	result := Result{ChatId: chatId, Participants: len(participants)}

	if len(participants) == 0 {
		g.state = StateClosed
		zap.L().Info("Giveaway closed with no participants", zap.Int64("chat_id", chatId))
		m.notify(result)
		return
	}

	winner := participants[m.intn(len(participants))]
	result.Winner = winner

	zap.L().Info("Giveaway winner selected",
		zap.Int64("chat_id", chatId),
		zap.String("winner", winner),
		zap.Int("participants", len(participants)))

	receipt, err := m.settler.Settle(ctx, g.Sender, winner, g.Amount, nil)
	result.Receipt = receipt
	result.Err = err
	g.state = StateClosed

	if err != nil {
		zap.L().Error("Giveaway settlement failed",
			zap.Int64("chat_id", chatId),
			zap.String("winner", winner),
			zap.Error(err))
	}
	m.notify(result)
}

func (m *Manager) notify(result Result) {
	if m.notifier != nil {
		m.notifier.GiveawayClosed(result)
	}
}

// intn draws uniformly from [0, n) under the rng lock; timers for unrelated
// chats may fire concurrently.
func (m *Manager) intn(n int) int {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Intn(n)
}

// Matches are whole-message: "gm everyone" is chatter, not an entry.
func normalizeTrigger(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
