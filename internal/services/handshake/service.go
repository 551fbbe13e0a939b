// Package handshake drives a connection from just-opened to authorized or
// rejected. The provider has no native proof-of-control operation, so the
// handshake turns the account's profile icon into one: the client must set
// its live icon to a server-chosen challenge value and confirm, and the
// server re-reads the icon to verify.
package handshake

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/lobbyn/relay/internal/dependencies/clock"
	"github.com/lobbyn/relay/internal/dependencies/random"
	"github.com/lobbyn/relay/internal/model"
	"github.com/lobbyn/relay/internal/registry"
	"github.com/lobbyn/relay/internal/riot"
)

// Config holds handshake settings
type Config struct {
	// Timeout is the window a connection has to complete each phase of the
	// handshake before it is rejected
	Timeout time.Duration

	// IconRange is the exclusive upper bound of valid challenge icon ids
	IconRange int
}

// DefaultConfig returns default handshake configuration
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		IconRange: 30,
	}
}

// Service is the authentication handshake state machine. One instance
// serves every connection; per-connection state lives in the registry, and
// the transport guarantees messages for one connection arrive sequentially.
type Service struct {
	registry *registry.Registry
	provider riot.Client
	clock    clock.Clock
	random   random.Random
	cfg      Config
	logger   *slog.Logger
}

// New creates a handshake service
func New(reg *registry.Registry, provider riot.Client, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.IconRange == 0 {
		cfg.IconRange = DefaultConfig().IconRange
	}
	return &Service{
		registry: reg,
		provider: provider,
		clock:    clk,
		random:   rnd,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "handshake")),
	}
}

// Open registers a new pending connection and arms its handshake deadline.
func (s *Service) Open(id model.ConnectionID, sender registry.Sender) {
	s.registry.Add(id, sender, s.clock.Now())
	timer := s.clock.AfterFunc(s.cfg.Timeout, func() { s.expire(id) })
	s.registry.ArmTimer(id, timer)

	unauthorized, authorized := s.registry.Counts()
	s.logger.Info("connection opened",
		slog.String("connection_id", string(id)),
		slog.Int("unauthorized", unauthorized),
		slog.Int("authorized", authorized))
}

// HandleMessage processes one message from a connection that has not yet
// authorized. Only Pending and Challenged are observable here: Identified
// exists only inside a single introduction step, and the transport delivers
// a connection's messages strictly in order.
func (s *Service) HandleMessage(ctx context.Context, id model.ConnectionID, data []byte) {
	conn, ok := s.registry.Get(id)
	if !ok {
		// Lost a race with close or expiry.
		return
	}

	switch conn.State {
	case model.StatePending:
		s.handleIntroduction(ctx, id, data)
	case model.StateChallenged:
		s.handleConfirmation(ctx, id, conn, data)
	default:
		s.reject(id, model.CloseUnauthorized)
	}
}

// handleIntroduction runs steps one through four: validate the claimed
// identity, resolve it, read the current icon, and issue a challenge.
func (s *Service) handleIntroduction(ctx context.Context, id model.ConnectionID, data []byte) {
	var intro model.Introduce
	if err := json.Unmarshal(data, &intro); err != nil {
		s.reject(id, model.CloseInvalidJSON)
		return
	}
	if intro.DisplayName == "" || intro.Tag == "" || intro.Region == "" {
		s.reject(id, model.CloseMalformedIntroduction)
		return
	}
	region, err := model.ParsePlayerRegion(intro.Region)
	if err != nil {
		s.reject(id, model.CloseMalformedIntroduction)
		return
	}

	ref, err := s.provider.ResolveAccount(ctx, intro.DisplayName, intro.Tag)
	if err != nil {
		s.logger.Info("identity resolution failed",
			slog.String("connection_id", string(id)),
			slog.String("riot_id", intro.DisplayName+"#"+intro.Tag),
			slog.String("error", err.Error()))
		s.reject(id, model.CloseInvalidRiotID)
		return
	}

	account := model.ResolvedAccount{
		AccountIdentity: model.AccountIdentity{
			DisplayName: intro.DisplayName,
			Tag:         intro.Tag,
			Region:      region,
		},
		Ref: ref,
	}
	if err := s.registry.MarkIdentified(id, account); err != nil {
		// Connection closed while we were talking to the provider.
		return
	}

	currentIcon, err := s.provider.CurrentIcon(ctx, ref, region)
	if err != nil {
		s.logger.Info("icon lookup failed for claimed region",
			slog.String("connection_id", string(id)),
			slog.String("region", string(region)),
			slog.String("error", err.Error()))
		s.reject(id, model.CloseWrongRegion)
		return
	}

	challenge := s.pickChallenge(currentIcon)
	if err := s.registry.MarkChallenged(id, challenge); err != nil {
		return
	}

	// The confirmation phase gets a full window of its own.
	s.registry.ResetTimer(id, s.cfg.Timeout)

	if err := s.registry.Send(id, []byte(strconv.Itoa(int(challenge)))); err != nil {
		s.logger.Warn("failed to send challenge",
			slog.String("connection_id", string(id)),
			slog.String("error", err.Error()))
		return
	}

	s.logger.Info("connection introduced",
		slog.String("connection_id", string(id)),
		slog.String("riot_id", account.String()),
		slog.String("region", string(region)))
}

// handleConfirmation runs step five: on the Verify signal, re-read the live
// icon and authorize only if it matches the issued challenge.
func (s *Service) handleConfirmation(ctx context.Context, id model.ConnectionID, conn registry.Snapshot, data []byte) {
	if string(data) != model.SignalVerify {
		s.reject(id, model.CloseUnauthorized)
		return
	}

	// Read fresh; the icon can change at any time and must never be cached.
	liveIcon, err := s.provider.CurrentIcon(ctx, conn.Identity.Ref, conn.Identity.Region)
	if err != nil || liveIcon != *conn.ChallengeIcon {
		s.reject(id, model.CloseInvalidIcon)
		return
	}

	account, err := s.registry.Authorize(id, s.clock.Now())
	if err != nil {
		// The deadline fired while we were reading the icon; its close wins.
		return
	}

	if err := s.registry.Send(id, []byte(model.SignalVerified)); err != nil {
		s.logger.Warn("failed to send verification ack",
			slog.String("connection_id", string(id)),
			slog.String("error", err.Error()))
	}

	s.logger.Info("connection verified",
		slog.String("connection_id", string(id)),
		slog.String("riot_id", account.String()),
		slog.String("region", string(account.Region)))
}

// pickChallenge samples a challenge icon guaranteed different from the
// account's current icon. The range is large enough that this terminates in
// expected O(1) tries.
func (s *Service) pickChallenge(current model.IconID) model.IconID {
	for {
		challenge := model.IconID(s.random.Intn(s.cfg.IconRange))
		if challenge != current {
			return challenge
		}
	}
}

// expire fires when a connection's handshake deadline elapses. An already
// authorized connection is left alone.
func (s *Service) expire(id model.ConnectionID) {
	if s.registry.CloseIfUnauthorized(id, model.CloseTimedOut) {
		s.logger.Info("connection timed out", slog.String("connection_id", string(id)))
	}
}

// reject closes a connection with the given reason and removes it.
func (s *Service) reject(id model.ConnectionID, reason model.CloseReason) {
	s.registry.CloseAndRemove(id, reason)
	s.logger.Info("connection rejected",
		slog.String("connection_id", string(id)),
		slog.String("reason", reason.Text))
}
