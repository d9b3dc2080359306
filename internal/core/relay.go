package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/solidarity-overthrow/relay/internal/domain"
)

// Relay is a single in-memory chat room. Every access to sessions and
// muted goes through mu, so handlers running on different connection
// goroutines never interleave a mutation. Broadcast order is the
// insertion order of the session list.
type Relay struct {
	room  string
	store MuteStore

	mu       sync.Mutex
	sessions []*Session
	muted    map[domain.UserID]struct{}
}

// NewRelay builds the room and restores the muted set from the durable
// slot. An absent slot means nobody is muted.
func NewRelay(ctx context.Context, room string, store MuteStore) (*Relay, error) {
	ids, err := store.LoadMuted(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("load muted set: %w", err)
	}
	muted := make(map[domain.UserID]struct{}, len(ids))
	for _, id := range ids {
		muted[id] = struct{}{}
	}
	log.Info().Str("module", "core.relay").Str("room", room).Int("muted", len(muted)).Msg("relay ready")
	return &Relay{room: room, store: store, muted: muted}, nil
}

func (r *Relay) Room() string { return r.room }

// Join registers the session and announces it. The caller must not feed
// messages from this session before Join returns, so the joined event
// precedes anything the session says.
func (r *Relay) Join(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
	log.Info().Str("module", "core.relay").Str("room", r.room).Str("user", string(s.identity.UserID)).Str("name", s.identity.Username).Msg("session joined")
	r.broadcastLocked(JoinedEvent{Joined: s.identity.Username})
}

// Leave removes the session and announces it. Match is by session
// pointer, not username, so two connections sharing a name stay
// independent. Safe to call twice; the second call is a no-op, which
// keeps the close and error paths of a transport from double-announcing.
func (r *Relay) Leave(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.sessions {
		if cur == s {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			log.Info().Str("module", "core.relay").Str("room", r.room).Str("name", s.identity.Username).Msg("session left")
			r.broadcastLocked(LeftEvent{Left: s.identity.Username})
			return
		}
	}
}

// HandleMessage processes one inbound text frame from a session.
// A muted sender only ever gets a private error back, even before
// command parsing, so a muted admin cannot issue commands.
func (r *Relay) HandleMessage(s *Session, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := s.identity
	if _, ok := r.muted[id.UserID]; ok {
		r.sendLocked(s, ErrorEvent{Error: "You are muted."})
		return
	}
	if !utf8.Valid(data) {
		r.sendLocked(s, ErrorEvent{Error: "Invalid message format"})
		return
	}
	text := string(data)
	if id.IsAdmin && strings.HasPrefix(text, "/") {
		r.runCommandLocked(text)
		return
	}
	r.broadcastLocked(MessageEvent{From: id.Username, Message: text, IsAdmin: id.IsAdmin})
}

// runCommandLocked executes the two-token admin grammar. A command with
// no target is silently ignored. Target resolution runs before verb
// dispatch and matches the first live session with that username.
func (r *Relay) runCommandLocked(text string) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return
	}
	verb, target := parts[0], parts[1]

	var match *Session
	for _, s := range r.sessions {
		if s.identity.Username == target {
			match = s
			break
		}
	}
	if match == nil {
		r.broadcastLocked(SystemEvent{System: fmt.Sprintf("User '%s' not found.", target)})
		return
	}
	switch verb {
	case "/mute":
		r.muteLocked(match.identity.UserID, target)
	case "/unmute":
		r.unmuteLocked(match.identity.UserID, target)
	}
}

func (r *Relay) muteLocked(uid domain.UserID, username string) {
	r.muted[uid] = struct{}{}
	r.persistLocked()
	r.broadcastLocked(SystemEvent{System: fmt.Sprintf("%s has been muted.", username)})
}

func (r *Relay) unmuteLocked(uid domain.UserID, username string) {
	delete(r.muted, uid)
	r.persistLocked()
	if username == "" {
		username = "A user"
	}
	r.broadcastLocked(SystemEvent{System: fmt.Sprintf("%s has been unmuted.", username)})
}

// UnmuteUser clears a mute by raw userId, for the admin HTTP surface.
// Shares the mutate+persist+broadcast path with the in-band command.
// Unmuting an id that is not muted still succeeds.
func (r *Relay) UnmuteUser(uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmuteLocked(uid, "")
}

// persistLocked writes the muted set back, best-effort. The live room
// keeps its in-memory state even when the write fails; durability only
// matters for restart recovery.
func (r *Relay) persistLocked() {
	ids := make([]domain.UserID, 0, len(r.muted))
	for id := range r.muted {
		ids = append(ids, id)
	}
	if err := r.store.SaveMuted(context.Background(), r.room, ids); err != nil {
		log.Error().Err(err).Str("module", "core.relay").Str("room", r.room).Msg("persist muted set")
	}
}

// Status returns a snapshot for the admin surface. Muted is never nil
// so the JSON stays an array.
func (r *Relay) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := Status{
		Sessions: make([]SessionInfo, 0, len(r.sessions)),
		Muted:    make([]domain.UserID, 0, len(r.muted)),
	}
	for _, s := range r.sessions {
		st.Sessions = append(st.Sessions, SessionInfo{
			Username: s.identity.Username,
			UserID:   s.identity.UserID,
			IsAdmin:  s.identity.IsAdmin,
		})
	}
	for id := range r.muted {
		st.Muted = append(st.Muted, id)
	}
	return st
}

func (r *Relay) sendLocked(s *Session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.relay").Msg("marshal event")
		return
	}
	if err := s.conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "core.relay").Str("name", s.identity.Username).Msg("send dropped")
	}
}

// broadcastLocked fans an event out to every session, sender included,
// in insertion order. Sends never block; a slow client drops frames
// instead of stalling the room.
func (r *Relay) broadcastLocked(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.relay").Msg("marshal event")
		return
	}
	for _, s := range r.sessions {
		if err := s.conn.TrySend(b); err != nil {
			log.Warn().Err(err).Str("module", "core.relay").Str("name", s.identity.Username).Msg("broadcast dropped")
		}
	}
}
