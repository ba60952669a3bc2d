/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// GM sessions
//
// Every GM works in a live room at /gm/:session. The first connection to a
// session becomes the GM; every later connection is a player who may only
// submit quiz results. The GM builds a roster from uploaded CSV, bundled
// samples and player submissions, and receives a fresh party suggestion
// after every change.
//
// Routes:
//   - $path                  → redirects to a new random session (8-char ID)
//   - $path/:session         → GM page
//   - $path/:session/ws      → WebSocket for that session
//   - $path/:session/qr      → PNG QR code of the player quiz link
//   - $path/:session/submit  → POST a quiz share payload
//   - $path/:session/import  → GET ?data= share link, then back to the GM page
//   - $path/:session/export  → current parties as a CSV download

package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Seednode/ulvareth/party"
	"github.com/Seednode/ulvareth/quiz"
	"github.com/Seednode/ulvareth/roster"
)

const exportFilename = "Ulvareth_Group_Assignments.csv"

var (
	errNotGM             = errors.New("only the GM can do that")
	errMoveRefused       = errors.New("that move is not possible; the party may be full")
	errUnknownSubmission = errors.New("no submission with that id")
	errInboxLocked       = errors.New("the GM is not accepting results right now")
)

// ClientMessage is anything a socket may send.
type ClientMessage struct {
	Type       string `json:"type"`                  // "upload", "load_sample", "clear", "settings", "move", "reset", "remove", "lock_inbox", "submit"
	CSV        string `json:"csv,omitempty"`         // upload
	Sample     string `json:"sample,omitempty"`      // load_sample
	Size       int    `json:"size,omitempty"`        // settings
	Mode       string `json:"mode,omitempty"`        // settings
	EnforceCap *bool  `json:"enforce_cap,omitempty"` // settings
	From       int    `json:"from"`                  // move
	Member     int    `json:"member"`                // move
	To         int    `json:"to"`                    // move
	ID         string `json:"id,omitempty"`          // remove
	Lock       *bool  `json:"lock,omitempty"`        // lock_inbox
	Data       string `json:"data,omitempty"`        // submit
}

// SimpleMessage is for one-off notices ("error", "submitted", ...).
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionInfoMessage is sent on connect so the page knows its role.
type SessionInfoMessage struct {
	Type        string `json:"type"` // "session_info"
	Session     string `json:"session"`
	IsGM        bool   `json:"is_gm"`
	InboxLocked bool   `json:"inbox_locked"`
}

// InboxStateMessage tells everyone whether results are being accepted.
type InboxStateMessage struct {
	Type   string `json:"type"` // "inbox_state"
	Locked bool   `json:"locked"`
}

// Submission is a quiz result a player sent to this session.
type Submission struct {
	ID       string       `json:"id"`
	Received time.Time    `json:"received"`
	Payload  quiz.Payload `json:"payload"`
}

// GroupView is one party as the GM page draws it. Positions in the groups
// slice are the handles used by move.
type GroupView struct {
	Title       string         `json:"title"`
	Category    string         `json:"category,omitempty"`
	LabelCounts party.Tally    `json:"label_counts"`
	SecCoverage party.Tally    `json:"sec_coverage"`
	Members     []party.Member `json:"members"`
}

func groupViews(groups []party.Group) []GroupView {
	views := make([]GroupView, len(groups))
	for i, g := range groups {
		views[i] = GroupView{
			Title:       g.Title(),
			LabelCounts: g.LabelCounts,
			SecCoverage: g.SecCoverage,
			Members:     g.Members,
		}
		if g.Categorized {
			views[i].Category = g.Category.Label()
		}
		if views[i].Members == nil {
			views[i].Members = []party.Member{}
		}
	}

	return views
}

// BoardMessage is the full GM view, sent after every change.
type BoardMessage struct {
	Type        string         `json:"type"` // "board"
	Session     string         `json:"session"`
	Summary     party.Tally    `json:"summary"`
	Roster      []party.Player `json:"roster"`
	Submissions []Submission   `json:"submissions"`
	Groups      []GroupView    `json:"groups"`
	Size        int            `json:"size"`
	Mode        party.Mode     `json:"mode"`
	EnforceCap  bool           `json:"enforce_cap"`
	InboxLocked bool           `json:"inbox_locked"`
	Edited      bool           `json:"edited"`
	Status      string         `json:"status,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type command struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	cmds     chan command
	done     chan struct{}
	stop     sync.Once

	mu sync.RWMutex

	createdAt   time.Time
	lastActive  time.Time
	gmID        string // cookie of the GM
	inboxLocked bool

	uploads     []roster.Row
	submissions []Submission
	size        int
	mode        party.Mode
	enforceCap  bool
	board       *party.Board
}

func newHub(cfg *Config, sessionID string) *Hub {
	now := time.Now()

	h := &Hub{
		id:         sessionID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		cmds:       make(chan command),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
		size:       party.ClampSize(cfg.partySize),
		mode:       cfg.groupMode(),
		enforceCap: cfg.enforceCap,
	}
	h.rebuildLocked()

	return h
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.handleRegister(cfg, c)

		case c := <-h.unreg:
			h.handleUnregister(c)

		case cmd := <-h.cmds:
			h.handleCommand(cfg, cmd)

		case <-h.done:
			return
		}
	}
}

// sendLocked queues msg for c, dropping clients that stopped reading.
func (h *Hub) sendLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		if h.clients[c] {
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) broadcastLocked(msg any) {
	for c := range h.clients {
		h.sendLocked(c, msg)
	}
}

func (h *Hub) handleRegister(cfg *Config, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if h.gmID == "" {
		h.gmID = c.playerID
		logf(cfg, "GM: Session %s claimed", h.id)
	}

	h.clients[c] = true

	isGM := c.playerID == h.gmID

	h.sendLocked(c, SessionInfoMessage{
		Type:        "session_info",
		Session:     h.id,
		IsGM:        isGM,
		InboxLocked: h.inboxLocked,
	})

	if isGM {
		h.sendLocked(c, h.boardLocked("", nil))
	}
}

func (h *Hub) handleUnregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) handleCommand(cfg *Config, cmd command) {
	c, msg := cmd.client, cmd.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if msg.Type == "submit" {
		h.handleSubmitLocked(cfg, c, msg.Data)

		return
	}

	if h.gmID == "" || c.playerID != h.gmID {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: errNotGM.Error()})

		return
	}

	var (
		status string
		err    error
	)

	switch msg.Type {
	case "upload":
		status, err = h.uploadLocked(msg.CSV)
	case "load_sample":
		status, err = h.loadSampleLocked(msg.Sample)
	case "clear":
		status = h.clearLocked()
	case "settings":
		status, err = h.settingsLocked(msg)
	case "move":
		status, err = h.moveLocked(msg.From, msg.Member, msg.To)
	case "reset":
		h.board.Reset()
		status = "Manual changes discarded."
	case "remove":
		status, err = h.removeLocked(msg.ID)
	case "lock_inbox":
		status = h.lockInboxLocked(msg.Lock != nil && *msg.Lock)
	default:
		return
	}

	if err != nil {
		logf(cfg, "GM: Session %s rejected %s: %v", h.id, msg.Type, err)
	}

	h.sendBoardLocked(status, err)
}

func (h *Hub) handleSubmitLocked(cfg *Config, c *Client, data string) {
	p, err := quiz.Decode(data)
	if err != nil {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: err.Error()})

		return
	}

	s, err := h.submitLocked(p, "socket")
	if err != nil {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: err.Error()})

		return
	}

	logf(cfg, "GM: Session %s received %q over socket", h.id, s.Payload.Player)

	h.sendLocked(c, SimpleMessage{Type: "submitted", Message: "Your result was sent to the GM."})
}

// rosterLocked is every uploaded row followed by every submission.
func (h *Hub) rosterLocked() []roster.Row {
	rows := slices.Clone(h.uploads)
	for _, s := range h.submissions {
		rows = append(rows, s.Payload.Row())
	}

	return rows
}

// rebuildLocked recomputes the suggestion, discarding manual moves.
func (h *Hub) rebuildLocked() {
	h.board = party.NewBoard(party.Suggest(h.mode, h.rosterLocked(), h.size))

	groupingsTotal.WithLabelValues(string(h.mode)).Inc()
}

func (h *Hub) uploadLocked(text string) (string, error) {
	rows := roster.Parse(text)
	if err := roster.Validate(rows); err != nil {
		rostersRejected.WithLabelValues("upload").Inc()

		return "", err
	}
	rostersParsed.WithLabelValues("upload").Inc()

	h.uploads = append(h.uploads, rows...)
	h.rebuildLocked()

	return fmt.Sprintf("Added %d players.", len(rows)), nil
}

func (h *Hub) loadSampleLocked(name string) (string, error) {
	text, err := roster.Sample(name, nil)
	if err != nil {
		return "", err
	}

	rows := roster.Parse(text)
	if err := roster.Validate(rows); err != nil {
		rostersRejected.WithLabelValues("sample").Inc()

		return "", err
	}
	rostersParsed.WithLabelValues("sample").Inc()

	h.uploads = rows
	h.rebuildLocked()

	return fmt.Sprintf("Loaded the %s sample (%d players).", name, len(rows)), nil
}

func (h *Hub) clearLocked() string {
	h.uploads = nil
	h.submissions = nil
	h.rebuildLocked()

	return "Roster cleared."
}

func (h *Hub) settingsLocked(msg ClientMessage) (string, error) {
	mode := h.mode
	if msg.Mode != "" {
		m, err := party.ParseMode(msg.Mode)
		if err != nil {
			return "", err
		}
		mode = m
	}

	h.mode = mode
	if msg.Size != 0 {
		h.size = party.ClampSize(msg.Size)
	}
	if msg.EnforceCap != nil {
		h.enforceCap = *msg.EnforceCap
	}

	h.rebuildLocked()

	return fmt.Sprintf("Grouping by %s, %d per party.", h.mode, h.size), nil
}

func (h *Hub) moveLocked(from, member, to int) (string, error) {
	capacity := 0
	if h.enforceCap {
		capacity = h.size
	}

	if !h.board.Move(from, member, to, capacity) {
		return "", errMoveRefused
	}

	return "", nil
}

func (h *Hub) removeLocked(id string) (string, error) {
	i := slices.IndexFunc(h.submissions, func(s Submission) bool { return s.ID == id })
	if i < 0 {
		return "", errUnknownSubmission
	}

	name := h.submissions[i].Payload.Player
	h.submissions = slices.Delete(h.submissions, i, i+1)
	h.rebuildLocked()

	return fmt.Sprintf("Removed %s.", name), nil
}

func (h *Hub) lockInboxLocked(locked bool) string {
	h.inboxLocked = locked

	h.broadcastLocked(InboxStateMessage{
		Type:   "inbox_state",
		Locked: locked,
	})

	if locked {
		return "Inbox locked."
	}

	return "Inbox open."
}

func (h *Hub) submitLocked(p quiz.Payload, source string) (Submission, error) {
	if h.inboxLocked {
		return Submission{}, errInboxLocked
	}

	s := Submission{
		ID:       uuid.NewString(),
		Received: time.Now(),
		Payload:  p,
	}

	h.submissions = append(h.submissions, s)
	h.rebuildLocked()

	quizSubmissions.WithLabelValues(source).Inc()

	h.sendBoardLocked(fmt.Sprintf("Received a result from %s.", s.Payload.Row().Get("Player")), nil)

	return s, nil
}

// submit adds a result from outside the socket loop.
func (h *Hub) submit(p quiz.Payload, source string) (Submission, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	return h.submitLocked(p, source)
}

// export returns the current parties as assignment rows.
func (h *Hub) export() []roster.Row {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return party.Export(h.board.Groups())
}

func (h *Hub) boardLocked(status string, err error) BoardMessage {
	rows := h.rosterLocked()
	players := party.Players(rows)

	var summary party.Tally
	for _, p := range players {
		summary[p.Primary]++
	}

	msg := BoardMessage{
		Type:        "board",
		Session:     h.id,
		Summary:     summary,
		Roster:      players,
		Submissions: slices.Clone(h.submissions),
		Groups:      groupViews(h.board.Groups()),
		Size:        h.size,
		Mode:        h.mode,
		EnforceCap:  h.enforceCap,
		InboxLocked: h.inboxLocked,
		Edited:      h.board.Edited(),
		Status:      status,
	}
	if msg.Submissions == nil {
		msg.Submissions = []Submission{}
	}
	if err != nil {
		msg.Error = err.Error()
	}

	return msg
}

// sendBoardLocked pushes the board to every GM connection.
func (h *Hub) sendBoardLocked(status string, err error) {
	msg := h.boardLocked(status, err)

	for c := range h.clients {
		if c.playerID == h.gmID {
			h.sendLocked(c, msg)
		}
	}
}

// closeAll disconnects all clients of this hub and stops its loop.
func (h *Hub) closeAll() {
	h.stop.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		for c := range h.clients {
			close(c.send)
			if c.conn != nil {
				_ = c.conn.Close()
			}
			delete(h.clients, c)
		}

		close(h.done)
	})
}

// SessionManager holds a set of hubs keyed by session ID, so each
// $path/$session is its own isolated room.
type SessionManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	quit        chan struct{}
	closeOnce   sync.Once
}

func newSessionManager(idleTimeout time.Duration) *SessionManager {
	sm := &SessionManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		quit:        make(chan struct{}),
	}
	if idleTimeout > 0 {
		go sm.reaperLoop()
	}
	return sm
}

func (sm *SessionManager) getHub(cfg *Config, sessionID string) *Hub {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if hub, ok := sm.hubs[sessionID]; ok {
		return hub
	}

	hub := newHub(cfg, sessionID)
	sm.hubs[sessionID] = hub
	liveSessions.Inc()
	go hub.run(cfg)

	return hub
}

func (sm *SessionManager) lookup(sessionID string) (*Hub, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	hub, ok := sm.hubs[sessionID]

	return hub, ok
}

// newSessionID generates a crypto-random session ID that is not in use.
func (sm *SessionManager) newSessionID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		sm.mu.Lock()
		_, exists := sm.hubs[id]
		sm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reap ends every session idle since before cutoff and returns their IDs.
func (sm *SessionManager) reap(cutoff time.Time) []string {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var reaped []string
	for id, hub := range sm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(sm.hubs, id)
			liveSessions.Dec()
			reaped = append(reaped, id)
			go hub.closeAll()
		}
	}

	return reaped
}

func (sm *SessionManager) reaperLoop() {
	ticker := time.NewTicker(sm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.reap(time.Now().Add(-sm.idleTimeout))
		case <-sm.quit:
			return
		}
	}
}

// Close stops the reaper and ends every session.
func (sm *SessionManager) Close() {
	sm.closeOnce.Do(func() {
		close(sm.quit)

		sm.mu.Lock()
		defer sm.mu.Unlock()

		for id, hub := range sm.hubs {
			delete(sm.hubs, id)
			liveSessions.Dec()
			hub.closeAll()
		}
	})
}

const playerCookieName = "ulvareth_id"

func newPlayerID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
