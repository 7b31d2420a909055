package realtime

import (
	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
)

// Client → server message types.
const (
	MsgBeginDrag  = "begin_drag"
	MsgEndDrag    = "end_drag"
	MsgCancelDrag = "cancel_drag"
	MsgRefresh    = "refresh"
)

// Server → client message types.
const (
	MsgBoard   = "board"
	MsgDealWon = "deal_won"
	MsgError   = "error"
)

type ClientMessage struct {
	Type   string `json:"type"`
	DealID string `json:"deal_id,omitempty"`
	Stage  string `json:"stage,omitempty"`
}

type ServerMessage struct {
	Type    string            `json:"type"`
	Columns []pipeline.Column `json:"columns,omitempty"`
	Deal    *models.Deal      `json:"deal,omitempty"`
	// AutoAccess tells the UI it may offer portal access right away.
	AutoAccess bool `json:"auto_access,omitempty"`
	// Announcement marks a won deal closed by someone else.
	Announcement bool   `json:"announcement,omitempty"`
	DealID       string `json:"deal_id,omitempty"`
	Message      string `json:"message,omitempty"`
}

// WonAnnouncement is what travels between instances.
type WonAnnouncement struct {
	Origin string      `json:"origin"`
	Deal   models.Deal `json:"deal"`
}
