package core

// Wire events, relay to client. Each shape carries a single
// discriminating key, matching what the game client expects.

type JoinedEvent struct {
	Joined string `json:"joined"`
}

type LeftEvent struct {
	Left string `json:"left"`
}

type MessageEvent struct {
	From    string `json:"from"`
	Message string `json:"message"`
	IsAdmin bool   `json:"isAdmin"`
}

type SystemEvent struct {
	System string `json:"system"`
}

type ErrorEvent struct {
	Error string `json:"error"`
}
