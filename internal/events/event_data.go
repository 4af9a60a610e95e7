package events

// EventData is implemented by every typed event payload
type EventData interface {
	EventType() EventType
}

// SessionData describes a created or deleted game session
type SessionData struct {
	Type      EventType `json:"-"`
	SessionID string    `json:"session_id"`
}

func (d *SessionData) EventType() EventType { return d.Type }

// SessionsPurgedData reports idle sessions removed by the purge job
type SessionsPurgedData struct {
	Count int `json:"count"`
}

func (d *SessionsPurgedData) EventType() EventType { return SessionsPurged }

// TradeExecutedData describes a buy or sell in a game session
type TradeExecutedData struct {
	SessionID    string  `json:"session_id"`
	InstrumentID string  `json:"instrument_id"`
	Side         string  `json:"side"`
	Shares       int64   `json:"shares"`
	Price        float64 `json:"price"`
	Cash         float64 `json:"cash"`
}

func (d *TradeExecutedData) EventType() EventType { return TradeExecuted }

// MarketDayAdvancedData describes one simulated trading day
type MarketDayAdvancedData struct {
	SessionID string  `json:"session_id"`
	Day       int     `json:"day"`
	NetWorth  float64 `json:"net_worth"`
	Headline  string  `json:"headline,omitempty"`
}

func (d *MarketDayAdvancedData) EventType() EventType { return MarketDayAdvanced }

// VideoAddedData describes a catalog upsert
type VideoAddedData struct {
	Category string `json:"category"`
	Title    string `json:"title"`
}

func (d *VideoAddedData) EventType() EventType { return VideoAdded }

// CatalogSeededData reports lessons inserted by the seeder
type CatalogSeededData struct {
	Categories int `json:"categories"`
	Videos     int `json:"videos"`
}

func (d *CatalogSeededData) EventType() EventType { return CatalogSeeded }

// ChatData describes a chat exchange outcome
type ChatData struct {
	Type           EventType `json:"-"`
	ConversationID string    `json:"conversation_id"`
	Error          string    `json:"error,omitempty"`
}

func (d *ChatData) EventType() EventType { return d.Type }

// BackupCompletedData describes an uploaded backup archive
type BackupCompletedData struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
	Pruned    int    `json:"pruned"`
}

func (d *BackupCompletedData) EventType() EventType { return BackupCompleted }

// ErrorEventData carries an error and its context
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (d *ErrorEventData) EventType() EventType { return ErrorOccurred }

// SystemStatusData reports a change in database health
type SystemStatusData struct {
	Healthy   bool     `json:"healthy"`
	Unhealthy []string `json:"unhealthy,omitempty"`
}

func (d *SystemStatusData) EventType() EventType { return SystemStatusChanged }
