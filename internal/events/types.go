package events

// EventType identifies a kind of system event
type EventType string

const (
	SessionCreated      EventType = "SESSION_CREATED"
	SessionDeleted      EventType = "SESSION_DELETED"
	SessionsPurged      EventType = "SESSIONS_PURGED"
	TradeExecuted       EventType = "TRADE_EXECUTED"
	MarketDayAdvanced   EventType = "MARKET_DAY_ADVANCED"
	VideoAdded          EventType = "VIDEO_ADDED"
	CatalogSeeded       EventType = "CATALOG_SEEDED"
	ChatReplied         EventType = "CHAT_REPLIED"
	ChatFailed          EventType = "CHAT_FAILED"
	BackupCompleted     EventType = "BACKUP_COMPLETED"
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type the stream forwards by default
func AllTypes() []EventType {
	return []EventType{
		SessionCreated,
		SessionDeleted,
		SessionsPurged,
		TradeExecuted,
		MarketDayAdvanced,
		VideoAdded,
		CatalogSeeded,
		ChatReplied,
		ChatFailed,
		BackupCompleted,
		SystemStatusChanged,
		ErrorOccurred,
	}
}
