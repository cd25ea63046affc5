package models

import "time"

// Role identifies who produced a conversation turn
type Role string

const (
	// RoleUser marks content submitted by the user
	RoleUser Role = "user"

	// RoleBot marks content produced by the bot
	RoleBot Role = "model"
)

// Part is one typed piece of inbound or stored content.
// Implementations: Text, Image, Audio.
type Part interface {
	isPart()
}

// Text is a plain text content part
type Text string

// Image is an image content part with raw bytes and MIME type
type Image struct {
	MIME string
	Data []byte
}

// Audio is an audio content part with raw bytes and MIME type
type Audio struct {
	MIME string
	Data []byte
}

func (Text) isPart()  {}
func (Image) isPart() {}
func (Audio) isPart() {}

// Turn represents one exchange unit in a conversation buffer
type Turn struct {
	Role  Role
	Parts []Part
}

// UserTurn builds a user-side turn from content parts
func UserTurn(parts ...Part) Turn {
	return Turn{Role: RoleUser, Parts: parts}
}

// BotTurn builds a bot-side turn from reply text
func BotTurn(text string) Turn {
	return Turn{Role: RoleBot, Parts: []Part{Text(text)}}
}

// ActionKind represents the kind of outbound action produced by the reply generator
type ActionKind int

const (
	// ActionNone means there was nothing to do (empty inbound content)
	ActionNone ActionKind = iota

	// ActionSendText delivers a text reply to the user
	ActionSendText

	// ActionGenerateImage requests image rendering for a prompt
	ActionGenerateImage

	// ActionFail reports a failed generation attempt to the user
	ActionFail
)

// Action is the outcome of handling one inbound message
type Action struct {
	Kind   ActionKind
	Text   string // reply text, placeholder or failure notice
	Prompt string // image prompt, set only for ActionGenerateImage
}

// JournalEntry is one immutable activity log record.
// Field names match the on-disk JSON-lines format.
type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Username  string    `json:"username,omitempty"`
	Message   string    `json:"message"`
}

// BotConfig represents bot configuration
type BotConfig struct {
	// Telegram settings
	TelegramToken string
	AdminID       int64

	// Webhook settings
	WebhookURL    string
	WebhookSecret string
	Port          int

	// Gemini API settings
	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout int

	// Image provider settings
	BananaAPIKey   string
	BananaModelKey string

	// App settings
	Timezone    string
	LogLevel    string
	Environment string
	DataDir     string

	// Conversation and report limits
	HistorySize      int
	ReportDailyLimit int
}

// IsAdmin checks if the given user ID is the configured administrator
func (c *BotConfig) IsAdmin(userID int64) bool {
	return userID == c.AdminID
}
