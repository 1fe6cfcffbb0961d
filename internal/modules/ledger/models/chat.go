package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatRole is the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one stored turn of a conversation
type ChatMessage struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_chat_user_conversation,priority:1" json:"user_id"`
	ConversationID string         `gorm:"type:varchar(64);not null;index:idx_chat_user_conversation,priority:2" json:"conversation_id"`
	Role           ChatRole       `gorm:"type:varchar(20);not null" json:"role"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Metadata       datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// AssistantMetadata is stored on assistant messages
type AssistantMetadata struct {
	Model          string  `json:"model"`
	ProcessingTime int64   `json:"processingTime"`
	Confidence     float64 `json:"confidence"`
	ExtractedData  any     `json:"extractedData,omitempty"`
}

// ConversationSummary is the latest message of one conversation
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	LastMessage    string    `json:"last_message"`
	LastRole       ChatRole  `json:"last_role"`
	MessageCount   int64     `json:"message_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AIUsage records one model call for cost and reliability tracking
type AIUsage struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	MessageType    string    `gorm:"type:varchar(30);not null" json:"message_type"` // chat, extraction, classification, stock
	TokensUsed     int       `gorm:"not null;default:0" json:"tokens_used"`
	Model          string    `gorm:"type:varchar(100)" json:"model"`
	ResponseTimeMs int64     `gorm:"not null;default:0" json:"response_time_ms"`
	Success        bool      `gorm:"not null;default:true" json:"success"`
	ErrorMessage   *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AIUsage) TableName() string {
	return "ai_usages"
}

func (u *AIUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// AIUsageStat is one row of the per-model usage breakdown
type AIUsageStat struct {
	Model             string  `json:"model"`
	Requests          int64   `json:"requests"`
	Failures          int64   `json:"failures"`
	TokensUsed        int64   `json:"tokens_used"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
}
