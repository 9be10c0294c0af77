package api

import (
	"encoding/json"
	"time"

	"github.com/bzero-app/bzero/pkg/errcode"
)

// DataResponse is the backend's detail-endpoint success envelope
type DataResponse struct {
	Data json.RawMessage `json:"data"`
}

// ErrorResponse is the backend's error envelope
type ErrorResponse struct {
	Error errcode.Error `json:"error"`
}

// Pagination describes a list response window
type Pagination struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// User represents a B0 traveler profile
type User struct {
	UserID            string    `json:"user_id"`
	Email             string    `json:"email,omitempty"`
	Nickname          string    `json:"nickname"`
	ProfileEmoji      string    `json:"profile_emoji"`
	CurrentPoints     int       `json:"current_points"`
	IsProfileComplete bool      `json:"is_profile_complete"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ChatMessageSender is the display info embedded in room messages
type ChatMessageSender struct {
	UserID       string `json:"user_id"`
	Nickname     string `json:"nickname"`
	ProfileEmoji string `json:"profile_emoji"`
}

// ChatMessage is the wire shape of a group room message
type ChatMessage struct {
	MessageID   string             `json:"message_id"`
	RoomID      string             `json:"room_id"`
	UserID      string             `json:"user_id,omitempty"`
	Content     string             `json:"content"`
	CardID      string             `json:"card_id,omitempty"`
	MessageType string             `json:"message_type"`
	IsSystem    bool               `json:"is_system"`
	CreatedAt   time.Time          `json:"created_at"`
	Sender      *ChatMessageSender `json:"sender,omitempty"`
}

// DirectMessage is the wire shape of a 1:1 message
type DirectMessage struct {
	DMID       string    `json:"dm_id"`
	DMRoomID   string    `json:"dm_room_id"`
	FromUserID string    `json:"from_user_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// DMRoom represents a 1:1 conversation and its request lifecycle
type DMRoom struct {
	DMRoomID   string    `json:"dm_room_id"`
	RoomID     string    `json:"room_id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Status     string    `json:"status"` // pending | active | rejected | closed
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ConversationCard is a prompted conversation starter for a city
type ConversationCard struct {
	CardID   string `json:"card_id"`
	CityID   string `json:"city_id"`
	Question string `json:"question"`
}

// City represents a themed destination
type City struct {
	CityID            string    `json:"city_id"`
	Name              string    `json:"name"`
	Theme             string    `json:"theme"`
	Description       string    `json:"description,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	BaseCostPoints    int       `json:"base_cost_points"`
	BaseDurationHours int       `json:"base_duration_hours"`
	IsActive          bool      `json:"is_active"`
	DisplayOrder      int       `json:"display_order"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Airship represents a travel option; cost and duration scale the city base
type Airship struct {
	AirshipID      string    `json:"airship_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	CostFactor     float64   `json:"cost_factor"`
	DurationFactor float64   `json:"duration_factor"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CitySnapshot is the city info frozen onto a ticket at purchase time
type CitySnapshot struct {
	CityID      string `json:"city_id"`
	Name        string `json:"name"`
	Theme       string `json:"theme"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// AirshipSnapshot is the airship info frozen onto a ticket at purchase time
type AirshipSnapshot struct {
	AirshipID   string `json:"airship_id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// Ticket represents a purchased airship ticket
type Ticket struct {
	TicketID          string          `json:"ticket_id"`
	TicketNumber      string          `json:"ticket_number"`
	City              CitySnapshot    `json:"city"`
	Airship           AirshipSnapshot `json:"airship"`
	CostPoints        int             `json:"cost_points"`
	Status            string          `json:"status"` // boarding | completed | cancelled
	DepartureDatetime time.Time       `json:"departure_datetime"`
	ArrivalDatetime   time.Time       `json:"arrival_datetime"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Diary is a traveler's diary entry
type Diary struct {
	DiaryID   string    `json:"diary_id"`
	UserID    string    `json:"user_id"`
	CityID    string    `json:"city_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CityQuestion is one prompt of a city's questionnaire
type CityQuestion struct {
	QuestionID   string `json:"question_id"`
	CityID       string `json:"city_id"`
	Question     string `json:"question"`
	DisplayOrder int    `json:"display_order"`
}

// Questionnaire is a traveler's answer to a city question
type Questionnaire struct {
	QuestionnaireID string    `json:"questionnaire_id"`
	QuestionID      string    `json:"question_id"`
	UserID          string    `json:"user_id"`
	Answer          string    `json:"answer"`
	CreatedAt       time.Time `json:"created_at"`
}

// Notification is an in-app notification
type Notification struct {
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title"`
	Body           string    `json:"body,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// ===== Request types =====

// UpdateUserRequest updates the current user's profile
type UpdateUserRequest struct {
	Nickname     string `json:"nickname,omitempty"`
	ProfileEmoji string `json:"profile_emoji,omitempty"`
}

// PurchaseTicketRequest purchases an airship ticket
type PurchaseTicketRequest struct {
	CityID    string `json:"city_id"`
	AirshipID string `json:"airship_id"`
}

// CreateDiaryRequest creates a diary entry
type CreateDiaryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	CityID  string `json:"city_id,omitempty"`
}

// UpdateDiaryRequest updates a diary entry
type UpdateDiaryRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// CreateQuestionnaireRequest answers a city question
type CreateQuestionnaireRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// RequestDMRequest starts a 1:1 conversation request
type RequestDMRequest struct {
	ToUserID string `json:"to_user_id"`
}
