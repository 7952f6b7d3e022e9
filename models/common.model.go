package models

import (
	"time"
)

// APIError is the body of every failed API response.
type APIError struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse creates a standardized error response
func ErrorResponse(code, message, requestID string) APIError {
	return APIError{
		Error:     message,
		Code:      code,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}

// Event is a server to client frame on the realtime channel.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

const (
	EventNewMessage = "new-message"
	EventJoined     = "joined"
	EventError      = "error"
)

// NewMessagePayload is the data of a new-message event.
type NewMessagePayload struct {
	ConversationID uint     `json:"conversationId"`
	Msg            *Message `json:"msg"`
}

// ConversationSummary is one row of the caller's conversation list.
type ConversationSummary struct {
	ID            uint      `json:"id"`
	ListingID     *uint     `json:"listing_id"`
	ListingTitle  string    `json:"listing_title,omitempty"`
	ListingImage  string    `json:"listing_image,omitempty"`
	OtherUserID   uint      `json:"other_user_id"`
	OtherUserName string    `json:"other_user_name"`
	UpdatedAt     time.Time `json:"updated_at"`
}
