package models

import (
	"errors"
	"time"
)

var ErrMessageNotFound = errors.New("message not found")

// SenderRole различает стороны переписки
type SenderRole string

const (
	RoleUser  SenderRole = "user"
	RoleAdmin SenderRole = "admin"
)

// Message: сообщение в треде (пользователь, админ);
// тред идентифицируется пользователем
type Message struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	SenderID   string     `json:"sender_id"`
	SenderRole SenderRole `json:"sender_role"`
	Text       string     `json:"message"`
	Read       bool       `json:"read"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type AdminSendMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}
