package entity

import "time"

// Message mensaje directo entre dos usuarios. Solo el destinatario lo modifica (ReadAt).
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Content     string
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// RecordID identificador usado por el estado local sincronizado.
func (m Message) RecordID() string { return m.ID }

// Involves informa si userID es emisor o destinatario.
func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// IsSelf mensaje enviado a uno mismo.
func (m Message) IsSelf() bool { return m.SenderID == m.RecipientID }

// UnreadFor informa si el mensaje está pendiente de lectura para userID.
func (m Message) UnreadFor(userID string) bool {
	return m.RecipientID == userID && m.ReadAt == nil
}

// OtherParty devuelve el interlocutor respecto de userID.
func (m Message) OtherParty(userID string) string {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}
