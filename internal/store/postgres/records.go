package postgres

import (
	"time"

	"github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/internal/model/user"
)

// Record types mirror the persisted layout: users(username unique),
// chats(kind CHECK-constrained), messages(chat_id FK with ON DELETE
// CASCADE). These three constraints are the only integrity guarantees
// below the HTTP layer.

type userRecord struct {
	ID        int64  `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:50;not null"`
	Password  string `gorm:"size:100;not null"`
	CreatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toDomain() user.User {
	return user.User{
		ID:        r.ID,
		Username:  r.Username,
		Password:  r.Password,
		CreatedAt: r.CreatedAt,
	}
}

type chatRecord struct {
	ID        string `gorm:"primaryKey;size:100"`
	Name      string `gorm:"size:100;not null"`
	Kind      string `gorm:"size:20;not null;check:chk_chats_kind,kind IN ('channel','group','private')"`
	CreatedBy string `gorm:"size:50;not null"`
	CreatedAt time.Time
}

func (chatRecord) TableName() string { return "chats" }

func (r chatRecord) toDomain() chat.Chat {
	return chat.Chat{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      chat.Kind(r.Kind),
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

type messageRecord struct {
	ID        int64      `gorm:"primaryKey"`
	ChatID    string     `gorm:"size:100;not null;index"`
	Chat      chatRecord `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Sender    string     `gorm:"size:50;not null"`
	Text      string     `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (messageRecord) TableName() string { return "messages" }

func (r messageRecord) toDomain() chat.Message {
	return chat.Message{
		ID:        r.ID,
		ChatID:    r.ChatID,
		Sender:    r.Sender,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}
