package notice

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level 消息级别
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Kind 弹窗类型
type Kind string

const (
	KindLoginExpired  Kind = "login-expired"
	KindAccountKicked Kind = "account-kicked"
	KindErrorModal    Kind = "error-modal"
)

// MaxPending 每个会话最多保留的未读条数，超出丢弃最早的
const MaxPending = 100

// Message 轻提示
type Message struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Dialog 需要用户确认的弹窗
type Dialog struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Redirect  string    `json:"redirect,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notices 一次拉取的结果
type Notices struct {
	Messages []Message `json:"messages"`
	Dialogs  []Dialog  `json:"dialogs"`
}

// Queue 单个会话的消息队列，由浏览器轮询取走
type Queue struct {
	mu       sync.Mutex
	messages []Message
	dialogs  []Dialog
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) push(level Level, content string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, Message{
		ID:        uuid.NewString(),
		Level:     level,
		Content:   content,
		CreatedAt: time.Now(),
	})
	if n := len(q.messages) - MaxPending; n > 0 {
		q.messages = append([]Message(nil), q.messages[n:]...)
	}
}

// Success 成功提示
func (q *Queue) Success(content string) { q.push(LevelSuccess, content) }

// Error 错误提示
func (q *Queue) Error(content string) { q.push(LevelError, content) }

// Warning 警告提示
func (q *Queue) Warning(content string) { q.push(LevelWarning, content) }

// Info 普通提示
func (q *Queue) Info(content string) { q.push(LevelInfo, content) }

// Dialog 追加弹窗，返回弹窗 id
func (q *Queue) Dialog(d Dialog) string {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dialogs = append(q.dialogs, d)
	if n := len(q.dialogs) - MaxPending; n > 0 {
		q.dialogs = append([]Dialog(nil), q.dialogs[n:]...)
	}
	return d.ID
}

// Drain 取走全部未读
func (q *Queue) Drain() Notices {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := Notices{
		Messages: q.messages,
		Dialogs:  q.dialogs,
	}
	if out.Messages == nil {
		out.Messages = []Message{}
	}
	if out.Dialogs == nil {
		out.Dialogs = []Dialog{}
	}
	q.messages = nil
	q.dialogs = nil
	return out
}

// Pending 未读条数
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages) + len(q.dialogs)
}
