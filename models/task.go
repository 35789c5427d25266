package models

// Priority levels for a task.
const (
	PriorityLow    = 0
	PriorityMedium = 1
	PriorityHigh   = 2
)

// DueDateFormat is the canonical due date layout, stored and rendered verbatim.
const DueDateFormat = "2006-01-02 15:04:05"

// Task represents a to-do item with a many-to-one relation to User via UserID.
// Description and DueDate are nullable in DB; pointers distinguish null vs zero.
// DueDate holds a `YYYY-MM-DD HH:MM:SS` string, validated before it is written.
// UserID never changes after creation and is not part of the wire format.
type Task struct {
	ID          int64   `db:"id" json:"id"`
	UserID      int64   `db:"user_id" json:"-"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	Priority    int     `db:"priority" json:"priority"`
	DueDate     *string `db:"due_date" json:"due_date"`
	Completed   bool    `db:"completed" json:"completed"`
}

// ValidPriority reports whether p is one of the defined priority levels.
func ValidPriority(p int) bool {
	return p >= PriorityLow && p <= PriorityHigh
}
