package model

import "strings"

// Status is the Kanban column a task sits in.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// DefaultStatus is assigned to every newly created task.
const DefaultStatus = StatusToDo

// BoardColumns lists the statuses in board order.
var BoardColumns = []Status{StatusToDo, StatusInProgress, StatusDone}

// Older client builds used "On going" and "Not Started" for the first column.
var statusAliases = map[string]Status{
	"todo":       StatusToDo,
	"ongoing":    StatusToDo,
	"notstarted": StatusToDo,
	"inprogress": StatusInProgress,
	"done":       StatusDone,
}

// ParseStatus maps a client-supplied status onto the closed set.
func ParseStatus(s string) (Status, bool) {
	st, ok := statusAliases[normalize(s)]
	return st, ok
}

// Move returns the status one column away in the given direction (+1 or -1).
func (s Status) Move(direction int) (Status, bool) {
	if direction != 1 && direction != -1 {
		return s, false
	}
	for i, col := range BoardColumns {
		if col != s {
			continue
		}
		next := i + direction
		if next < 0 || next >= len(BoardColumns) {
			return s, false
		}
		return BoardColumns[next], true
	}
	return s, false
}

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

const DefaultPriority = PriorityMedium

func ParsePriority(s string) (Priority, bool) {
	switch normalize(s) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	}
	return "", false
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
