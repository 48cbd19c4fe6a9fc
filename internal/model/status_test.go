package model_test

import (
	"testing"

	"collabtask/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]model.Status{
		"To Do":       model.StatusToDo,
		"todo":        model.StatusToDo,
		"On going":    model.StatusToDo,
		"Not Started": model.StatusToDo,
		"In Progress": model.StatusInProgress,
		"in_progress": model.StatusInProgress,
		"DONE":        model.StatusDone,
	}
	for in, want := range cases {
		got, ok := model.ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "Blocked", "finished"} {
		_, ok := model.ParseStatus(in)
		assert.False(t, ok, in)
	}
}

func TestStatus_Move(t *testing.T) {
	next, ok := model.StatusToDo.Move(1)
	assert.True(t, ok)
	assert.Equal(t, model.StatusInProgress, next)

	next, ok = model.StatusInProgress.Move(1)
	assert.True(t, ok)
	assert.Equal(t, model.StatusDone, next)

	prev, ok := model.StatusDone.Move(-1)
	assert.True(t, ok)
	assert.Equal(t, model.StatusInProgress, prev)

	_, ok = model.StatusDone.Move(1)
	assert.False(t, ok)
	_, ok = model.StatusToDo.Move(-1)
	assert.False(t, ok)
	_, ok = model.StatusToDo.Move(2)
	assert.False(t, ok)
}

func TestParsePriority(t *testing.T) {
	p, ok := model.ParsePriority("high")
	assert.True(t, ok)
	assert.Equal(t, model.PriorityHigh, p)

	_, ok = model.ParsePriority("urgent")
	assert.False(t, ok)
}
