package repository_test

import (
	"context"
	"testing"
	"time"

	"collabtask/internal/model"
	"collabtask/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subtaskColumns = []string{
	"id", "task_id", "title", "description", "status",
	"priority", "due_date", "assigned_to", "created_at", "updated_at",
}

func TestSubtaskRepository_ListByTask(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	subtaskRepo := repository.NewSubtaskRepository(gormDB)

	taskID := uuid.New()
	assignee := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM "subtasks" WHERE task_id = \$1 ORDER BY created_at, id`).
		WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows(subtaskColumns).
			AddRow(uuid.NewString(), taskID.String(), "write tests", "", "To Do", "Medium", nil, nil, now, now).
			AddRow(uuid.NewString(), taskID.String(), "tag release", "", "Done", "High", now, assignee.String(), now, now))

	subtasks, err := subtaskRepo.ListByTask(context.Background(), taskID)

	require.NoError(t, err)
	require.Len(t, subtasks, 2)
	assert.Equal(t, model.StatusDone, subtasks[1].Status)
	require.NotNil(t, subtasks[1].AssignedTo)
	assert.Equal(t, assignee, *subtasks[1].AssignedTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubtaskRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	subtaskRepo := repository.NewSubtaskRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "subtasks"`).
		WillReturnRows(sqlmock.NewRows(subtaskColumns))

	_, err := subtaskRepo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrSubtaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubtaskRepository_Update_UnknownAssignee(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	subtaskRepo := repository.NewSubtaskRepository(gormDB)
	ghost := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subtasks" SET`).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	err := subtaskRepo.Update(context.Background(), &model.Subtask{ID: uuid.New(), Title: "x", AssignedTo: &ghost})

	assert.ErrorIs(t, err, repository.ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubtaskRepository_Delete_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	subtaskRepo := repository.NewSubtaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "subtasks" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := subtaskRepo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrSubtaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
