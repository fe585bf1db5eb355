package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/research-nest/researchnest-api/internal/models"
)

func stageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"stage_id", "milestone_id", "name", "status", "is_frozen",
		"frozen_by_faculty_id", "frozen_at", "created_at", "updated_at",
	})
}

func TestStageRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStageRepository(db)

	mock.ExpectQuery("INSERT INTO stages").
		WithArgs(int64(3), "Literature Review", models.StepLocked, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"stage_id"}).AddRow(10))

	s := &models.Stage{MilestoneID: 3, Name: "Literature Review", Status: models.StepLocked}
	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, int64(10), s.StageID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageRepositoryFindContextJoinsOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStageRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT st.stage_id, (.+) JOIN milestones m ON m.milestone_id = st.milestone_id").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"stage_id", "milestone_id", "name", "status", "is_frozen",
			"frozen_by_faculty_id", "frozen_at", "created_at", "updated_at",
			"student_id", "department",
		}).AddRow(10, 3, "Literature Review", "In Progress", false, nil, nil, now, now, "20240001", "Physics"))

	sc, err := repo.FindContext(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sc.MilestoneID)
	assert.Equal(t, "20240001", sc.StudentID)
	assert.Equal(t, "Physics", sc.Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageRepositoryListByMilestoneOrdered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStageRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM stages WHERE milestone_id = \\$1 ORDER BY created_at ASC").
		WithArgs(int64(3)).
		WillReturnRows(stageRows().
			AddRow(10, 3, "Literature Review", "Completed", false, nil, nil, now, now).
			AddRow(11, 3, "Experiments", "In Progress", false, nil, nil, now, now))

	list, err := repo.ListByMilestone(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(10), list[0].StageID)
	assert.Equal(t, models.StepCompleted, list[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStageRepository(db)

	mock.ExpectExec("UPDATE stages SET status").
		WithArgs(int64(10), models.StepInProgress, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 10, models.StepInProgress))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageRepositorySetFreezeWritesPair(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStageRepository(db)

	facultyID := "1234567"
	at := time.Now().UTC()
	mock.ExpectExec("UPDATE stages SET is_frozen").
		WithArgs(int64(10), true, facultyID, at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetFreeze(context.Background(), 10, &facultyID, &at))

	mock.ExpectExec("UPDATE stages SET is_frozen").
		WithArgs(int64(10), false, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetFreeze(context.Background(), 10, nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM subtasks WHERE task_id IN").
		WithArgs(int64(10)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM tasks WHERE stage_id").
		WithArgs(int64(10)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM stages WHERE stage_id").
		WithArgs(int64(10)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}
