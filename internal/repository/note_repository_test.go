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

func noteRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"note_id", "faculty_id", "student_id", "milestone_id", "stage_id", "task_id", "subtask_id", "note", "created_at",
	})
}

func TestNoteRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	studentID := "20240001"
	milestoneID := int64(3)
	mock.ExpectQuery("INSERT INTO faculty_notes").
		WithArgs("1234567", studentID, milestoneID, nil, nil, nil, "Needs a stronger baseline", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"note_id"}).AddRow(42))

	n := &models.FacultyNote{
		FacultyID:   "1234567",
		StudentID:   &studentID,
		MilestoneID: &milestoneID,
		Note:        "Needs a stronger baseline",
	}
	require.NoError(t, repo.Create(context.Background(), n))
	assert.Equal(t, int64(42), n.NoteID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM faculty_notes WHERE note_id").
		WithArgs(int64(42)).
		WillReturnRows(noteRows().AddRow(42, "1234567", "20240001", 3, nil, nil, nil, "Needs a stronger baseline", now))

	note, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "1234567", note.FacultyID)
	require.NotNil(t, note.MilestoneID)
	assert.Equal(t, int64(3), *note.MilestoneID)
	assert.Nil(t, note.StageID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryListByStudentOrdered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM faculty_notes WHERE student_id = \\$1 ORDER BY note_id ASC").
		WithArgs("20240001").
		WillReturnRows(noteRows().
			AddRow(42, "1234567", "20240001", 3, nil, nil, nil, "Needs a stronger baseline", now).
			AddRow(43, "7654321", "20240001", nil, nil, nil, nil, "Discussed timeline", now))

	notes, err := repo.ListByStudent(context.Background(), "20240001")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, int64(42), notes[0].NoteID)
	assert.Nil(t, notes[1].MilestoneID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	mock.ExpectExec("DELETE FROM faculty_notes WHERE note_id").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}
