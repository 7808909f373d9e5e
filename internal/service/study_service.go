package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Common study surface errors.
var (
	ErrNoteNotFound = errors.New("note not found")
	ErrNotNoteOwner = errors.New("note belongs to another user")
)

// StudyService handles notes and bookmarks. Both feed the unlock engine.
type StudyService struct {
	noteRepo     *repository.NoteRepository
	bookmarkRepo *repository.BookmarkRepository
	courseRepo   *repository.CourseRepository
	achievements *AchievementService
	log          zerolog.Logger
}

// NewStudyService creates a new StudyService.
func NewStudyService(
	noteRepo *repository.NoteRepository,
	bookmarkRepo *repository.BookmarkRepository,
	courseRepo *repository.CourseRepository,
	achievements *AchievementService,
	log zerolog.Logger,
) *StudyService {
	return &StudyService{
		noteRepo:     noteRepo,
		bookmarkRepo: bookmarkRepo,
		courseRepo:   courseRepo,
		achievements: achievements,
		log:          log.With().Str("component", "study_service").Logger(),
	}
}

// CreateNote attaches a note to a lesson and runs the unlock engine.
func (s *StudyService) CreateNote(ctx context.Context, userID int, lessonID uuid.UUID, req *model.CreateNoteRequest) (*model.Note, []model.UnlockedAchievement, error) {
	lesson, err := s.courseRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, nil, ErrLessonNotFound
	}

	note := &model.Note{
		UserID:   userID,
		LessonID: lessonID,
		Body:     req.Body,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, nil, err
	}

	unlocked := s.achievements.CheckAndUnlock(ctx, userID, model.EventNoteCreated, &model.EventContext{
		LessonID: &lesson.ID,
	})
	return note, unlocked, nil
}

// ListNotes retrieves the caller's notes on a lesson.
func (s *StudyService) ListNotes(ctx context.Context, userID int, lessonID uuid.UUID) ([]model.Note, error) {
	return s.noteRepo.ListByUserAndLesson(ctx, userID, lessonID)
}

// UpdateNote rewrites a note's body. Only the author may edit.
func (s *StudyService) UpdateNote(ctx context.Context, userID int, noteID uuid.UUID, req *model.UpdateNoteRequest) (*model.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, ErrNoteNotFound
	}
	if note.UserID != userID {
		return nil, ErrNotNoteOwner
	}

	note.Body = req.Body
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note. Only the author may delete.
func (s *StudyService) DeleteNote(ctx context.Context, userID int, noteID uuid.UUID) error {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return ErrNoteNotFound
	}
	if note.UserID != userID {
		return ErrNotNoteOwner
	}
	return s.noteRepo.Delete(ctx, noteID)
}

// AddBookmark bookmarks a lesson. Re-bookmarking is a no-op and does not
// re-fire the event.
func (s *StudyService) AddBookmark(ctx context.Context, userID int, lessonID uuid.UUID) ([]model.UnlockedAchievement, error) {
	lesson, err := s.courseRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, ErrLessonNotFound
	}

	created, err := s.bookmarkRepo.Create(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}

	return s.achievements.CheckAndUnlock(ctx, userID, model.EventBookmarkCreated, &model.EventContext{
		LessonID: &lesson.ID,
	}), nil
}

// ListBookmarks retrieves the caller's bookmarks.
func (s *StudyService) ListBookmarks(ctx context.Context, userID int) ([]model.Bookmark, error) {
	return s.bookmarkRepo.ListByUser(ctx, userID)
}

// RemoveBookmark deletes a bookmark.
func (s *StudyService) RemoveBookmark(ctx context.Context, userID int, lessonID uuid.UUID) error {
	return s.bookmarkRepo.Delete(ctx, userID, lessonID)
}
