package service

import (
	"errors"
	"testing"

	"edu_course_backend/internal/model"
	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/util"
)

func TestGetCourseProgress_EmptyCourseIsZero(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressServiceForTest(db)

	user := seedUser(t, db, "vera", 0)
	course := seedCourse(t, db, "空课程", 0, true)

	p, err := svc.GetCourseProgress(user.ID, course.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.TotalItems != 0 || p.CompletedItems != 0 || p.Percentage != 0 {
		t.Fatalf("empty course must report zero progress: %+v", p)
	}
}

func TestGetCourseProgress_CountsLessonsAndAttemptedQuizzes(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressServiceForTest(db)
	progressRepo := repository.NewLessonProgressRepository(db)

	user := seedUser(t, db, "walt", 0)
	course := seedCourse(t, db, "课程", 0, true)

	l1 := seedLesson(t, db, course.ID, "L1", 1, true)
	seedLesson(t, db, course.ID, "L2", 2, true)
	quiz := seedQuiz(t, db, course.ID, "Q1", 3, 3, true)
	seedQuiz(t, db, course.ID, "Q2", 4, 3, true)

	if err := progressRepo.Complete(user.ID, l1.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}

	attempt := &model.QuizAttempt{StudentID: user.ID, QuizID: quiz.ID, AttemptNumber: 1, Score: 0, TotalPoints: 10}
	if err := db.Create(attempt).Error; err != nil {
		t.Fatalf("seed attempt: %v", err)
	}

	p, err := svc.GetCourseProgress(user.ID, course.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.TotalItems != 4 || p.CompletedItems != 2 || p.Percentage != 50 {
		t.Fatalf("expected 2/4 = 50%%, got %+v", p)
	}
}

func TestGetCourseProgress_LessonCompletionIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressServiceForTest(db)
	progressRepo := repository.NewLessonProgressRepository(db)

	user := seedUser(t, db, "xena", 0)
	course := seedCourse(t, db, "课程", 0, true)
	lesson := seedLesson(t, db, course.ID, "L1", 1, true)

	for i := 0; i < 3; i++ {
		if err := progressRepo.Complete(user.ID, lesson.ID); err != nil {
			t.Fatalf("complete %d: %v", i, err)
		}
	}

	p, err := svc.GetCourseProgress(user.ID, course.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.CompletedItems != 1 || p.Percentage != 100 {
		t.Fatalf("repeated completion must count once: %+v", p)
	}
}

func TestGetCourseProgress_ZeroScoreAttemptStillCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressServiceForTest(db)

	user := seedUser(t, db, "yuri", 0)
	course := seedCourse(t, db, "课程", 0, true)
	quiz := seedQuiz(t, db, course.ID, "Q", 1, 3, true)

	attempt := &model.QuizAttempt{StudentID: user.ID, QuizID: quiz.ID, AttemptNumber: 1, Score: 0, TotalPoints: 10}
	db.Create(attempt)

	p, err := svc.GetCourseProgress(user.ID, course.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.CompletedItems != 1 || p.Percentage != 100 {
		t.Fatalf("zero-score attempt must count as attempted: %+v", p)
	}
}

func TestGetCourseProgress_IgnoresUnpublishedContent(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressServiceForTest(db)
	progressRepo := repository.NewLessonProgressRepository(db)

	user := seedUser(t, db, "zack", 0)
	course := seedCourse(t, db, "课程", 0, true)

	published := seedLesson(t, db, course.ID, "L1", 1, true)
	draft := seedLesson(t, db, course.ID, "草稿", 2, false)

	progressRepo.Complete(user.ID, published.ID)
	progressRepo.Complete(user.ID, draft.ID)

	p, err := svc.GetCourseProgress(user.ID, course.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.TotalItems != 1 || p.CompletedItems != 1 || p.Percentage != 100 {
		t.Fatalf("draft content must not affect progress: %+v", p)
	}
}

func TestGetCourseProgress_UnknownCourse(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressServiceForTest(db)

	_, err := svc.GetCourseProgress(1, 999)
	if !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}
