package service

import (
	"context"
	"errors"
	"testing"

	"edu_course_backend/internal/model"
	"edu_course_backend/internal/util"
)

func TestMergeContent_InterleavesByPosition(t *testing.T) {
	lessons := []model.Lesson{
		{BaseModel: model.BaseModel{ID: 1}, Title: "L1", Position: 1},
		{BaseModel: model.BaseModel{ID: 2}, Title: "L2", Position: 3},
	}
	quizzes := []model.Quiz{
		{BaseModel: model.BaseModel{ID: 10}, Title: "Q1", Position: 2},
		{BaseModel: model.BaseModel{ID: 11}, Title: "Q2", Position: 4},
	}

	items := MergeContent(lessons, quizzes)
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}

	wantKinds := []model.ContentKind{model.KindLesson, model.KindQuiz, model.KindLesson, model.KindQuiz}
	wantIDs := []uint{1, 10, 2, 11}
	for i := range items {
		if items[i].Kind != wantKinds[i] || items[i].ID != wantIDs[i] {
			t.Fatalf("position %d: got %s/%d, want %s/%d", i, items[i].Kind, items[i].ID, wantKinds[i], wantIDs[i])
		}
	}
}

func TestMergeContent_TieGoesToLesson(t *testing.T) {
	lessons := []model.Lesson{{BaseModel: model.BaseModel{ID: 1}, Position: 5}}
	quizzes := []model.Quiz{{BaseModel: model.BaseModel{ID: 2}, Position: 5}}

	items := MergeContent(lessons, quizzes)
	if items[0].Kind != model.KindLesson || items[1].Kind != model.KindQuiz {
		t.Fatalf("lesson must come first on equal position: %+v", items)
	}

	// 稳定：重复归并结果一致
	again := MergeContent(lessons, quizzes)
	for i := range items {
		if items[i] != again[i] {
			t.Fatalf("merge not stable at %d: %+v vs %+v", i, items[i], again[i])
		}
	}
}

func TestCourseSequence_ExcludesUnpublished(t *testing.T) {
	db := newTestDB(t)
	svc := newContentServiceForTest(db)

	course := seedCourse(t, db, "课程", 0, true)
	seedLesson(t, db, course.ID, "已发布", 1, true)
	seedLesson(t, db, course.ID, "草稿", 2, false)
	seedQuiz(t, db, course.ID, "已发布测验", 3, 1, true)
	seedQuiz(t, db, course.ID, "草稿测验", 4, 1, false)

	items, err := svc.CourseSequence(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 published items, got %d: %+v", len(items), items)
	}
}

func TestCourseSequence_UnknownCourse(t *testing.T) {
	db := newTestDB(t)
	svc := newContentServiceForTest(db)

	_, err := svc.CourseSequence(context.Background(), 999)
	if !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestItemNeighbors_MiddleAndBoundaries(t *testing.T) {
	db := newTestDB(t)
	svc := newContentServiceForTest(db)

	course := seedCourse(t, db, "课程", 0, true)
	l1 := seedLesson(t, db, course.ID, "L1", 1, true)
	q1 := seedQuiz(t, db, course.ID, "Q1", 2, 1, true)
	l2 := seedLesson(t, db, course.ID, "L2", 3, true)

	ctx := context.Background()

	n, err := svc.ItemNeighbors(ctx, course.ID, l1.ID, model.KindLesson)
	if err != nil {
		t.Fatalf("neighbors of head: %v", err)
	}
	if n.Previous != nil {
		t.Fatalf("head must have nil previous: %+v", n.Previous)
	}
	if n.Next == nil || n.Next.ID != q1.ID || n.Next.Kind != model.KindQuiz {
		t.Fatalf("next of first lesson must be the quiz: %+v", n.Next)
	}

	n, err = svc.ItemNeighbors(ctx, course.ID, q1.ID, model.KindQuiz)
	if err != nil {
		t.Fatalf("neighbors of middle: %v", err)
	}
	if n.Previous == nil || n.Previous.ID != l1.ID || n.Next == nil || n.Next.ID != l2.ID {
		t.Fatalf("middle neighbors wrong: prev=%+v next=%+v", n.Previous, n.Next)
	}

	n, err = svc.ItemNeighbors(ctx, course.ID, l2.ID, model.KindLesson)
	if err != nil {
		t.Fatalf("neighbors of tail: %v", err)
	}
	if n.Next != nil {
		t.Fatalf("tail must have nil next: %+v", n.Next)
	}

	if _, err := svc.ItemNeighbors(ctx, course.ID, 12345, model.KindLesson); !errors.Is(err, util.ErrContentItemNotFound) {
		t.Fatalf("expected ErrContentItemNotFound, got %v", err)
	}
}

func TestReorder_AtomicRollbackOnBadItem(t *testing.T) {
	db := newTestDB(t)
	svc := newContentServiceForTest(db)

	course := seedCourse(t, db, "课程", 0, true)
	l1 := seedLesson(t, db, course.ID, "L1", 1, true)

	_, err := svc.Reorder(context.Background(), course.ID, []ReorderItem{
		{ID: l1.ID, Kind: model.KindLesson, NewPosition: 9},
		{ID: 777, Kind: model.KindQuiz, NewPosition: 10},
	}, false)
	if !errors.Is(err, util.ErrContentItemNotFound) {
		t.Fatalf("expected ErrContentItemNotFound, got %v", err)
	}

	var fresh model.Lesson
	db.First(&fresh, l1.ID)
	if fresh.Position != 1 {
		t.Fatalf("atomic reorder must roll back, position=%d", fresh.Position)
	}
}

func TestReorder_BestEffortAppliesValidItems(t *testing.T) {
	db := newTestDB(t)
	svc := newContentServiceForTest(db)

	course := seedCourse(t, db, "课程", 0, true)
	l1 := seedLesson(t, db, course.ID, "L1", 1, true)

	results, err := svc.Reorder(context.Background(), course.ID, []ReorderItem{
		{ID: l1.ID, Kind: model.KindLesson, NewPosition: 9},
		{ID: 777, Kind: model.KindQuiz, NewPosition: 10},
	}, true)
	if err != nil {
		t.Fatalf("best effort reorder: %v", err)
	}
	if len(results) != 2 || !results[0].OK || results[1].OK {
		t.Fatalf("unexpected per-item results: %+v", results)
	}

	var fresh model.Lesson
	db.First(&fresh, l1.ID)
	if fresh.Position != 9 {
		t.Fatalf("valid item must be applied, position=%d", fresh.Position)
	}
}

func TestReorder_ScopedToCourse(t *testing.T) {
	db := newTestDB(t)
	svc := newContentServiceForTest(db)

	courseA := seedCourse(t, db, "A", 0, true)
	courseB := seedCourse(t, db, "B", 0, true)
	foreign := seedLesson(t, db, courseB.ID, "他课的课时", 1, true)

	_, err := svc.Reorder(context.Background(), courseA.ID, []ReorderItem{
		{ID: foreign.ID, Kind: model.KindLesson, NewPosition: 5},
	}, false)
	if !errors.Is(err, util.ErrContentItemNotFound) {
		t.Fatalf("cross-course reorder must fail, got %v", err)
	}

	var fresh model.Lesson
	db.First(&fresh, foreign.ID)
	if fresh.Position != 1 {
		t.Fatalf("foreign lesson must be untouched, position=%d", fresh.Position)
	}
}
