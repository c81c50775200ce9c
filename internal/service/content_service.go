package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edu_course_backend/internal/model"
	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/util"
	"edu_course_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sequenceCacheTTL = 10 * time.Minute

// ContentService 维护课程内容的全局顺序：已发布课时与测验按 position
// 归并成一条序列，position 相同时课时排在测验前（稳定，可重复）。
// 序列用 Redis 缓存，重排序或发布变更时失效。
type ContentService struct {
	CourseRepo *repository.CourseRepository
	LessonRepo *repository.LessonRepository
	QuizRepo   *repository.QuizRepository
	Redis      *redis.Client
	DB         *gorm.DB
}

func NewContentService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	quizRepo *repository.QuizRepository,
	rdb *redis.Client,
	db *gorm.DB,
) *ContentService {
	return &ContentService{
		CourseRepo: courseRepo,
		LessonRepo: lessonRepo,
		QuizRepo:   quizRepo,
		Redis:      rdb,
		DB:         db,
	}
}

func sequenceCacheKey(courseID uint) string {
	return fmt.Sprintf("course:%d:sequence", courseID)
}

// CourseSequence 返回课程的有序内容序列
func (s *ContentService) CourseSequence(ctx context.Context, courseID uint) ([]model.ContentItem, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, sequenceCacheKey(courseID)).Result(); err == nil {
			var cached []model.ContentItem
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached, nil
			}
		}
	}

	items, err := s.buildSequence(courseID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(items); err == nil {
			if err := s.Redis.Set(ctx, sequenceCacheKey(courseID), data, sequenceCacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache course sequence",
					zap.Uint("courseId", courseID), zap.Error(err))
			}
		}
	}

	return items, nil
}

func (s *ContentService) buildSequence(courseID uint) ([]model.ContentItem, error) {
	lessons, err := s.LessonRepo.ListPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.QuizRepo.ListPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}

	return MergeContent(lessons, quizzes), nil
}

// MergeContent 双指针归并两条各自有序的 position 序列。
// position 相等时课时先出，两种内容各自保持输入顺序（稳定归并）。
func MergeContent(lessons []model.Lesson, quizzes []model.Quiz) []model.ContentItem {
	items := make([]model.ContentItem, 0, len(lessons)+len(quizzes))
	li, qi := 0, 0

	for li < len(lessons) && qi < len(quizzes) {
		if lessons[li].Position <= quizzes[qi].Position {
			items = append(items, lessonItem(lessons[li]))
			li++
		} else {
			items = append(items, quizItem(quizzes[qi]))
			qi++
		}
	}
	for ; li < len(lessons); li++ {
		items = append(items, lessonItem(lessons[li]))
	}
	for ; qi < len(quizzes); qi++ {
		items = append(items, quizItem(quizzes[qi]))
	}

	return items
}

func lessonItem(l model.Lesson) model.ContentItem {
	return model.ContentItem{ID: l.ID, Kind: model.KindLesson, Title: l.Title, Position: l.Position}
}

func quizItem(q model.Quiz) model.ContentItem {
	return model.ContentItem{ID: q.ID, Kind: model.KindQuiz, Title: q.Title, Position: q.Position}
}

type Neighbors struct {
	Current  model.ContentItem  `json:"current"`
	Previous *model.ContentItem `json:"previous,omitempty"`
	Next     *model.ContentItem `json:"next,omitempty"`
}

// ItemNeighbors 回答 "X 的上一个/下一个是什么"。边界处为 null。
func (s *ContentService) ItemNeighbors(ctx context.Context, courseID, itemID uint, kind model.ContentKind) (*Neighbors, error) {
	items, err := s.CourseSequence(ctx, courseID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range items {
		if item.ID == itemID && item.Kind == kind {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, util.ErrContentItemNotFound
	}

	n := &Neighbors{Current: items[idx]}
	if idx > 0 {
		n.Previous = &items[idx-1]
	}
	if idx < len(items)-1 {
		n.Next = &items[idx+1]
	}
	return n, nil
}

type ReorderItem struct {
	ID          uint              `json:"id" binding:"required"`
	Kind        model.ContentKind `json:"kind" binding:"required"`
	NewPosition int               `json:"newPosition"`
}

type ReorderResult struct {
	ID    uint              `json:"id"`
	Kind  model.ContentKind `json:"kind"`
	OK    bool              `json:"ok"`
	Error string            `json:"error,omitempty"`
}

// Reorder 批量调整 position。默认整批一个事务，任意一项失败全部回滚；
// bestEffort=true 保留旧行为：逐项独立更新，允许部分生效，结果逐项返回。
func (s *ContentService) Reorder(ctx context.Context, courseID uint, items []ReorderItem, bestEffort bool) ([]ReorderResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	defer s.InvalidateSequence(ctx, courseID)

	if bestEffort {
		results := make([]ReorderResult, 0, len(items))
		for _, item := range items {
			err := s.applyPosition(s.DB, courseID, item)
			r := ReorderResult{ID: item.ID, Kind: item.Kind, OK: err == nil}
			if err != nil {
				r.Error = err.Error()
			}
			results = append(results, r)
		}
		return results, nil
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := s.applyPosition(tx, courseID, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrContentItemNotFound
		}
		return nil, err
	}

	results := make([]ReorderResult, len(items))
	for i, item := range items {
		results[i] = ReorderResult{ID: item.ID, Kind: item.Kind, OK: true}
	}
	return results, nil
}

func (s *ContentService) applyPosition(tx *gorm.DB, courseID uint, item ReorderItem) error {
	switch item.Kind {
	case model.KindLesson:
		return s.LessonRepo.UpdatePosition(tx, courseID, item.ID, item.NewPosition)
	case model.KindQuiz:
		return s.QuizRepo.UpdatePosition(tx, courseID, item.ID, item.NewPosition)
	default:
		return util.ErrContentItemNotFound
	}
}

// InvalidateSequence 内容结构变化后清掉缓存的序列
func (s *ContentService) InvalidateSequence(ctx context.Context, courseID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, sequenceCacheKey(courseID)).Err(); err != nil {
		logger.Log.Warn("failed to invalidate course sequence cache",
			zap.Uint("courseId", courseID), zap.Error(err))
	}
}
