package service

import (
	"crypto/rand"
	"errors"
	"math/big"

	"edu_course_backend/internal/model"
	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/util"

	"gorm.io/gorm"
)

const maxGenerateRetries = 5

// RedemptionCodeService 特权批量生成一次性兑换码。
// 唯一性靠"生成-插入-撞唯一索引就重新生成"保证。
type RedemptionCodeService struct {
	CodeRepo   *repository.RedemptionCodeRepository
	CourseRepo *repository.CourseRepository
}

func NewRedemptionCodeService(codeRepo *repository.RedemptionCodeRepository, courseRepo *repository.CourseRepository) *RedemptionCodeService {
	return &RedemptionCodeService{CodeRepo: codeRepo, CourseRepo: courseRepo}
}

func (s *RedemptionCodeService) GenerateCodes(creatorID, courseID uint, count int) ([]model.RedemptionCode, error) {
	if count <= 0 || count > 1000 {
		return nil, util.ErrInvalidAmount
	}

	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	codes := make([]model.RedemptionCode, 0, count)
	for i := 0; i < count; i++ {
		var created *model.RedemptionCode
		var err error
		for retry := 0; retry < maxGenerateRetries; retry++ {
			candidate := &model.RedemptionCode{
				Code:      randomCode(),
				CourseID:  courseID,
				CreatorID: creatorID,
			}
			err = s.CodeRepo.Create(candidate)
			if err == nil {
				created = candidate
				break
			}
			if !util.IsDuplicateKey(err) {
				return nil, err
			}
		}
		if created == nil {
			return nil, err
		}
		codes = append(codes, *created)
	}

	return codes, nil
}

func (s *RedemptionCodeService) ListCodes(courseID uint, page, limit int) ([]model.RedemptionCode, int64, error) {
	return s.CodeRepo.ListByCourse(courseID, page, limit)
}

func randomCode() string {
	b := make([]byte, util.CodeLength)
	max := big.NewInt(int64(len(util.CodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 不可用时退回固定字符，插入会撞唯一索引并重试
			b[i] = util.CodeAlphabet[0]
			continue
		}
		b[i] = util.CodeAlphabet[n.Int64()]
	}
	return string(b)
}
