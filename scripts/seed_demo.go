// 本地开发演示数据脚本
//
// 创建一个管理员、一个教师、一门已发布课程（含课时/测验/兑换码），
// 方便前端联调。只在空库上运行。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"log"

	"edu_course_backend/internal/config"
	"edu_course_backend/internal/model"
	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/service"
	"edu_course_backend/pkg/database"
	"edu_course_backend/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	if count > 0 {
		log.Fatal("数据库非空，跳过演示数据")
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	admin := &model.User{Name: "管理员", Email: "admin@example.com", Password: string(hash), Role: model.Admin}
	teacher := &model.User{Name: "示例教师", Email: "teacher@example.com", Password: string(hash), Role: model.Teacher}
	student := &model.User{Name: "示例学生", Email: "student@example.com", Password: string(hash), Role: model.Student, Balance: 200}
	for _, u := range []*model.User{admin, teacher, student} {
		if err := db.Create(u).Error; err != nil {
			log.Fatalf("创建用户失败: %v", err)
		}
	}

	course := &model.Course{
		Title:       "Go 后端入门",
		Description: "示例课程",
		Price:       99,
		IsPublished: true,
		CreatorID:   teacher.ID,
	}
	if err := db.Create(course).Error; err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	lessons := []model.Lesson{
		{CourseID: course.ID, Title: "环境搭建", Position: 1, IsPublished: true},
		{CourseID: course.ID, Title: "HTTP 服务", Position: 3, IsPublished: true},
	}
	for i := range lessons {
		if err := db.Create(&lessons[i]).Error; err != nil {
			log.Fatalf("创建课时失败: %v", err)
		}
	}

	quiz := &model.Quiz{CourseID: course.ID, Title: "入门测验", MaxAttempts: 3, Position: 2, IsPublished: true}
	if err := db.Create(quiz).Error; err != nil {
		log.Fatalf("创建测验失败: %v", err)
	}
	questions := []model.Question{
		{QuizID: quiz.ID, Type: model.MultipleChoice, Content: "Go 的并发原语是？",
			Options: service.StringifyOptions([]string{"goroutine", "thread", "process"}),
			CorrectAnswer: "goroutine", Points: 10, Position: 1},
		{QuizID: quiz.ID, Type: model.TrueFalse, Content: "Go 有异常机制 try/catch", CorrectAnswer: "false", Points: 10, Position: 2},
	}
	for i := range questions {
		if err := db.Create(&questions[i]).Error; err != nil {
			log.Fatalf("创建题目失败: %v", err)
		}
	}

	codeService := service.NewRedemptionCodeService(
		repository.NewRedemptionCodeRepository(db),
		repository.NewCourseRepository(db),
	)
	codes, err := codeService.GenerateCodes(teacher.ID, course.ID, 5)
	if err != nil {
		log.Fatalf("生成兑换码失败: %v", err)
	}

	log.Printf("演示数据就绪: course=%d quiz=%d codes=%d", course.ID, quiz.ID, len(codes))
	for _, c := range codes {
		log.Printf("兑换码: %s", c.Code)
	}
}
