package database

import (
	"fmt"
	"log"

	"secaware_backend/internal/config"
	"secaware_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	SeedCurriculum(db)

	return db, nil
}

// Migrate 执行全部模型的自动迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.TrainingModule{},
		&model.Section{},
		&model.LearningContentItem{},
		&model.LearningProgress{},
		&model.Question{},
		&model.QuestionAttempt{},
		&model.QuizDraft{},
		&model.ReadingPosition{},
	)
}

// SeedCurriculum 课程表为空时写入默认的安全意识培训课程
func SeedCurriculum(db *gorm.DB) {
	var count int64
	db.Model(&model.TrainingModule{}).Count(&count)
	if count > 0 {
		return
	}

	modules := defaultCurriculum()
	for i := range modules {
		if err := db.Create(&modules[i]).Error; err != nil {
			log.Printf("failed to seed module %q: %v", modules[i].Title, err)
		}
	}
	log.Printf("Seeded %d default training modules", len(modules))
}

func defaultCurriculum() []model.TrainingModule {
	return []model.TrainingModule{
		{
			Title:       "钓鱼邮件识别",
			Description: "学习识别钓鱼邮件的常见特征，避免上当受骗。",
			OrderIndex:  1,
			Sections: []model.Section{
				{
					Title:      "什么是钓鱼攻击",
					OrderIndex: 1,
					ContentItems: []model.LearningContentItem{
						{Title: "钓鱼攻击简介", Body: "钓鱼攻击是攻击者伪装成可信来源，诱导受害者泄露敏感信息的社会工程手段。", OrderIndex: 1},
						{Title: "常见的伪装手法", Body: "攻击者常假冒银行、IT 部门或上级领导，利用紧迫感促使受害者仓促行动。", OrderIndex: 2},
					},
					Questions: []model.Question{
						{
							Text:          "以下哪项是钓鱼邮件的典型特征？",
							Options:       `["发件人地址与显示名称不符","邮件由同事当面转交","邮件内容没有任何链接","邮件发送时间在工作日"]`,
							CorrectAnswer: "发件人地址与显示名称不符",
							Explanation:   "发件人地址与显示名称不符是伪造身份的常见信号。",
							OrderIndex:    1,
						},
						{
							Text:          "收到要求立即重置密码的可疑邮件，正确的做法是？",
							Options:       `["点击邮件中的链接尽快重置","直接回复邮件询问","通过官方渠道核实后再处理","转发给同事帮忙判断"]`,
							CorrectAnswer: "通过官方渠道核实后再处理",
							Explanation:   "任何敏感操作都应通过官方渠道独立核实，而不是使用邮件提供的入口。",
							OrderIndex:    2,
						},
					},
				},
				{
					Title:      "识别与上报",
					OrderIndex: 2,
					ContentItems: []model.LearningContentItem{
						{Title: "检查链接与附件", Body: "将鼠标悬停在链接上查看真实地址，不要打开来历不明的附件。", OrderIndex: 1},
						{Title: "上报流程", Body: "发现可疑邮件应立即通过安全平台上报，不要删除原始邮件。", OrderIndex: 2},
					},
					Questions: []model.Question{
						{
							Text:          "发现疑似钓鱼邮件后应当？",
							Options:       `["直接删除","立即上报安全团队","转发给全部门提醒","回复发件人质问"]`,
							CorrectAnswer: "立即上报安全团队",
							Explanation:   "上报可以让安全团队追踪攻击来源并保护其他同事。",
							OrderIndex:    1,
						},
					},
				},
			},
		},
		{
			Title:       "密码与账号安全",
			Description: "掌握强密码与多因素认证的最佳实践。",
			OrderIndex:  2,
			Sections: []model.Section{
				{
					Title:      "强密码的构成",
					OrderIndex: 1,
					ContentItems: []model.LearningContentItem{
						{Title: "密码长度与复杂度", Body: "长密码比复杂的短密码更安全，推荐使用 12 位以上的口令短语。", OrderIndex: 1},
						{Title: "密码管理器", Body: "使用密码管理器为每个站点生成唯一密码，避免重复使用。", OrderIndex: 2},
					},
					Questions: []model.Question{
						{
							Text:          "以下哪个密码最安全？",
							Options:       `["P@ssw0rd","123456abc","correct-horse-battery-staple","自己的生日"]`,
							CorrectAnswer: "correct-horse-battery-staple",
							Explanation:   "由随机单词组成的长口令短语兼顾强度和可记忆性。",
							OrderIndex:    1,
						},
						{
							Text:          "多因素认证的作用是？",
							Options:       `["让登录更快","密码泄露后仍能阻止攻击者登录","可以不用记密码","防止忘记密码"]`,
							CorrectAnswer: "密码泄露后仍能阻止攻击者登录",
							Explanation:   "即使密码泄露，攻击者没有第二个因素也无法登录。",
							OrderIndex:    2,
						},
					},
				},
			},
		},
		{
			Title:       "数据保护与合规",
			Description: "了解敏感数据的分类、存储与传输要求。",
			OrderIndex:  3,
			Sections: []model.Section{
				{
					Title:      "数据分类",
					OrderIndex: 1,
					ContentItems: []model.LearningContentItem{
						{Title: "敏感数据的定义", Body: "个人身份信息、财务数据和商业机密都属于敏感数据，需要额外保护。", OrderIndex: 1},
					},
					Questions: []model.Question{
						{
							Text:          "向外部合作方发送客户名单前应当？",
							Options:       `["直接用邮件明文发送","确认审批并使用加密通道","上传到个人网盘分享","打印后邮寄"]`,
							CorrectAnswer: "确认审批并使用加密通道",
							Explanation:   "敏感数据外发必须经过审批，并通过加密通道传输。",
							OrderIndex:    1,
						},
					},
				},
			},
		},
	}
}
