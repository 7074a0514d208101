package service

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"secaware_backend/internal/model"
	"secaware_backend/internal/repository"
	"secaware_backend/internal/util"
	"secaware_backend/pkg/logger"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const leaderboardKey = "secaware:leaderboard:xp"

// UserService 用户统计、排行榜与头像
type UserService struct {
	UserRepo     *repository.UserRepository
	ModuleRepo   *repository.ModuleRepository
	ProgressRepo *repository.LearningProgressRepository
	AttemptRepo  *repository.QuestionAttemptRepository
	ModuleSvc    *ModuleService
	Storage      *StorageService
	Redis        *redis.Client
}

func NewUserService(
	userRepo *repository.UserRepository,
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.LearningProgressRepository,
	attemptRepo *repository.QuestionAttemptRepository,
	moduleSvc *ModuleService,
	storage *StorageService,
	rdb *redis.Client,
) *UserService {
	return &UserService{
		UserRepo:     userRepo,
		ModuleRepo:   moduleRepo,
		ProgressRepo: progressRepo,
		AttemptRepo:  attemptRepo,
		ModuleSvc:    moduleSvc,
		Storage:      storage,
		Redis:        rdb,
	}
}

type UserStatistics struct {
	TotalXP               int `json:"totalXp"`
	Level                 int `json:"level"`
	SectionsCompleted     int `json:"sectionsCompleted"`
	QuizzesPassed         int `json:"quizzesPassed"`
	ContentItemsCompleted int `json:"contentItemsCompleted"`
	ModulesStarted        int `json:"modulesStarted"`
	ModulesCompleted      int `json:"modulesCompleted"`
}

// GetStatistics 用户统计口径
// sectionsCompleted / quizzesPassed 使用统计阈值 80，与解锁阈值 70 分开命名
func (s *UserService) GetStatistics(userID uint) (*UserStatistics, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	stats := &UserStatistics{
		TotalXP: user.TotalXP,
		Level:   user.Level(),
	}

	itemsDone, err := s.ProgressRepo.CountCompletedForUser(userID)
	if err != nil {
		return nil, err
	}
	stats.ContentItemsCompleted = itemsDone

	modules, err := s.ModuleRepo.ListModules()
	if err != nil {
		return nil, err
	}

	for _, module := range modules {
		sections, err := s.ModuleRepo.ListSections(module.ID)
		if err != nil {
			return nil, err
		}

		sectionStats := make([]SectionStats, len(sections))
		moduleStarted := false
		for i, section := range sections {
			st, err := s.ModuleSvc.LoadSectionStats(userID, section.ID)
			if err != nil {
				return nil, err
			}
			sectionStats[i] = st

			if ResolveSectionCompletion(st, util.PassThresholdStats) {
				stats.SectionsCompleted++
			}
			if st.QuizPassed(util.PassThresholdStats) {
				stats.QuizzesPassed++
			}
			if st.LearningDone > 0 || st.QuizCorrect > 0 {
				moduleStarted = true
			}
		}

		if moduleStarted {
			stats.ModulesStarted++
		}
		if ModuleFullyCompleted(sectionStats, util.PassThresholdStats) {
			stats.ModulesCompleted++
		}
	}

	return stats, nil
}

type LeaderboardEntry struct {
	UserID  uint   `json:"userId"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	TotalXP int    `json:"totalXp"`
	Level   int    `json:"level"`
}

// GetLeaderboard XP 排行榜
// 优先走 Redis ZSET 缓存，缓存不可用或为空时回源数据库并回填
func (s *UserService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	if s.Redis != nil {
		if entries, err := s.leaderboardFromRedis(limit); err == nil && len(entries) > 0 {
			return entries, nil
		}
	}

	users, err := s.UserRepo.FindTopByXP(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		entries[i] = LeaderboardEntry{
			UserID:  user.ID,
			Name:    user.Name,
			Avatar:  user.Avatar,
			TotalXP: user.TotalXP,
			Level:   user.Level(),
		}
		if s.Redis != nil {
			s.Redis.ZAdd(context.Background(), leaderboardKey, &redis.Z{
				Score:  float64(user.TotalXP),
				Member: strconv.FormatUint(uint64(user.ID), 10),
			})
		}
	}
	return entries, nil
}

func (s *UserService) leaderboardFromRedis(limit int) ([]LeaderboardEntry, error) {
	ctx := context.Background()
	zs, err := s.Redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		userID := util.MustParseUint(member)
		user, err := s.UserRepo.FindByID(userID)
		if err != nil {
			// 缓存里有脏成员，跳过即可
			logger.Log.Warn("leaderboard member missing in db", zap.String("member", member))
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID:  user.ID,
			Name:    user.Name,
			Avatar:  user.Avatar,
			TotalXP: user.TotalXP,
			Level:   user.Level(),
		})
	}
	return entries, nil
}

// UploadAvatar 头像上传，走统一存储层（local/minio）
func (s *UserService) UploadAvatar(userID uint, file *multipart.FileHeader) (string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", util.ErrUserNotFound
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, []string{util.MimeImage}); err != nil {
		return "", err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}

	filename := "avatars/" + model.GenerateUUID() + filepath.Ext(file.Filename)
	url, err := s.Storage.Provider.Upload(context.Background(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	user.Avatar = url
	user.LastSeen = time.Now()
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

// SetDisabled 管理员启用/停用账号，停用后登录被拒绝
func (s *UserService) SetDisabled(userID uint, disabled bool) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	user.Disabled = disabled
	return s.UserRepo.Update(user)
}
