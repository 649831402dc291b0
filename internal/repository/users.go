package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/models"
)

var summaryColumns = []string{"id", "username", "name", "email", "avatar"}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "get user by email")
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "check user exists")
	}
	return count > 0, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int, p models.ProfileUpdate) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		cols := p.Columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, translate(err, "update profile")
	}
	return &user, nil
}

func (r *userRepository) IncrementStat(ctx context.Context, id int, stat models.Stat, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn(string(stat), gorm.Expr("? + ?", clause.Column{Name: string(stat)}, delta))
	if res.Error != nil {
		return translate(res.Error, "increment user stat")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "increment user stat")
	}
	return nil
}

func (r *userRepository) Summaries(ctx context.Context, ids []int) (map[int]models.UserSummary, error) {
	out := make(map[int]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.UserSummary
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select(summaryColumns).
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "resolve users")
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *userRepository) Follow(ctx context.Context, followerID, followingID int) error {
	follow := models.Follow{FollowerID: followerID, FollowingID: followingID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow)
	if res.Error != nil {
		return translate(res.Error, "follow user")
	}
	if res.RowsAffected == 0 {
		return common.NewError(common.ErrAlreadyExists, "Already following this user")
	}
	return nil
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followingID int) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
	return translate(err, "unfollow user")
}

func (r *userRepository) Followers(ctx context.Context, userID int) ([]models.UserSummary, error) {
	return r.followSide(ctx, "follows.follower_id", "follows.following_id = ?", userID)
}

func (r *userRepository) Following(ctx context.Context, userID int) ([]models.UserSummary, error) {
	return r.followSide(ctx, "follows.following_id", "follows.follower_id = ?", userID)
}

func (r *userRepository) followSide(ctx context.Context, joinCol, where string, userID int) ([]models.UserSummary, error) {
	out := []models.UserSummary{}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.id, users.username, users.name, users.avatar").
		Joins("JOIN follows ON users.id = "+joinCol).
		Where(where, userID).
		Order("follows.created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "list follows")
	}
	return out, nil
}
