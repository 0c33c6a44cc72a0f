package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/collab-api/internal/database"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/utils"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team, memberIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}

		now := time.Now()
		members := make([]models.TeamMember, len(memberIDs))
		for i, userID := range memberIDs {
			members[i] = models.TeamMember{
				TeamID:   team.ID,
				UserID:   userID,
				JoinedAt: now,
			}
		}
		if err := tx.Omit(clause.Associations).Create(&members).Error; err != nil {
			return err
		}
		team.Members = members
		return nil
	})
}

func (r *GormTeamRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Team, error) {
	var team models.Team
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *GormTeamRepository) ListForUser(ctx context.Context, userID string) ([]models.Team, error) {
	memberSubQuery := r.db.Model(&models.TeamMember{}).
		Select("team_id").
		Where("user_id = ?", userID)

	var teams []models.Team
	err := r.db.WithContext(ctx).
		Where("creator_id = ? OR id IN (?)", userID, memberSubQuery).
		Preload("Creator").
		Preload("Members.User").
		Order("created_at DESC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *GormTeamRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.Team, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Team{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teams []models.Team
	if err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Members.User").
		Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *GormTeamRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Team{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error
	})
}

func (r *GormTeamRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Team{}).Count(&count).Error
	return count, err
}
