package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/mangabrew/internal/models"
)

// ReviewFilter narrows the public review listing.
type ReviewFilter struct {
	MinRating int
	Category  string
	Since     time.Time
	Sort      string
	Limit     int
	Offset    int
}

// ReviewListing is a review with its engagement counts for one viewer.
type ReviewListing struct {
	Review        models.Review `json:"review"`
	ReplyCount    int64         `json:"reply_count"`
	ReactionCount int64         `json:"reaction_count"`
	UserReacted   bool          `json:"user_reacted"`
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review, categories []string) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateReply(ctx context.Context, reply *models.ReviewReply) error
	FindReaction(ctx context.Context, reviewID, userID uuid.UUID, emoji string) (*models.ReviewReaction, error)
	CreateReaction(ctx context.Context, reaction *models.ReviewReaction) error
	DeleteReaction(ctx context.Context, id uuid.UUID) error
	IncrementLikes(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, filter ReviewFilter, viewerID uuid.UUID) ([]ReviewListing, int64, error)
	Summary(ctx context.Context) (float64, int64, error)
	Categories(ctx context.Context) ([]models.ReviewCategory, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review, categories []string) error {
	db := GetDB(ctx, r.db)
	if len(categories) > 0 {
		var found []models.ReviewCategory
		if err := db.Where("name IN ?", categories).Find(&found).Error; err != nil {
			return err
		}
		review.Categories = found
	}
	return db.Create(review).Error
}

func (r *reviewRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Review{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) CreateReply(ctx context.Context, reply *models.ReviewReply) error {
	return GetDB(ctx, r.db).Create(reply).Error
}

func (r *reviewRepository) FindReaction(ctx context.Context, reviewID, userID uuid.UUID, emoji string) (*models.ReviewReaction, error) {
	var reaction models.ReviewReaction
	if err := GetDB(ctx, r.db).
		Where("review_id = ? AND user_id = ? AND emoji = ?", reviewID, userID, emoji).
		First(&reaction).Error; err != nil {
		return nil, translate(err)
	}
	return &reaction, nil
}

func (r *reviewRepository) CreateReaction(ctx context.Context, reaction *models.ReviewReaction) error {
	return GetDB(ctx, r.db).Create(reaction).Error
}

func (r *reviewRepository) DeleteReaction(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&models.ReviewReaction{}).Error
}

func (r *reviewRepository) IncrementLikes(ctx context.Context, id uuid.UUID) (bool, error) {
	result := GetDB(ctx, r.db).Model(&models.Review{}).Where("id = ?", id).
		Update("likes_count", gorm.Expr("likes_count + 1"))
	return result.RowsAffected == 1, result.Error
}

func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter, viewerID uuid.UUID) ([]ReviewListing, int64, error) {
	db := GetDB(ctx, r.db)
	query := db.Model(&models.Review{}).Where("reviews.status = ?", models.ReviewStatusApproved)
	if filter.MinRating > 0 {
		query = query.Where("reviews.rating >= ?", filter.MinRating)
	}
	if !filter.Since.IsZero() {
		query = query.Where("reviews.created_at >= ?", filter.Since)
	}
	if filter.Category != "" {
		query = query.Where("reviews.id IN (?)", db.Table("review_category_mappings").
			Select("review_category_mappings.review_id").
			Joins("JOIN review_categories ON review_categories.id = review_category_mappings.review_category_id").
			Where("review_categories.name = ?", filter.Category))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	if err := query.Preload("User").Preload("Categories").
		Order(reviewOrder(filter.Sort)).
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	if len(reviews) == 0 {
		return nil, total, nil
	}

	ids := make([]uuid.UUID, 0, len(reviews))
	for _, review := range reviews {
		ids = append(ids, review.ID)
	}

	replies, err := r.countBy(db, &models.ReviewReply{}, ids)
	if err != nil {
		return nil, 0, err
	}
	reactions, err := r.countBy(db, &models.ReviewReaction{}, ids)
	if err != nil {
		return nil, 0, err
	}

	var reacted []uuid.UUID
	if err := db.Model(&models.ReviewReaction{}).
		Where("review_id IN ? AND user_id = ?", ids, viewerID).
		Distinct().Pluck("review_id", &reacted).Error; err != nil {
		return nil, 0, err
	}
	reactedSet := make(map[uuid.UUID]bool, len(reacted))
	for _, id := range reacted {
		reactedSet[id] = true
	}

	listings := make([]ReviewListing, 0, len(reviews))
	for _, review := range reviews {
		listings = append(listings, ReviewListing{
			Review:        review,
			ReplyCount:    replies[review.ID],
			ReactionCount: reactions[review.ID],
			UserReacted:   reactedSet[review.ID],
		})
	}
	return listings, total, nil
}

func (r *reviewRepository) countBy(db *gorm.DB, model any, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		ReviewID uuid.UUID
		N        int64
	}
	if err := db.Model(model).Select("review_id, COUNT(*) AS n").
		Where("review_id IN ?", ids).Group("review_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.ReviewID] = row.N
	}
	return counts, nil
}

func (r *reviewRepository) Summary(ctx context.Context) (float64, int64, error) {
	var row struct {
		Average *float64
		Total   int64
	}
	err := GetDB(ctx, r.db).Model(&models.Review{}).
		Select("AVG(rating) AS average, COUNT(*) AS total").
		Where("status = ?", models.ReviewStatusApproved).
		Scan(&row).Error
	if err != nil || row.Average == nil {
		return 0, row.Total, err
	}
	return *row.Average, row.Total, nil
}

func (r *reviewRepository) Categories(ctx context.Context) ([]models.ReviewCategory, error) {
	var categories []models.ReviewCategory
	err := GetDB(ctx, r.db).Order("name").Find(&categories).Error
	return categories, err
}

func reviewOrder(sort string) string {
	switch sort {
	case "highest_rated":
		return "reviews.rating DESC, reviews.created_at DESC"
	case "most_liked":
		return "reviews.likes_count DESC, reviews.created_at DESC"
	default:
		return "reviews.created_at DESC"
	}
}
