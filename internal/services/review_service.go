package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
	"github.com/example/mangabrew/internal/validation"
)

const ReviewsPerPage = 10

const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)

var reviewPeriods = map[string]time.Duration{
	"month":   30 * 24 * time.Hour,
	"quarter": 90 * 24 * time.Hour,
	"year":    365 * 24 * time.Hour,
}

// ReviewQuery is the raw filter set read from the listing URL.
type ReviewQuery struct {
	Rating     int
	Category   string
	TimePeriod string
	Sort       string
	Page       int
}

// ReviewPage is one page of approved reviews plus the overall summary.
type ReviewPage struct {
	Reviews       []repository.ReviewListing `json:"reviews"`
	Total         int64                      `json:"total"`
	Page          int                        `json:"page"`
	TotalPages    int64                      `json:"total_pages"`
	AverageRating float64                    `json:"average_rating"`
	ReviewCount   int64                      `json:"review_count"`
	Categories    []models.ReviewCategory    `json:"categories"`
}

type ReviewService struct {
	reviews repository.ReviewRepository
	Now     func() time.Time
}

func NewReviewService(reviews repository.ReviewRepository) *ReviewService {
	return &ReviewService{reviews: reviews, Now: time.Now}
}

func (s *ReviewService) List(ctx context.Context, viewerID uuid.UUID, q ReviewQuery) (*ReviewPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	filter := repository.ReviewFilter{
		Category: q.Category,
		Sort:     q.Sort,
		Limit:    ReviewsPerPage,
		Offset:   (q.Page - 1) * ReviewsPerPage,
	}
	if q.Rating >= 1 && q.Rating <= 5 {
		filter.MinRating = q.Rating
	}
	if d, ok := reviewPeriods[q.TimePeriod]; ok {
		filter.Since = s.Now().Add(-d)
	}

	listings, total, err := s.reviews.List(ctx, filter, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	avg, count, err := s.reviews.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}
	categories, err := s.reviews.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("review categories: %w", err)
	}

	return &ReviewPage{
		Reviews:       listings,
		Total:         total,
		Page:          q.Page,
		TotalPages:    (total + ReviewsPerPage - 1) / ReviewsPerPage,
		AverageRating: avg,
		ReviewCount:   count,
		Categories:    categories,
	}, nil
}

// Submit stores a review awaiting moderation.
func (s *ReviewService) Submit(ctx context.Context, userID uuid.UUID, cmd validation.ReviewCommand) (*models.Review, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.Content = strings.TrimSpace(cmd.Content)
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:  userID,
		Rating:  cmd.Rating,
		Title:   cmd.Title,
		Content: cmd.Content,
		Status:  models.ReviewStatusPending,
	}
	if err := s.reviews.Create(ctx, review, cmd.Categories); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) Reply(ctx context.Context, userID uuid.UUID, cmd validation.ReplyCommand) (*models.ReviewReply, error) {
	cmd.Content = strings.TrimSpace(cmd.Content)
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	reviewID := uuid.MustParse(cmd.ReviewID)
	if err := s.requireReview(ctx, reviewID); err != nil {
		return nil, err
	}

	reply := &models.ReviewReply{ReviewID: reviewID, UserID: userID, Content: cmd.Content}
	if cmd.ParentReplyID != "" {
		parent := uuid.MustParse(cmd.ParentReplyID)
		reply.ParentReplyID = &parent
	}
	if err := s.reviews.CreateReply(ctx, reply); err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return reply, nil
}

// ToggleReaction adds the viewer's emoji to a review, or removes it when
// already present.
func (s *ReviewService) ToggleReaction(ctx context.Context, userID uuid.UUID, cmd validation.ReactionCommand) (string, error) {
	if err := validation.Struct(cmd); err != nil {
		return "", err
	}
	reviewID := uuid.MustParse(cmd.ReviewID)
	if err := s.requireReview(ctx, reviewID); err != nil {
		return "", err
	}

	existing, err := s.reviews.FindReaction(ctx, reviewID, userID, cmd.Emoji)
	switch {
	case err == nil:
		if err := s.reviews.DeleteReaction(ctx, existing.ID); err != nil {
			return "", fmt.Errorf("delete reaction: %w", err)
		}
		return ReactionRemoved, nil
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return "", fmt.Errorf("find reaction: %w", err)
	}

	reaction := &models.ReviewReaction{ReviewID: reviewID, UserID: userID, Emoji: cmd.Emoji}
	if err := s.reviews.CreateReaction(ctx, reaction); err != nil {
		return "", fmt.Errorf("create reaction: %w", err)
	}
	return ReactionAdded, nil
}

func (s *ReviewService) Like(ctx context.Context, reviewID uuid.UUID) error {
	ok, err := s.reviews.IncrementLikes(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("like review: %w", err)
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *ReviewService) requireReview(ctx context.Context, id uuid.UUID) error {
	ok, err := s.reviews.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("find review: %w", err)
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	return nil
}
