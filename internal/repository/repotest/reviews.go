package repotest

import (
	"context"
	"sort"

	"github.com/google/uuid"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
)

type reviewRepo struct{ s *Store }

func (r *reviewRepo) Create(_ context.Context, review *models.Review, categories []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("reviews.create"); err != nil {
		return err
	}
	review.Categories = nil
	for _, name := range categories {
		for _, c := range r.s.d.reviewCats {
			if c.Name == name {
				review.Categories = append(review.Categories, c)
			}
		}
	}
	stamp(&review.BaseModel)
	r.s.d.reviews[review.ID] = *review
	return nil
}

func (r *reviewRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.d.reviews[id]
	return ok, nil
}

func (r *reviewRepo) CreateReply(_ context.Context, reply *models.ReviewReply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&reply.BaseModel)
	r.s.d.replies = append(r.s.d.replies, *reply)
	return nil
}

func (r *reviewRepo) FindReaction(_ context.Context, reviewID, userID uuid.UUID, emoji string) (*models.ReviewReaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, re := range r.s.d.reactions {
		if re.ReviewID == reviewID && re.UserID == userID && re.Emoji == emoji {
			found := re
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *reviewRepo) CreateReaction(_ context.Context, reaction *models.ReviewReaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&reaction.BaseModel)
	r.s.d.reactions[reaction.ID] = *reaction
	return nil
}

func (r *reviewRepo) DeleteReaction(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.d.reactions, id)
	return nil
}

func (r *reviewRepo) IncrementLikes(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	review, ok := r.s.d.reviews[id]
	if !ok {
		return false, nil
	}
	review.LikesCount++
	r.s.d.reviews[id] = review
	return true, nil
}

func (r *reviewRepo) List(_ context.Context, filter repository.ReviewFilter, viewerID uuid.UUID) ([]repository.ReviewListing, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []models.Review
	for _, review := range r.s.d.reviews {
		if review.Status != models.ReviewStatusApproved || review.Rating < filter.MinRating {
			continue
		}
		if !filter.Since.IsZero() && review.CreatedAt.Before(filter.Since) {
			continue
		}
		if filter.Category != "" && !hasCategory(review, filter.Category) {
			continue
		}
		matched = append(matched, review)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch filter.Sort {
		case "highest_rated":
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		case "most_liked":
			if a.LikesCount != b.LikesCount {
				return a.LikesCount > b.LikesCount
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}

	var listings []repository.ReviewListing
	for _, review := range matched[filter.Offset:end] {
		listing := repository.ReviewListing{Review: review}
		for _, reply := range r.s.d.replies {
			if reply.ReviewID == review.ID {
				listing.ReplyCount++
			}
		}
		for _, re := range r.s.d.reactions {
			if re.ReviewID == review.ID {
				listing.ReactionCount++
				if re.UserID == viewerID {
					listing.UserReacted = true
				}
			}
		}
		listings = append(listings, listing)
	}
	return listings, total, nil
}

func hasCategory(review models.Review, name string) bool {
	for _, c := range review.Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (r *reviewRepo) Summary(_ context.Context) (float64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum, count int64
	for _, review := range r.s.d.reviews {
		if review.Status == models.ReviewStatusApproved {
			sum += int64(review.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (r *reviewRepo) Categories(_ context.Context) ([]models.ReviewCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]models.ReviewCategory(nil), r.s.d.reviewCats...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
