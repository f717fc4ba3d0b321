package usecase

import (
	"fmt"
	"time"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/pkg/textx"
)

// MinContentLength is the minimum sermon content length in characters.
const MinContentLength = 50

// SermonService owns submission creation and owner-scoped retrieval.
type SermonService struct {
	Sermons domain.SermonRepository
}

// NewSermonService constructs a SermonService.
func NewSermonService(repo domain.SermonRepository) SermonService {
	return SermonService{Sermons: repo}
}

// Create validates and stores a new submission for the principal.
func (s SermonService) Create(ctx domain.Context, ownerID, title, content, bibleReference string) (domain.Sermon, error) {
	if ownerID == "" {
		return domain.Sermon{}, fmt.Errorf("op=sermon.create: %w", domain.ErrUnauthorized)
	}
	title = textx.SanitizeText(title)
	content = textx.SanitizeText(content)
	if title == "" {
		return domain.Sermon{}, fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	}
	if len(content) < MinContentLength {
		return domain.Sermon{}, fmt.Errorf("%w: content must be at least %d characters", domain.ErrInvalidArgument, MinContentLength)
	}
	sermon := domain.Sermon{
		OwnerID:        ownerID,
		Title:          title,
		Content:        content,
		BibleReference: textx.SanitizeText(bibleReference),
		Version:        1,
		CreatedAt:      time.Now().UTC(),
	}
	id, err := s.Sermons.Create(ctx, sermon)
	if err != nil {
		return domain.Sermon{}, err
	}
	sermon.ID = id
	return sermon, nil
}

// Get loads a sermon and enforces ownership: a principal never reads another
// owner's records.
func (s SermonService) Get(ctx domain.Context, ownerID, id string) (domain.Sermon, error) {
	sermon, err := s.Sermons.Get(ctx, id)
	if err != nil {
		return domain.Sermon{}, err
	}
	if sermon.OwnerID != ownerID {
		return domain.Sermon{}, fmt.Errorf("op=sermon.get: %w", domain.ErrUnauthorized)
	}
	return sermon, nil
}

// List returns the principal's sermons, newest first.
func (s SermonService) List(ctx domain.Context, ownerID string) ([]domain.Sermon, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("op=sermon.list: %w", domain.ErrUnauthorized)
	}
	return s.Sermons.ListByOwner(ctx, ownerID)
}
