package usecase_test

import (
	"fmt"
	"strconv"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// fakeSermonRepo is an in-memory SermonRepository recording attach calls.
type fakeSermonRepo struct {
	sermons   map[string]domain.Sermon
	nextID    int
	attachErr error
	attached  map[string]domain.SermonAnalysis
	createErr error
}

func newFakeSermonRepo(sermons ...domain.Sermon) *fakeSermonRepo {
	r := &fakeSermonRepo{sermons: map[string]domain.Sermon{}, attached: map[string]domain.SermonAnalysis{}}
	for _, s := range sermons {
		r.sermons[s.ID] = s
	}
	return r
}

func (r *fakeSermonRepo) Create(_ domain.Context, s domain.Sermon) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	r.nextID++
	id := "sermon-" + strconv.Itoa(r.nextID)
	s.ID = id
	r.sermons[id] = s
	return id, nil
}

func (r *fakeSermonRepo) Get(_ domain.Context, id string) (domain.Sermon, error) {
	s, ok := r.sermons[id]
	if !ok {
		return domain.Sermon{}, fmt.Errorf("op=sermon.get: %w", domain.ErrNotFound)
	}
	return s, nil
}

func (r *fakeSermonRepo) ListByOwner(_ domain.Context, ownerID string) ([]domain.Sermon, error) {
	var out []domain.Sermon
	for _, s := range r.sermons {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSermonRepo) AttachAnalysis(_ domain.Context, id string, version int64, a domain.SermonAnalysis) error {
	if r.attachErr != nil {
		return r.attachErr
	}
	s, ok := r.sermons[id]
	if !ok {
		return fmt.Errorf("op=sermon.attach_analysis: %w", domain.ErrNotFound)
	}
	if s.Version != version {
		return fmt.Errorf("op=sermon.attach_analysis: %w", domain.ErrConflict)
	}
	s.Analysis = &a
	s.Version++
	r.sermons[id] = s
	r.attached[id] = a
	return nil
}

// fakeProfileRepo is an in-memory ProfileRepository.
type fakeProfileRepo struct {
	profiles  map[string]domain.PreferenceProfile
	upsertErr error
	upserts   int
}

func newFakeProfileRepo(profiles ...domain.PreferenceProfile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: map[string]domain.PreferenceProfile{}}
	for _, p := range profiles {
		r.profiles[p.OwnerID] = p
	}
	return r
}

func (r *fakeProfileRepo) Get(_ domain.Context, ownerID string) (domain.PreferenceProfile, error) {
	p, ok := r.profiles[ownerID]
	if !ok {
		return domain.PreferenceProfile{}, fmt.Errorf("op=profile.get: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (r *fakeProfileRepo) Upsert(_ domain.Context, p domain.PreferenceProfile) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	p.Version++
	r.profiles[p.OwnerID] = p
	return nil
}

// fakeAI returns a canned completion.
type fakeAI struct {
	response string
	err      error
	calls    int
}

func (f *fakeAI) ChatJSON(_ domain.Context, _, _ string, _ int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fakeCache records invalidations and serves canned entries.
type fakeCache struct {
	entries       map[string][]string
	invalidations []string
	getErr        error
	setErr        error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]string{}}
}

func (c *fakeCache) Get(_ domain.Context, ownerID string) ([]string, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	ids, ok := c.entries[ownerID]
	return ids, ok, nil
}

func (c *fakeCache) Set(_ domain.Context, ownerID string, sermonIDs []string) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[ownerID] = sermonIDs
	return nil
}

func (c *fakeCache) Invalidate(_ domain.Context, ownerID string) error {
	c.invalidations = append(c.invalidations, ownerID)
	delete(c.entries, ownerID)
	return nil
}
