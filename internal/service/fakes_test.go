package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"gorm.io/gorm"

	"github.com/ornastudio/ornament-backend/internal/ai"
	"github.com/ornastudio/ornament-backend/internal/model"
	"github.com/ornastudio/ornament-backend/internal/repository"
)

type fakeGenerationRepo struct {
	nodes []model.GenerationNode
}

func (f *fakeGenerationRepo) Create(_ context.Context, node *model.GenerationNode) error {
	if node.CreatedAt.IsZero() {
		node.CreatedAt = time.Now().UTC().Add(time.Duration(len(f.nodes)) * time.Millisecond)
	}
	f.nodes = append(f.nodes, *node)
	return nil
}

func (f *fakeGenerationRepo) FindByID(_ context.Context, id string) (*model.GenerationNode, error) {
	for i := range f.nodes {
		if f.nodes[i].ID == id {
			n := f.nodes[i]
			return &n, nil
		}
	}
	return nil, nil
}

func (f *fakeGenerationRepo) ListByUser(_ context.Context, userID, typeFilter string, limit, offset int) ([]model.GenerationNode, int64, error) {
	var matched []model.GenerationNode
	for _, n := range f.nodes {
		if n.UserID != userID {
			continue
		}
		if typeFilter != "" && n.Type != typeFilter {
			continue
		}
		matched = append(matched, n)
	}
	// newest first
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeGenerationRepo) ListByParent(_ context.Context, parentID string) ([]model.GenerationNode, error) {
	var out []model.GenerationNode
	for _, n := range f.nodes {
		if n.ParentID != nil && *n.ParentID == parentID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeGenerationRepo) ListRecentByUser(_ context.Context, userID string, since time.Time, limit int) ([]model.GenerationNode, error) {
	var out []model.GenerationNode
	for i := len(f.nodes) - 1; i >= 0 && len(out) < limit; i-- {
		n := f.nodes[i]
		if n.UserID == userID && !n.CreatedAt.Before(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeGenerationRepo) ListByCollection(_ context.Context, collectionID string) ([]model.GenerationNode, error) {
	var out []model.GenerationNode
	for _, n := range f.nodes {
		if n.CollectionID != nil && *n.CollectionID == collectionID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeGenerationRepo) SetDB(*gorm.DB) {}

type fakeCollectionRepo struct {
	colls     map[string]*model.Collection
	conflicts int // SaveCAS fails this many times before succeeding
	saves     int
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{colls: map[string]*model.Collection{}}
}

func (f *fakeCollectionRepo) Create(_ context.Context, c *model.Collection) error {
	f.colls[c.ID] = cloneCollection(c)
	return nil
}

func (f *fakeCollectionRepo) FindByID(_ context.Context, id string) (*model.Collection, error) {
	c, ok := f.colls[id]
	if !ok {
		return nil, nil
	}
	return cloneCollection(c), nil
}

func (f *fakeCollectionRepo) ListByUser(_ context.Context, userID string) ([]model.Collection, error) {
	var out []model.Collection
	for _, c := range f.colls {
		if c.CreatedBy == userID {
			out = append(out, *cloneCollection(c))
		}
	}
	return out, nil
}

func (f *fakeCollectionRepo) SaveCAS(_ context.Context, c *model.Collection) error {
	f.saves++
	if f.conflicts > 0 {
		f.conflicts--
		return repository.ErrVersionConflict
	}
	stored, ok := f.colls[c.ID]
	if !ok || stored.Version != c.Version {
		return repository.ErrVersionConflict
	}
	c.Version++
	f.colls[c.ID] = cloneCollection(c)
	return nil
}

func (f *fakeCollectionRepo) SetDB(*gorm.DB) {}

// cloneCollection deep-copies through JSON so callers get DB-like isolation.
func cloneCollection(c *model.Collection) *model.Collection {
	raw, _ := json.Marshal(c)
	var out model.Collection
	_ = json.Unmarshal(raw, &out)
	return &out
}

type fakeProjectRepo struct {
	projects map[string]*model.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*model.Project{}}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	f.projects[p.ID] = cloneProject(p)
	return nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *model.Project) error {
	f.projects[p.ID] = cloneProject(p)
	return nil
}

func (f *fakeProjectRepo) FindByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	return cloneProject(p), nil
}

func (f *fakeProjectRepo) ListByMember(_ context.Context, userID string) ([]model.Project, error) {
	var out []model.Project
	for _, p := range f.projects {
		if p.Member(userID) != nil {
			out = append(out, *cloneProject(p))
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) SetDB(*gorm.DB) {}

func cloneProject(p *model.Project) *model.Project {
	raw, _ := json.Marshal(p)
	var out model.Project
	_ = json.Unmarshal(raw, &out)
	return &out
}

type fakeUploader struct {
	objects map[string][]byte
	seq     int
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, _, folder, name string) (string, string, error) {
	if name == "" {
		f.seq++
		name = fmt.Sprintf("obj%d.png", f.seq)
	}
	objectPath := path.Join(folder, name)
	url := "https://cdn.test/" + objectPath
	f.objects[url] = data
	return url, objectPath, nil
}

func (f *fakeUploader) Fetch(_ context.Context, imageURL string) ([]byte, error) {
	data, ok := f.objects[imageURL]
	if !ok {
		return nil, fmt.Errorf("object %s not stored", imageURL)
	}
	return data, nil
}

type fakeBackend struct {
	capability ai.Capability
	result     []byte
	err        error
	calls      [][]ai.Part
}

func (f *fakeBackend) Capability() ai.Capability {
	return f.capability
}

func (f *fakeBackend) Generate(_ context.Context, parts []ai.Part) ([]byte, error) {
	f.calls = append(f.calls, parts)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
