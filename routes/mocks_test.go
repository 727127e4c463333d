package routes

import (
	"context"
	"errors"
	"sort"
	"time"

	"eventboard/models"
	"eventboard/storage"
	"eventboard/utils"
)

// In-memory repositories mirroring the contracts of the real ones.

type memUserRepo struct {
	nextID int64
	byID   map[int64]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[int64]models.User{}}
}

func (m *memUserRepo) Create(u *models.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return models.ErrDuplicateEmail
		}
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUserRepo) FindByEmail(email string) (models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (m *memUserRepo) GetByID(id int64) (models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

type memEventRepo struct {
	items map[string]models.Event
	fail  bool
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{items: map[string]models.Event{}}
}

func (m *memEventRepo) Create(e *models.Event) error {
	if m.fail {
		return errors.New("insert failed")
	}
	m.items[e.ID] = *e
	return nil
}

func (m *memEventRepo) All() ([]models.Event, error) {
	return m.sorted(func(models.Event) bool { return true })
}

func (m *memEventRepo) ByCreator(userID int64) ([]models.Event, error) {
	return m.sorted(func(e models.Event) bool { return e.CreatedBy == userID })
}

func (m *memEventRepo) sorted(keep func(models.Event) bool) ([]models.Event, error) {
	out := []models.Event{}
	for _, e := range m.items {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memEventRepo) GetByID(id string) (models.Event, error) {
	e, ok := m.items[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (m *memEventRepo) Delete(id string) error {
	delete(m.items, id)
	return nil
}

type memAssetStore struct {
	stored     []storage.StoredAsset
	deleted    []string
	failStore  bool
	failDelete bool
}

func (m *memAssetStore) Store(ctx context.Context, filename string, data []byte) (storage.StoredAsset, error) {
	if m.failStore {
		return storage.StoredAsset{}, errors.New("upstream store unavailable")
	}
	asset := storage.StoredAsset{
		URL:  "https://assets.example.com/" + filename,
		Path: "/events/" + filename,
	}
	m.stored = append(m.stored, asset)
	return asset, nil
}

func (m *memAssetStore) Delete(ctx context.Context, path string) error {
	if m.failDelete {
		return errors.New("upstream delete unavailable")
	}
	m.deleted = append(m.deleted, path)
	return nil
}
