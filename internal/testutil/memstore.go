package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/casefile/casefile/internal/model"
	"github.com/casefile/casefile/internal/repository"
)

// MemStore is an in-memory stand-in for the PostgreSQL repository, with the
// same ownership semantics: scoped lookups, repository sentinels, explicit
// leaf-first cascades. It backs service and handler tests that must run
// without a database.
type MemStore struct {
	mu sync.Mutex

	nextID     int64
	users      map[int64]*model.User
	categories map[int64]*model.Category
	persons    map[int64]*model.Person
	files      map[int64]*model.File

	// FailWith, when set, makes every call return that error. Used to
	// exercise storage-failure paths.
	FailWith error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		users:      make(map[int64]*model.User),
		categories: make(map[int64]*model.Category),
		persons:    make(map[int64]*model.Person),
		files:      make(map[int64]*model.File),
	}
}

func (m *MemStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemStore) CreateUser(_ context.Context, name, passwordHash string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	for _, u := range m.users {
		if u.Name == name {
			return nil, repository.ErrUserExists
		}
	}

	user := &model.User{
		ID:           m.id(),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *MemStore) GetUserByName(_ context.Context, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	for _, u := range m.users {
		if u.Name == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemStore) CreateCategory(_ context.Context, userID int64, name string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	for _, c := range m.categories {
		if c.UserID == userID && c.Name == name {
			return nil, repository.ErrCategoryExists
		}
	}

	category := &model.Category{
		ID:        m.id(),
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	m.categories[category.ID] = category
	return category, nil
}

func (m *MemStore) ListCategories(_ context.Context, userID int64) ([]*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	var out []*model.Category
	for _, c := range m.categories {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) categoryOwned(userID, categoryID int64) bool {
	c, ok := m.categories[categoryID]
	return ok && c.UserID == userID
}

func (m *MemStore) personOwned(userID, personID int64) bool {
	p, ok := m.persons[personID]
	if !ok {
		return false
	}
	return m.categoryOwned(userID, p.CategoryID)
}

func (m *MemStore) DeleteCategory(_ context.Context, userID, categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}

	if !m.categoryOwned(userID, categoryID) {
		return repository.ErrNotFound
	}

	// Leaf-first, like the real cascade.
	for pid, p := range m.persons {
		if p.CategoryID != categoryID {
			continue
		}
		for fid, f := range m.files {
			if f.PersonID == pid {
				delete(m.files, fid)
			}
		}
		delete(m.persons, pid)
	}
	delete(m.categories, categoryID)
	return nil
}

func (m *MemStore) CreatePerson(_ context.Context, userID, categoryID int64, name string) (*model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	if !m.categoryOwned(userID, categoryID) {
		return nil, repository.ErrNotFound
	}

	person := &model.Person{
		ID:         m.id(),
		Name:       name,
		CategoryID: categoryID,
		CreatedAt:  time.Now().UTC(),
	}
	m.persons[person.ID] = person
	return person, nil
}

func (m *MemStore) ListPeople(_ context.Context, userID, categoryID int64) ([]*model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	if !m.categoryOwned(userID, categoryID) {
		return nil, repository.ErrNotFound
	}

	var out []*model.Person
	for _, p := range m.persons {
		if p.CategoryID == categoryID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) DeletePerson(_ context.Context, userID, personID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}

	if !m.personOwned(userID, personID) {
		return repository.ErrNotFound
	}

	for fid, f := range m.files {
		if f.PersonID == personID {
			delete(m.files, fid)
		}
	}
	delete(m.persons, personID)
	return nil
}

func (m *MemStore) CreateFile(_ context.Context, userID, personID int64, file *model.File) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	if !m.personOwned(userID, personID) {
		return nil, repository.ErrNotFound
	}

	stored := *file
	stored.ID = m.id()
	stored.PersonID = personID
	stored.Size = int64(len(file.Payload))
	stored.CreatedAt = time.Now().UTC()
	m.files[stored.ID] = &stored

	cp := stored
	return &cp, nil
}

func (m *MemStore) ListFiles(_ context.Context, userID, personID int64) ([]*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	if !m.personOwned(userID, personID) {
		return nil, repository.ErrNotFound
	}

	var out []*model.File
	for _, f := range m.files {
		if f.PersonID == personID {
			meta := *f
			meta.Payload = nil // list endpoints carry metadata only
			out = append(out, &meta)
		}
	}
	return out, nil
}

func (m *MemStore) GetFile(_ context.Context, userID, personID, fileID int64) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	f, ok := m.files[fileID]
	if !ok || f.PersonID != personID || !m.personOwned(userID, personID) {
		return nil, repository.ErrNotFound
	}

	cp := *f
	return &cp, nil
}

func (m *MemStore) DeleteFile(_ context.Context, userID, personID, fileID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}

	f, ok := m.files[fileID]
	if !ok || f.PersonID != personID || !m.personOwned(userID, personID) {
		return repository.ErrNotFound
	}

	delete(m.files, fileID)
	return nil
}

// FileCount reports how many file rows exist across all owners. Used to
// assert that cascades leave no orphans behind.
func (m *MemStore) FileCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// PersonCount reports how many person rows exist across all owners.
func (m *MemStore) PersonCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.persons)
}
