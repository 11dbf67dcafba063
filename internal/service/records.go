package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/casefile/casefile/internal/model"
	"github.com/casefile/casefile/internal/repository"
)

// Record service errors.
var (
	// ErrNotFound covers resources that are absent or owned by another
	// user; the two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("record not found")

	ErrCategoryExists     = errors.New("category already exists for this user")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrFileTooLarge       = errors.New("file exceeds maximum upload size")
	ErrFileTypeNotAllowed = errors.New("file extension is not allow-listed")
	ErrEmptyFile          = errors.New("file payload is empty")
)

const maxRecordNameLen = 100

// RecordStore is the persistence surface the records service needs. Every
// method is ownership-scoped: the store resolves the chain from the target
// down to the user and reports repository.ErrNotFound when it does not
// terminate at the given user.
type RecordStore interface {
	CreateCategory(ctx context.Context, userID int64, name string) (*model.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]*model.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID int64) error

	CreatePerson(ctx context.Context, userID, categoryID int64, name string) (*model.Person, error)
	ListPeople(ctx context.Context, userID, categoryID int64) ([]*model.Person, error)
	DeletePerson(ctx context.Context, userID, personID int64) error

	CreateFile(ctx context.Context, userID, personID int64, file *model.File) (*model.File, error)
	ListFiles(ctx context.Context, userID, personID int64) ([]*model.File, error)
	GetFile(ctx context.Context, userID, personID, fileID int64) (*model.File, error)
	DeleteFile(ctx context.Context, userID, personID, fileID int64) error
}

// RecordsService handles the Category → Person → File tree.
type RecordsService struct {
	store          RecordStore
	maxUploadBytes int64
}

// NewRecordsService creates a RecordsService.
func NewRecordsService(store RecordStore, maxUploadBytes int64) *RecordsService {
	return &RecordsService{
		store:          store,
		maxUploadBytes: maxUploadBytes,
	}
}

// MaxUploadBytes returns the configured upload size limit.
func (s *RecordsService) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

func validateRecordName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if len(name) > maxRecordNameLen {
		return "", ErrNameTooLong
	}
	return name, nil
}

// mapStoreErr converts repository sentinels into service sentinels.
func mapStoreErr(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrCategoryExists):
		return ErrCategoryExists
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// CreateCategory creates a category owned by the user. Duplicate names per
// user are rejected; the same name under a different user is fine.
func (s *RecordsService) CreateCategory(ctx context.Context, userID int64, name string) (*model.Category, error) {
	name, err := validateRecordName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.store.CreateCategory(ctx, userID, name)
	if err != nil {
		return nil, mapStoreErr(err, "failed to create category")
	}
	return category, nil
}

// ListCategories returns the user's categories.
func (s *RecordsService) ListCategories(ctx context.Context, userID int64) ([]*model.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to list categories")
	}
	return categories, nil
}

// DeleteCategory cascade-deletes a category with everything beneath it.
func (s *RecordsService) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	if err := s.store.DeleteCategory(ctx, userID, categoryID); err != nil {
		return mapStoreErr(err, "failed to delete category")
	}
	return nil
}

// CreatePerson creates a person under a category the user owns.
func (s *RecordsService) CreatePerson(ctx context.Context, userID, categoryID int64, name string) (*model.Person, error) {
	name, err := validateRecordName(name)
	if err != nil {
		return nil, err
	}

	person, err := s.store.CreatePerson(ctx, userID, categoryID, name)
	if err != nil {
		return nil, mapStoreErr(err, "failed to create person")
	}
	return person, nil
}

// ListPeople returns the people in a category the user owns.
func (s *RecordsService) ListPeople(ctx context.Context, userID, categoryID int64) ([]*model.Person, error) {
	people, err := s.store.ListPeople(ctx, userID, categoryID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to list people")
	}
	return people, nil
}

// DeletePerson cascade-deletes a person and their files.
func (s *RecordsService) DeletePerson(ctx context.Context, userID, personID int64) error {
	if err := s.store.DeletePerson(ctx, userID, personID); err != nil {
		return mapStoreErr(err, "failed to delete person")
	}
	return nil
}

// UploadInput carries a fully buffered upload. The payload must be complete
// before any store work starts; a disconnect mid-upload therefore commits
// nothing.
type UploadInput struct {
	Filename    string
	ContentType string
	Description string
	Payload     []byte
}

// UploadFile validates an upload and stores it under a person the user
// owns. Validation happens entirely before any mutation: size against the
// configured maximum, and the filename extension (text after the last dot,
// case-insensitive) against the audio/video/image/document allow list.
func (s *RecordsService) UploadFile(ctx context.Context, userID, personID int64, input UploadInput) (*model.File, error) {
	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return nil, ErrEmptyName
	}
	if len(input.Payload) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(input.Payload)) > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	kind, ok := model.KindForFilename(filename)
	if !ok {
		return nil, ErrFileTypeNotAllowed
	}

	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
			contentType = byExt
		} else {
			contentType = "application/octet-stream"
		}
	}

	file := &model.File{
		Name:        filename,
		Payload:     input.Payload,
		ContentType: contentType,
		Kind:        kind,
		Description: strings.TrimSpace(input.Description),
		Size:        int64(len(input.Payload)),
	}

	stored, err := s.store.CreateFile(ctx, userID, personID, file)
	if err != nil {
		return nil, mapStoreErr(err, "failed to store file")
	}
	return stored, nil
}

// ListFiles returns file metadata for a person the user owns.
func (s *RecordsService) ListFiles(ctx context.Context, userID, personID int64) ([]*model.File, error) {
	files, err := s.store.ListFiles(ctx, userID, personID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to list files")
	}
	return files, nil
}

// GetFile returns one file including its payload.
func (s *RecordsService) GetFile(ctx context.Context, userID, personID, fileID int64) (*model.File, error) {
	file, err := s.store.GetFile(ctx, userID, personID, fileID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to get file")
	}
	return file, nil
}

// DeleteFile removes one file.
func (s *RecordsService) DeleteFile(ctx context.Context, userID, personID, fileID int64) error {
	if err := s.store.DeleteFile(ctx, userID, personID, fileID); err != nil {
		return mapStoreErr(err, "failed to delete file")
	}
	return nil
}

// StructurePerson is one person in the full-tree dump, with file metadata.
type StructurePerson struct {
	Person    *model.Person
	Files     []*model.File
	FileCount int
}

// StructureCategory is one category in the full-tree dump.
type StructureCategory struct {
	Category    *model.Category
	People      []*StructurePerson
	PersonCount int
	FileCount   int
}

// Structure is the complete tree owned by one user.
type Structure struct {
	Categories    []*StructureCategory
	CategoryCount int
	PersonCount   int
	FileCount     int
}

// Structure assembles the user's whole tree: categories, their people, and
// file metadata, with counts at every level. Reads are ownership-scoped
// individually; a subtree deleted concurrently simply drops out of the dump.
func (s *RecordsService) Structure(ctx context.Context, userID int64) (*Structure, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to list categories")
	}

	out := &Structure{Categories: make([]*StructureCategory, 0, len(categories))}

	for _, category := range categories {
		people, err := s.store.ListPeople(ctx, userID, category.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, mapStoreErr(err, "failed to list people")
		}

		sc := &StructureCategory{
			Category: category,
			People:   make([]*StructurePerson, 0, len(people)),
		}

		for _, person := range people {
			files, err := s.store.ListFiles(ctx, userID, person.ID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return nil, mapStoreErr(err, "failed to list files")
			}

			sp := &StructurePerson{
				Person:    person,
				Files:     files,
				FileCount: len(files),
			}
			sc.People = append(sc.People, sp)
			sc.FileCount += len(files)
		}

		sc.PersonCount = len(sc.People)
		out.Categories = append(out.Categories, sc)
		out.PersonCount += sc.PersonCount
		out.FileCount += sc.FileCount
	}

	out.CategoryCount = len(out.Categories)
	return out, nil
}
