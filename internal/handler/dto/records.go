package dto

import (
	"github.com/casefile/casefile/internal/model"
	"github.com/casefile/casefile/internal/service"
)

// CreateCategoryRequest is the body of POST /home/category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreatePersonRequest is the body of POST /home/person.
type CreatePersonRequest struct {
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

// CategoryListResponse wraps GET /home/category.
type CategoryListResponse struct {
	Categories []*model.Category `json:"categories"`
}

// PersonListResponse wraps GET /home/category/{id}/people.
type PersonListResponse struct {
	People []*model.Person `json:"people"`
}

// FileListResponse wraps GET /home/person/{id}/files. Payloads are never
// included; fetch them one at a time.
type FileListResponse struct {
	Files []*model.File `json:"files"`
}

// StructurePersonResponse is one person node in the full-tree dump.
type StructurePersonResponse struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	FileCount int           `json:"file_count"`
	Files     []*model.File `json:"files"`
}

// StructureCategoryResponse is one category node in the full-tree dump.
type StructureCategoryResponse struct {
	ID          int64                      `json:"id"`
	Name        string                     `json:"name"`
	PersonCount int                        `json:"person_count"`
	FileCount   int                        `json:"file_count"`
	People      []*StructurePersonResponse `json:"people"`
}

// StructureResponse is the body of GET /home/structure.
type StructureResponse struct {
	CategoryCount int                          `json:"category_count"`
	PersonCount   int                          `json:"person_count"`
	FileCount     int                          `json:"file_count"`
	Categories    []*StructureCategoryResponse `json:"categories"`
}

// ToStructureResponse flattens the service tree into the wire shape.
func ToStructureResponse(st *service.Structure) *StructureResponse {
	out := &StructureResponse{
		CategoryCount: st.CategoryCount,
		PersonCount:   st.PersonCount,
		FileCount:     st.FileCount,
		Categories:    make([]*StructureCategoryResponse, 0, len(st.Categories)),
	}
	for _, sc := range st.Categories {
		cr := &StructureCategoryResponse{
			ID:          sc.Category.ID,
			Name:        sc.Category.Name,
			PersonCount: sc.PersonCount,
			FileCount:   sc.FileCount,
			People:      make([]*StructurePersonResponse, 0, len(sc.People)),
		}
		for _, sp := range sc.People {
			cr.People = append(cr.People, &StructurePersonResponse{
				ID:        sp.Person.ID,
				Name:      sp.Person.Name,
				FileCount: sp.FileCount,
				Files:     sp.Files,
			})
		}
		out.Categories = append(out.Categories, cr)
	}
	return out
}
