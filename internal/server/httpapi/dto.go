package httpapi

import (
	"time"

	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/dmitrijs2005/spendy/internal/server/services"
	"github.com/google/uuid"
)

// EntryDTO is the wire form of an entry.
type EntryDTO struct {
	UUID        uuid.UUID   `json:"uuid"`
	Type        models.Kind `json:"type"`
	Category    uuid.UUID   `json:"category"`
	Description string      `json:"description"`
	Price       int64       `json:"price"`
	Date        time.Time   `json:"date"`
	LastUpdate  time.Time   `json:"lastUpdate"`
	IsDeleted   bool        `json:"isDeleted"`
}

// CategoryDTO is the wire form of a category.
type CategoryDTO struct {
	UUID       uuid.UUID   `json:"uuid"`
	Name       string      `json:"name"`
	Type       models.Kind `json:"type"`
	Date       time.Time   `json:"date"`
	LastUpdate time.Time   `json:"lastUpdate"`
	IsDeleted  bool        `json:"isDeleted"`
}

type CreateEntriesResponse struct {
	SavedEntries                 []EntryDTO `json:"savedEntries"`
	ConflictingEntriesOnID       []EntryDTO `json:"conflictingEntriesOnId"`
	ConflictingEntriesOnCategory []EntryDTO `json:"conflictingEntriesOnCategory"`
}

type UpdateEntriesResponse struct {
	UpdatedEntries                 []EntryDTO `json:"updatedEntries"`
	ConflictingEntriesOnID         []EntryDTO `json:"conflictingEntriesOnId"`
	ConflictingEntriesOnCategory   []EntryDTO `json:"conflictingEntriesOnCategory"`
	ConflictingEntriesOnLastUpdate []EntryDTO `json:"conflictingEntriesOnLastUpdate"`
}

type DeleteEntriesResponse struct {
	Result             bool        `json:"result"`
	Message            string      `json:"message"`
	Timestamp          time.Time   `json:"timestamp"`
	ConflictingEntries []uuid.UUID `json:"conflictingEntries"`
}

func (d EntryDTO) model() *models.Entry {
	return &models.Entry{
		UUID:         d.UUID,
		Kind:         d.Type,
		CategoryUUID: d.Category,
		Description:  d.Description,
		Price:        d.Price,
		CreatedAt:    d.Date,
		LastUpdate:   d.LastUpdate,
		IsDeleted:    d.IsDeleted,
	}
}

func entryDTO(e *models.Entry) EntryDTO {
	return EntryDTO{
		UUID:        e.UUID,
		Type:        e.Kind,
		Category:    e.CategoryUUID,
		Description: e.Description,
		Price:       e.Price,
		Date:        e.CreatedAt,
		LastUpdate:  e.LastUpdate,
		IsDeleted:   e.IsDeleted,
	}
}

// entryDTOs never returns nil so that empty lists encode as [].
func entryDTOs(list []*models.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(list))
	for _, e := range list {
		out = append(out, entryDTO(e))
	}
	return out
}

func entryModels(list []EntryDTO) []*models.Entry {
	out := make([]*models.Entry, 0, len(list))
	for _, d := range list {
		out = append(out, d.model())
	}
	return out
}

func (d CategoryDTO) model() *models.Category {
	return &models.Category{
		UUID:       d.UUID,
		Name:       d.Name,
		Kind:       d.Type,
		CreatedAt:  d.Date,
		LastUpdate: d.LastUpdate,
		IsDeleted:  d.IsDeleted,
	}
}

func categoryDTO(c *models.Category) CategoryDTO {
	return CategoryDTO{
		UUID:       c.UUID,
		Name:       c.Name,
		Type:       c.Kind,
		Date:       c.CreatedAt,
		LastUpdate: c.LastUpdate,
		IsDeleted:  c.IsDeleted,
	}
}

func createResponse(r *services.CreateResult) CreateEntriesResponse {
	return CreateEntriesResponse{
		SavedEntries:                 entryDTOs(r.Saved),
		ConflictingEntriesOnID:       entryDTOs(r.ConflictingOnID),
		ConflictingEntriesOnCategory: entryDTOs(r.ConflictingOnCategory),
	}
}

func updateResponse(r *services.UpdateResult) UpdateEntriesResponse {
	return UpdateEntriesResponse{
		UpdatedEntries:                 entryDTOs(r.Updated),
		ConflictingEntriesOnID:         entryDTOs(r.ConflictingOnID),
		ConflictingEntriesOnCategory:   entryDTOs(r.ConflictingOnCategory),
		ConflictingEntriesOnLastUpdate: entryDTOs(r.ConflictingOnLastUpdate),
	}
}
