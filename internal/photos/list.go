package photos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/luminastudio/studio-backend/pkg/db/models"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
	"github.com/luminastudio/studio-backend/pkg/pagination"
)

// sortColumns maps API sort keys onto real columns. Anything else
// falls back to created_at.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"filename":   "original_filename",
	"size":       "size_bytes",
}

// ListParams configures photo listing filters and pagination.
type ListParams struct {
	Page       pagination.Params
	EventID    *uuid.UUID
	Search     string
	Featured   *bool
	Approved   *bool
	Sort       string
	Order      string
	PublicOnly bool
}

// ListQuery is the repository-level form of ListParams.
type ListQuery struct {
	Limit      int
	Offset     int
	EventID    *uuid.UUID
	Search     string
	Featured   *bool
	Approved   *bool
	PublicOnly bool
	sortColumn string
	descending bool
}

// OrderClause renders the ORDER BY expression with a stable id tiebreak.
func (q ListQuery) OrderClause() string {
	direction := "ASC"
	if q.descending {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", q.sortColumn, direction, direction)
}

// ListResult returns one page of photos plus pagination metadata.
type ListResult struct {
	Photos     []models.Photo  `json:"photos"`
	Pagination pagination.Meta `json:"pagination"`
}

// List returns photos matching the filters. Non-admin callers are
// restricted to approved photos in client-visible events via PublicOnly.
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListQuery{
		Limit:      params.Page.Limit,
		Offset:     params.Page.Offset(),
		EventID:    params.EventID,
		Search:     strings.TrimSpace(params.Search),
		Featured:   params.Featured,
		Approved:   params.Approved,
		PublicOnly: params.PublicOnly,
		sortColumn: resolveSortColumn(params.Sort),
		descending: !strings.EqualFold(params.Order, "asc"),
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list photos")
	}

	return &ListResult{
		Photos:     rows,
		Pagination: pagination.BuildMeta(params.Page, total),
	}, nil
}

func resolveSortColumn(sort string) string {
	if column, ok := sortColumns[strings.ToLower(strings.TrimSpace(sort))]; ok {
		return column
	}
	return "created_at"
}
