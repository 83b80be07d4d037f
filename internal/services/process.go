package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/apperr"
	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/repos"
	"github.com/lamyda/lamyda-backend/internal/types"
)

// ListingCache holds the last fetched process listing per company so the
// handlers serving navigation reuse one snapshot. Stage 5 of process assembly
// invalidates it.
type ListingCache interface {
	Get(ctx context.Context, companyID uuid.UUID) ([]*types.Process, bool)
	Set(ctx context.Context, companyID uuid.UUID, snapshot []*types.Process)
	Invalidate(ctx context.Context, companyID uuid.UUID)
}

// AttachmentInput is an explicitly attached (non-inline) file.
type AttachmentInput struct {
	FileName string
	MimeType string
	Data     []byte
}

// VideoInput is the optional process video plus whatever the external AI
// service produced for it. Analysis is passed through as received.
type VideoInput struct {
	FileName string
	MimeType string
	Data     []byte
	Analysis map[string]interface{}
}

type CreateProcessInput struct {
	CompanyID        uuid.UUID
	CreatedBy        uuid.UUID
	Name             string
	Description      *string
	Type             string
	Status           *bool
	AreaID           *uuid.UUID
	TeamID           *uuid.UUID
	PersonInChargeID *uuid.UUID

	// Notes is the rich-text HTML body, possibly still referencing pending
	// inline images by their preview URLs. Markdown is the user mind-map.
	Notes    string
	Markdown string

	TempImages []*TempImage
	Documents  []AttachmentInput
	Video      *VideoInput
}

// ProjectedProcess decorates a process with its snapshot-derived sequential
// id. The id is never persisted; it is only valid for the snapshot it came
// from.
type ProjectedProcess struct {
	SequentialID int `json:"sequential_id"`
	*types.Process
}

type ProcessService interface {
	// CreateProcess runs the assembly saga. Only the creation of the core
	// record is fatal: promotion or merge failures in later stages are
	// logged and swallowed, and the created process is still returned.
	CreateProcess(ctx context.Context, in CreateProcessInput) (*types.Process, error)
	ListProcesses(ctx context.Context, companyID uuid.UUID) ([]ProjectedProcess, error)
	GetProcessBySequentialID(ctx context.Context, companyID uuid.UUID, sequentialID int) (*ProjectedProcess, error)
}

type processService struct {
	db          *gorm.DB
	log         *logger.Logger
	processRepo repos.ProcessRepo
	documents   DocumentService
	listings    ListingCache
}

func NewProcessService(
	db *gorm.DB,
	baseLog *logger.Logger,
	processRepo repos.ProcessRepo,
	documents DocumentService,
	listings ListingCache,
) ProcessService {
	return &processService{
		db:          db,
		log:         baseLog.With("service", "ProcessService"),
		processRepo: processRepo,
		documents:   documents,
		listings:    listings,
	}
}

func (ps *processService) CreateProcess(ctx context.Context, in CreateProcessInput) (*types.Process, error) {
	const op = "create process"

	// Stage 1: core record. The body is stored verbatim, preview references
	// included; later stages rewrite it.
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(op, fmt.Errorf("missing process name"))
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, apperr.Validation(op, fmt.Errorf("missing process type"))
	}
	if in.CompanyID == uuid.Nil {
		return nil, apperr.Validation(op, fmt.Errorf("missing company id"))
	}
	if in.CreatedBy == uuid.Nil {
		return nil, apperr.Validation(op, fmt.Errorf("missing creating user id"))
	}

	status := true
	if in.Status != nil {
		status = *in.Status
	}
	process := &types.Process{
		ID:               uuid.New(),
		CompanyID:        in.CompanyID,
		Name:             name,
		Description:      trimmedOrNil(in.Description),
		Type:             in.Type,
		Status:           status,
		AreaID:           in.AreaID,
		TeamID:           in.TeamID,
		PersonInChargeID: in.PersonInChargeID,
		DocumentByUser:   bodyJSON(in.Notes),
		MarkmapByUser:    strPtrOrNil(in.Markdown),
		CreatedBy:        in.CreatedBy,
		UpdatedBy:        in.CreatedBy,
	}
	if _, err := ps.processRepo.Create(ctx, nil, process); err != nil {
		ps.log.Error("process insert failed", "company_id", in.CompanyID, "error", err)
		return nil, apperr.Persistence(op, err)
	}

	ps.promoteInlineImages(ctx, process, in)
	ps.promoteAttachments(ctx, process, in)
	ps.promoteVideo(ctx, process, in)

	// Stage 5: drop the cached listing so the new record and its freshly
	// derived sequential id become visible on the next fetch.
	if ps.listings != nil {
		ps.listings.Invalidate(ctx, in.CompanyID)
	}

	return process, nil
}

// promoteInlineImages is stage 2: each pending inline image is promoted
// independently; successful promotions have their preview reference rewritten
// to the durable URL, failed ones keep the preview reference in place.
func (ps *processService) promoteInlineImages(ctx context.Context, process *types.Process, in CreateProcessInput) {
	if len(in.TempImages) == 0 {
		return
	}
	body := in.Notes
	for _, img := range in.TempImages {
		if img == nil {
			continue
		}
		doc, err := ps.documents.Promote(ctx, PromoteInput{
			ProcessID:  process.ID,
			PathPrefix: "process-images",
			FileName:   img.FileName,
			MimeType:   img.MimeType,
			Data:       img.Data,
			CreatedBy:  in.CreatedBy,
		})
		if err != nil {
			ps.log.Warn("inline image promotion failed, keeping preview reference",
				"process_id", process.ID, "local_id", img.LocalID, "error", err)
			continue
		}
		body = strings.ReplaceAll(body, img.PreviewURL, doc.FileURL)
	}
	if body == in.Notes {
		return
	}
	rewritten := bodyJSON(body)
	if err := ps.processRepo.UpdateFields(ctx, nil, process.ID, map[string]interface{}{
		"document_by_user": rewritten,
		"updated_by":       in.CreatedBy,
	}); err != nil {
		ps.log.Warn("failed to store rewritten body", "process_id", process.ID, "error", err)
		return
	}
	process.DocumentByUser = rewritten
}

// promoteAttachments is stage 3: attached documents have no body to rewrite;
// failures are logged and skipped.
func (ps *processService) promoteAttachments(ctx context.Context, process *types.Process, in CreateProcessInput) {
	for _, att := range in.Documents {
		if _, err := ps.documents.Promote(ctx, PromoteInput{
			ProcessID:  process.ID,
			PathPrefix: process.ID.String(),
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			Data:       att.Data,
			CreatedBy:  in.CreatedBy,
		}); err != nil {
			ps.log.Warn("attachment promotion failed, skipping",
				"process_id", process.ID, "file_name", att.FileName, "error", err)
		}
	}
}

// promoteVideo is stage 4: promote the video and, when the caller supplied an
// AI analysis payload, merge the extracted fields in the same update. Only
// fields present in the payload are merged.
func (ps *processService) promoteVideo(ctx context.Context, process *types.Process, in CreateProcessInput) {
	if in.Video == nil {
		return
	}
	doc, err := ps.documents.Promote(ctx, PromoteInput{
		ProcessID:  process.ID,
		PathPrefix: process.ID.String(),
		NamePrefix: "video-",
		FileName:   in.Video.FileName,
		MimeType:   in.Video.MimeType,
		Data:       in.Video.Data,
		CreatedBy:  in.CreatedBy,
	})
	if err != nil {
		ps.log.Warn("video promotion failed", "process_id", process.ID, "error", err)
		return
	}

	updates := map[string]interface{}{
		"video_url":  doc.FileURL,
		"updated_by": in.CreatedBy,
	}
	if in.Video.Analysis != nil {
		extract := ExtractAnalysis(in.Video.Analysis)
		if len(extract.Raw) > 0 {
			updates["json_by_ai"] = extract.Raw
		}
		if extract.StepsMarkdown != "" {
			updates["document_by_ai"] = extract.StepsMarkdown
		}
		if extract.MindmapMarkdown != "" {
			updates["markmap_by_ai"] = extract.MindmapMarkdown
		}
		if len(extract.Steps) > 0 {
			if rawSteps, err := json.Marshal(extract.Steps); err == nil {
				updates["steps_by_ai"] = datatypes.JSON(rawSteps)
			}
		}
	}
	if err := ps.processRepo.UpdateFields(ctx, nil, process.ID, updates); err != nil {
		ps.log.Warn("video/analysis merge failed", "process_id", process.ID, "error", err)
		return
	}
	applyVideoUpdates(process, updates)
}

func (ps *processService) ListProcesses(ctx context.Context, companyID uuid.UUID) ([]ProjectedProcess, error) {
	snapshot, err := ps.snapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}
	projected := make([]ProjectedProcess, len(snapshot))
	for i, p := range snapshot {
		projected[i] = ProjectedProcess{SequentialID: i + 1, Process: p}
	}
	return projected, nil
}

func (ps *processService) GetProcessBySequentialID(ctx context.Context, companyID uuid.UUID, sequentialID int) (*ProjectedProcess, error) {
	snapshot, err := ps.snapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}
	process, err := resolveSequential(snapshot, sequentialID)
	if err != nil {
		return nil, err
	}
	return &ProjectedProcess{SequentialID: sequentialID, Process: process}, nil
}

// snapshot fetches the company's creation-ordered listing, from cache when
// possible. Sequential ids are derived by the callers per read; the numbering
// itself is never stored.
func (ps *processService) snapshot(ctx context.Context, companyID uuid.UUID) ([]*types.Process, error) {
	if ps.listings != nil {
		if cached, ok := ps.listings.Get(ctx, companyID); ok {
			return cached, nil
		}
	}
	fetched, err := ps.processRepo.ListActiveByCompanyID(ctx, nil, companyID)
	if err != nil {
		return nil, apperr.Persistence("list processes", err)
	}
	if ps.listings != nil {
		ps.listings.Set(ctx, companyID, fetched)
	}
	return fetched, nil
}

func applyVideoUpdates(process *types.Process, updates map[string]interface{}) {
	if v, ok := updates["video_url"].(string); ok {
		process.VideoURL = &v
	}
	if v, ok := updates["json_by_ai"].(datatypes.JSON); ok {
		process.JSONByAI = v
	}
	if v, ok := updates["document_by_ai"].(string); ok {
		process.DocumentByAI = &v
	}
	if v, ok := updates["markmap_by_ai"].(string); ok {
		process.MarkmapByAI = &v
	}
	if v, ok := updates["steps_by_ai"].(datatypes.JSON); ok {
		process.StepsByAI = v
	}
}

func bodyJSON(html string) datatypes.JSON {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	raw, err := json.Marshal(map[string]string{"html": html})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func strPtrOrNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
