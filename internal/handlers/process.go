package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/requestdata"
	"github.com/lamyda/lamyda-backend/internal/services"
)

type ProcessHandler struct {
	log            *logger.Logger
	processService services.ProcessService
}

func NewProcessHandler(log *logger.Logger, processService services.ProcessService) *ProcessHandler {
	return &ProcessHandler{
		log:            log.With("handler", "ProcessHandler"),
		processService: processService,
	}
}

// Create handles POST /api/processes. The multipart form carries the scalar
// fields plus three file groups: inline_images (pending rich-text images,
// with optional inline_image_refs overriding the preview URI each one is
// referenced by inside notes), documents, and a single video with an optional
// video_analysis JSON payload.
func (h *ProcessHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_form", err)
		return
	}

	in := services.CreateProcessInput{
		CompanyID: rd.CompanyID,
		CreatedBy: rd.UserID,
		Name:      c.PostForm("name"),
		Type:      c.PostForm("type"),
		Notes:     c.PostForm("notes"),
		Markdown:  c.PostForm("markdown"),
	}
	if v := c.PostForm("description"); v != "" {
		in.Description = &v
	}
	if in.AreaID, err = optionalUUID(c.PostForm("area_id")); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_area_id", err)
		return
	}
	if in.TeamID, err = optionalUUID(c.PostForm("team_id")); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_team_id", err)
		return
	}
	if in.PersonInChargeID, err = optionalUUID(c.PostForm("person_in_charge_id")); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_person_in_charge_id", err)
		return
	}

	if in.TempImages, err = h.collectInlineImages(form); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_inline_image", err)
		return
	}
	if in.Documents, err = collectAttachments(form.File["documents"]); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_document", err)
		return
	}
	if in.Video, err = collectVideo(c, form); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_video", err)
		return
	}

	process, err := h.processService.CreateProcess(c.Request.Context(), in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, process)
}

// GET /api/processes
func (h *ProcessHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}
	processes, err := h.processService.ListProcesses(c.Request.Context(), rd.CompanyID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, processes)
}

// GET /api/processes/:sequentialId
func (h *ProcessHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}
	sequentialID, err := strconv.Atoi(c.Param("sequentialId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_sequential_id", fmt.Errorf("sequential id must be a number"))
		return
	}
	process, err := h.processService.GetProcessBySequentialID(c.Request.Context(), rd.CompanyID, sequentialID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, process)
}

// collectInlineImages stages the uploaded inline images through a
// TempImageStore so each gets the same derived preview URI the composer
// embedded; an explicit inline_image_refs value (index-aligned) wins when the
// client used its own reference scheme.
func (h *ProcessHandler) collectInlineImages(form *multipart.Form) ([]*services.TempImage, error) {
	files := form.File["inline_images"]
	if len(files) == 0 {
		return nil, nil
	}
	refs := form.Value["inline_image_refs"]
	store := services.NewTempImageStore(h.log)
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open inline image %q: %w", fh.Filename, err)
		}
		img, err := store.Add(fh.Filename, fh.Header.Get("Content-Type"), f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		if i < len(refs) && refs[i] != "" {
			img.PreviewURL = refs[i]
		}
	}
	return store.List(), nil
}

func collectAttachments(files []*multipart.FileHeader) ([]services.AttachmentInput, error) {
	if len(files) == 0 {
		return nil, nil
	}
	attachments := make([]services.AttachmentInput, 0, len(files))
	for _, fh := range files {
		data, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, services.AttachmentInput{
			FileName: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	return attachments, nil
}

func collectVideo(c *gin.Context, form *multipart.Form) (*services.VideoInput, error) {
	files := form.File["video"]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	data, err := readFileHeader(fh)
	if err != nil {
		return nil, err
	}
	video := &services.VideoInput{
		FileName: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}
	if raw := c.PostForm("video_analysis"); raw != "" {
		var analysis map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
			return nil, fmt.Errorf("malformed video_analysis payload: %w", err)
		}
		video.Analysis = analysis
	}
	return video, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", fh.Filename, err)
	}
	return data, nil
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
