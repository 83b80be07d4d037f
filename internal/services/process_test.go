package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/lamyda/lamyda-backend/internal/apperr"
	"github.com/lamyda/lamyda-backend/internal/types"
)

func newProcessFixture(t *testing.T, docs DocumentService) (*processService, *fakeProcessRepo, *fakeListingCache) {
	t.Helper()
	repo := &fakeProcessRepo{}
	cache := &fakeListingCache{}
	svc := NewProcessService(nil, testLogger(t), repo, docs, cache).(*processService)
	return svc, repo, cache
}

func validInput() CreateProcessInput {
	return CreateProcessInput{
		CompanyID: uuid.New(),
		CreatedBy: uuid.New(),
		Name:      "Onboarding Flow",
		Type:      "operational",
	}
}

func TestCreateProcessNoAssetsSingleWrite(t *testing.T) {
	docs := &scriptedDocumentService{}
	svc, repo, cache := newProcessFixture(t, docs)

	process, err := svc.CreateProcess(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if process == nil {
		t.Fatal("expected created process")
	}
	if got := len(repo.created); got != 1 {
		t.Fatalf("creates = %d, want 1", got)
	}
	if got := len(repo.updates); got != 0 {
		t.Fatalf("field updates = %d, want 0", got)
	}
	if got := len(docs.calls); got != 0 {
		t.Fatalf("promotions = %d, want 0", got)
	}
	if cache.invalidations != 1 {
		t.Fatalf("cache invalidations = %d, want 1", cache.invalidations)
	}
}

func TestCreateProcessValidation(t *testing.T) {
	docs := &scriptedDocumentService{}
	svc, repo, cache := newProcessFixture(t, docs)

	cases := []struct {
		name   string
		mutate func(*CreateProcessInput)
	}{
		{"empty name", func(in *CreateProcessInput) { in.Name = "   " }},
		{"empty type", func(in *CreateProcessInput) { in.Type = "" }},
		{"missing company", func(in *CreateProcessInput) { in.CompanyID = uuid.Nil }},
		{"missing creator", func(in *CreateProcessInput) { in.CreatedBy = uuid.Nil }},
	}
	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := svc.CreateProcess(context.Background(), in); !apperr.IsValidation(err) {
			t.Fatalf("%s: err = %v, want validation error", tc.name, err)
		}
	}
	if len(repo.created) != 0 {
		t.Fatalf("creates = %d, want 0", len(repo.created))
	}
	if cache.invalidations != 0 {
		t.Fatalf("cache invalidations = %d, want 0", cache.invalidations)
	}
}

func TestCreateProcessInsertFailureIsFatal(t *testing.T) {
	docs := &scriptedDocumentService{}
	svc, repo, cache := newProcessFixture(t, docs)
	repo.failCreate = errors.New("connection reset")

	in := validInput()
	in.Documents = []AttachmentInput{{FileName: "a.pdf", MimeType: "application/pdf", Data: []byte("x")}}

	_, err := svc.CreateProcess(context.Background(), in)
	if !apperr.IsPersistence(err) {
		t.Fatalf("err = %v, want persistence error", err)
	}
	if len(docs.calls) != 0 {
		t.Fatalf("promotions = %d, want 0 after fatal stage 1", len(docs.calls))
	}
	if cache.invalidations != 0 {
		t.Fatalf("cache invalidations = %d, want 0", cache.invalidations)
	}
}

func TestCreateProcessRewritesInlineImageReference(t *testing.T) {
	docs := &scriptedDocumentService{results: []promoteResult{promoted("https://store/abc123")}}
	svc, repo, _ := newProcessFixture(t, docs)

	in := validInput()
	in.Notes = `<img src="preview://A">`
	in.TempImages = []*TempImage{{
		LocalID:    "1-a",
		FileName:   "logo.png",
		MimeType:   "image/png",
		Data:       []byte("0123456789"),
		PreviewURL: "preview://A",
	}}

	if _, err := svc.CreateProcess(context.Background(), in); err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if len(docs.calls) != 1 {
		t.Fatalf("promotions = %d, want 1", len(docs.calls))
	}
	if docs.calls[0].PathPrefix != "process-images" {
		t.Fatalf("path prefix = %q, want process-images", docs.calls[0].PathPrefix)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("field updates = %d, want 1", len(repo.updates))
	}
	raw, ok := repo.updates[0]["document_by_user"].(datatypes.JSON)
	if !ok {
		t.Fatalf("document_by_user missing from update: %v", repo.updates[0])
	}
	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal rewritten body: %v", err)
	}
	if want := `<img src="https://store/abc123">`; body["html"] != want {
		t.Fatalf("body = %q, want %q", body["html"], want)
	}
}

func TestCreateProcessPartialInlineImageFailure(t *testing.T) {
	docs := &scriptedDocumentService{results: []promoteResult{
		promoted("https://store/u1"),
		promoteFailed(apperr.Storage("promote document", errors.New("bucket down"))),
	}}
	svc, repo, _ := newProcessFixture(t, docs)

	in := validInput()
	in.Notes = `<p><img src="preview://A"><img src="preview://B"></p>`
	in.TempImages = []*TempImage{
		{LocalID: "1-a", FileName: "a.png", MimeType: "image/png", Data: []byte("a"), PreviewURL: "preview://A"},
		{LocalID: "2-b", FileName: "b.png", MimeType: "image/png", Data: []byte("b"), PreviewURL: "preview://B"},
	}

	process, err := svc.CreateProcess(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("field updates = %d, want 1", len(repo.updates))
	}
	var body map[string]string
	if err := json.Unmarshal(process.DocumentByUser, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if !strings.Contains(body["html"], "https://store/u1") {
		t.Fatalf("body %q missing promoted URL", body["html"])
	}
	if !strings.Contains(body["html"], "preview://B") {
		t.Fatalf("body %q should keep failed image's preview reference", body["html"])
	}
}

func TestCreateProcessAttachmentFailureDoesNotShortCircuit(t *testing.T) {
	docs := &scriptedDocumentService{results: []promoteResult{
		promoted("https://store/a"),
		promoteFailed(apperr.Storage("promote document", errors.New("bucket down"))),
		promoted("https://store/c"),
	}}
	svc, repo, cache := newProcessFixture(t, docs)

	in := validInput()
	in.Documents = []AttachmentInput{
		{FileName: "a.pdf", MimeType: "application/pdf", Data: []byte("aa")},
		{FileName: "b.pdf", MimeType: "application/pdf", Data: []byte("bb")},
		{FileName: "c.pdf", MimeType: "application/pdf", Data: []byte("cc")},
	}

	process, err := svc.CreateProcess(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if process == nil {
		t.Fatal("expected created process despite attachment failure")
	}
	if got := len(docs.calls); got != 3 {
		t.Fatalf("promotions = %d, want 3", got)
	}
	for i, call := range docs.calls {
		if call.PathPrefix != process.ID.String() {
			t.Fatalf("attachment %d path prefix = %q, want process id", i, call.PathPrefix)
		}
	}
	if len(repo.created) != 1 {
		t.Fatalf("creates = %d, want 1", len(repo.created))
	}
	if cache.invalidations != 1 {
		t.Fatalf("cache invalidations = %d, want 1", cache.invalidations)
	}
}

func TestCreateProcessVideoMergesAnalysis(t *testing.T) {
	docs := &scriptedDocumentService{results: []promoteResult{promoted("https://store/video-1.mp4")}}
	svc, repo, _ := newProcessFixture(t, docs)

	in := validInput()
	in.Video = &VideoInput{
		FileName: "demo.mp4",
		MimeType: "video/mp4",
		Data:     []byte("frames"),
		Analysis: map[string]interface{}{
			"analysis": map[string]interface{}{
				"processo_passos": []interface{}{
					map[string]interface{}{"passo": float64(1), "timestamp": "00:05", "duracao": "10s", "descricao": "open form"},
				},
				"processo_passos_markdown": "## Steps",
				"markdown_markmap":         "# Map",
				"confianca":                float64(0.93),
			},
		},
	}

	process, err := svc.CreateProcess(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if docs.calls[0].NamePrefix != "video-" {
		t.Fatalf("name prefix = %q, want video-", docs.calls[0].NamePrefix)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("field updates = %d, want 1 merged update", len(repo.updates))
	}
	update := repo.updates[0]
	if update["video_url"] != "https://store/video-1.mp4" {
		t.Fatalf("video_url = %v", update["video_url"])
	}
	if update["document_by_ai"] != "## Steps" {
		t.Fatalf("document_by_ai = %v", update["document_by_ai"])
	}
	if update["markmap_by_ai"] != "# Map" {
		t.Fatalf("markmap_by_ai = %v", update["markmap_by_ai"])
	}
	raw, ok := update["json_by_ai"].(datatypes.JSON)
	if !ok {
		t.Fatal("json_by_ai missing from merged update")
	}
	var full map[string]interface{}
	if err := json.Unmarshal(raw, &full); err != nil {
		t.Fatalf("unmarshal json_by_ai: %v", err)
	}
	if full["confianca"] != 0.93 {
		t.Fatalf("unknown vendor key not preserved: %v", full)
	}
	var steps []AnalysisStep
	rawSteps, ok := update["steps_by_ai"].(datatypes.JSON)
	if !ok {
		t.Fatal("steps_by_ai missing from merged update")
	}
	if err := json.Unmarshal(rawSteps, &steps); err != nil {
		t.Fatalf("unmarshal steps_by_ai: %v", err)
	}
	if len(steps) != 1 || steps[0].Number != 1 || steps[0].Description != "open form" {
		t.Fatalf("steps = %+v", steps)
	}
	if process.VideoURL == nil || *process.VideoURL != "https://store/video-1.mp4" {
		t.Fatalf("in-memory process video url = %v", process.VideoURL)
	}
}

func TestCreateProcessVideoWithoutAnalysis(t *testing.T) {
	docs := &scriptedDocumentService{results: []promoteResult{promoted("https://store/v")}}
	svc, repo, _ := newProcessFixture(t, docs)

	in := validInput()
	in.Video = &VideoInput{FileName: "demo.webm", MimeType: "video/webm", Data: []byte("x")}

	if _, err := svc.CreateProcess(context.Background(), in); err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	update := repo.updates[0]
	for _, key := range []string{"json_by_ai", "document_by_ai", "markmap_by_ai", "steps_by_ai"} {
		if _, ok := update[key]; ok {
			t.Fatalf("update unexpectedly contains %s", key)
		}
	}
}

func TestCreateProcessVideoFailureSkipsMerge(t *testing.T) {
	docs := &scriptedDocumentService{results: []promoteResult{
		promoteFailed(apperr.Storage("promote document", errors.New("bucket down"))),
	}}
	svc, repo, cache := newProcessFixture(t, docs)

	in := validInput()
	in.Video = &VideoInput{
		FileName: "demo.mp4",
		MimeType: "video/mp4",
		Data:     []byte("frames"),
		Analysis: map[string]interface{}{"processo_passos_markdown": "## Steps"},
	}

	process, err := svc.CreateProcess(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if process.VideoURL != nil {
		t.Fatalf("video url = %v, want nil", *process.VideoURL)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("field updates = %d, want 0 when video promotion fails", len(repo.updates))
	}
	if cache.invalidations != 1 {
		t.Fatalf("cache invalidations = %d, want 1", cache.invalidations)
	}
}

func companyProcesses(n int) []*types.Process {
	// Newest first, the order the repo returns.
	out := make([]*types.Process, n)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out[i] = &types.Process{
			ID:        uuid.New(),
			Name:      fmt.Sprintf("process %d", n-i),
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestListProcessesAssignsSequentialIDs(t *testing.T) {
	svc, repo, _ := newProcessFixture(t, &scriptedDocumentService{})
	repo.listResult = companyProcesses(3)

	listed, err := svc.ListProcesses(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListProcesses: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("len = %d, want 3", len(listed))
	}
	for i, p := range listed {
		if p.SequentialID != i+1 {
			t.Fatalf("position %d sequential id = %d, want %d", i, p.SequentialID, i+1)
		}
		if p.Process != repo.listResult[i] {
			t.Fatalf("position %d does not point at snapshot entity", i)
		}
	}
}

func TestGetProcessBySequentialIDRoundTrip(t *testing.T) {
	svc, repo, _ := newProcessFixture(t, &scriptedDocumentService{})
	repo.listResult = companyProcesses(5)
	companyID := uuid.New()

	listed, err := svc.ListProcesses(context.Background(), companyID)
	if err != nil {
		t.Fatalf("ListProcesses: %v", err)
	}
	for _, want := range listed {
		got, err := svc.GetProcessBySequentialID(context.Background(), companyID, want.SequentialID)
		if err != nil {
			t.Fatalf("resolve %d: %v", want.SequentialID, err)
		}
		if got.Process.ID != want.Process.ID {
			t.Fatalf("resolve(%d) = %s, want %s", want.SequentialID, got.Process.ID, want.Process.ID)
		}
	}
}

func TestGetProcessBySequentialIDOutOfRange(t *testing.T) {
	svc, repo, _ := newProcessFixture(t, &scriptedDocumentService{})
	repo.listResult = companyProcesses(2)

	for _, id := range []int{0, -1, 3} {
		if _, err := svc.GetProcessBySequentialID(context.Background(), uuid.New(), id); !apperr.IsNotFound(err) {
			t.Fatalf("sequential id %d: err = %v, want not found", id, err)
		}
	}
}

func TestSnapshotUsesCache(t *testing.T) {
	svc, repo, cache := newProcessFixture(t, &scriptedDocumentService{})
	repo.listResult = companyProcesses(2)
	companyID := uuid.New()

	if _, err := svc.ListProcesses(context.Background(), companyID); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	// Second read should be served from the cache even if the repo breaks.
	repo.failList = errors.New("db unavailable")
	if _, err := svc.ListProcesses(context.Background(), companyID); err != nil {
		t.Fatalf("cached list: %v", err)
	}
}
