// Package handler is the thin HTTP layer over the negotiation service. It
// decodes requests, resolves ids and version tokens, and delegates; no
// business logic lives here.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dealdesk/internal/negotiation/models"
	"dealdesk/internal/negotiation/service"
	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
	"dealdesk/pkg/platform/httputil"
	"dealdesk/pkg/requestcontext"
)

// maxUploadBytes caps attachment size at 32 MiB.
const maxUploadBytes = 32 << 20

// versionHeader carries the opaque concurrency token read-to-write.
const versionHeader = "If-Match"

// Service is the negotiation service surface the handler depends on.
type Service interface {
	CreateSubmission(ctx context.Context, req service.CreateSubmissionRequest) (*models.DealSubmission, error)
	GetSubmission(ctx context.Context, submissionID id.SubmissionID) (*models.DealSubmission, error)
	ListSubmissionsByBroker(ctx context.Context, brokerID id.CompanyID) ([]*models.DealSubmission, error)
	AmendSubmission(ctx context.Context, submissionID id.SubmissionID, version string, amendment *models.Amendment) (*models.DealSubmission, error)

	InviteInsurer(ctx context.Context, submissionID id.SubmissionID, version string, insurerID id.CompanyID, insurerName string) (*models.SubmissionFeedback, error)
	GetFeedback(ctx context.Context, feedbackID id.FeedbackID) (*models.SubmissionFeedback, error)
	ListFeedbackForSubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.SubmissionFeedback, error)
	AcceptNda(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error)
	UpdateFeedback(ctx context.Context, feedbackID id.FeedbackID, version string, update *service.FeedbackUpdate) (*models.SubmissionFeedback, error)
	SubmitFeedback(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error)
	DeclineFeedback(ctx context.Context, feedbackID id.FeedbackID, version string, notes string) (*models.SubmissionFeedback, error)
	AcceptFeedback(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error)
	WithdrawFeedback(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error)

	ComparisonReport(ctx context.Context, submissionID id.SubmissionID) ([]byte, error)
	FeedbackReport(ctx context.Context, feedbackID id.FeedbackID) ([]byte, error)

	AttachFile(ctx context.Context, submissionID id.SubmissionID, version, name string, data []byte) (*models.DealSubmission, error)
	DownloadFile(ctx context.Context, submissionID id.SubmissionID, fileID id.FileID) (string, []byte, error)
	DeleteFile(ctx context.Context, submissionID id.SubmissionID, version string, fileID id.FileID) (*models.DealSubmission, error)
}

// Handler wires negotiation endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a negotiation handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the negotiation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/submissions", func(r chi.Router) {
		r.Post("/", h.HandleCreateSubmission)
		r.Get("/", h.HandleListSubmissions)
		r.Route("/{submissionID}", func(r chi.Router) {
			r.Get("/", h.HandleGetSubmission)
			r.Patch("/", h.HandleAmendSubmission)
			r.Post("/insurers", h.HandleInviteInsurer)
			r.Get("/feedback", h.HandleListFeedback)
			r.Get("/reports/comparison", h.HandleComparisonReport)
			r.Post("/files", h.HandleAttachFile)
			r.Get("/files/{fileID}", h.HandleDownloadFile)
			r.Delete("/files/{fileID}", h.HandleDeleteFile)
		})
	})
	r.Route("/feedback/{feedbackID}", func(r chi.Router) {
		r.Get("/", h.HandleGetFeedback)
		r.Patch("/", h.HandleUpdateFeedback)
		r.Post("/nda", h.HandleAcceptNda)
		r.Post("/submit", h.HandleSubmitFeedback)
		r.Post("/decline", h.HandleDeclineFeedback)
		r.Post("/accept", h.HandleAcceptFeedback)
		r.Post("/withdraw", h.HandleWithdrawFeedback)
		r.Get("/report", h.HandleFeedbackReport)
	})
}

func (h *Handler) HandleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}

	sub, err := h.service.CreateSubmission(ctx, service.CreateSubmissionRequest{
		Name:         req.Name,
		BrokerID:     requestcontext.CompanyID(ctx),
		BrokerName:   req.BrokerName,
		Terms:        req.Terms,
		Pricing:      req.Pricing,
		Enhancements: req.Enhancements,
		Warranties:   req.Warranties,
		Recipients:   req.Recipients,
	})
	if err != nil {
		h.logError(ctx, "create submission failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromSubmission(sub))
}

func (h *Handler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := h.service.ListSubmissionsByBroker(ctx, requestcontext.CompanyID(ctx))
	if err != nil {
		h.logError(ctx, "list submissions failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSubmissions(subs))
}

func (h *Handler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	sub, err := h.service.GetSubmission(ctx, submissionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSubmission(sub))
}

func (h *Handler) HandleAmendSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	var amendment models.Amendment
	if err := json.NewDecoder(r.Body).Decode(&amendment); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}

	sub, err := h.service.AmendSubmission(ctx, submissionID, r.Header.Get(versionHeader), &amendment)
	if err != nil {
		h.logError(ctx, "amend submission failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSubmission(sub))
}

func (h *Handler) HandleInviteInsurer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	var req inviteInsurerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}
	insurerID, err := id.ParseCompanyID(req.InsurerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	fb, err := h.service.InviteInsurer(ctx, submissionID, r.Header.Get(versionHeader), insurerID, req.InsurerName)
	if err != nil {
		h.logError(ctx, "invite insurer failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromFeedback(fb))
}

func (h *Handler) HandleListFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	fbs, err := h.service.ListFeedbackForSubmission(ctx, submissionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromFeedbacks(fbs))
}

func (h *Handler) HandleGetFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedbackID, ok := h.feedbackID(w, r)
	if !ok {
		return
	}
	fb, err := h.service.GetFeedback(ctx, feedbackID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromFeedback(fb))
}

func (h *Handler) HandleUpdateFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedbackID, ok := h.feedbackID(w, r)
	if !ok {
		return
	}

	var req updateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}

	fb, err := h.service.UpdateFeedback(ctx, feedbackID, r.Header.Get(versionHeader), req.toUpdate())
	if err != nil {
		h.logError(ctx, "update feedback failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromFeedback(fb))
}

func (h *Handler) HandleAcceptNda(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.AcceptNda)
}

func (h *Handler) HandleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.SubmitFeedback)
}

func (h *Handler) HandleDeclineFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedbackID, ok := h.feedbackID(w, r)
	if !ok {
		return
	}

	var req declineFeedbackRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
			return
		}
	}

	fb, err := h.service.DeclineFeedback(ctx, feedbackID, r.Header.Get(versionHeader), req.Notes)
	if err != nil {
		h.logError(ctx, "decline feedback failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromFeedback(fb))
}

func (h *Handler) HandleAcceptFeedback(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.AcceptFeedback)
}

func (h *Handler) HandleWithdrawFeedback(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.WithdrawFeedback)
}

func (h *Handler) HandleComparisonReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.ComparisonReport(ctx, submissionID)
	if err != nil {
		h.logError(ctx, "comparison report failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeCSV(w, "comparison.csv", doc)
}

func (h *Handler) HandleFeedbackReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedbackID, ok := h.feedbackID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.FeedbackReport(ctx, feedbackID)
	if err != nil {
		h.logError(ctx, "feedback report failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeCSV(w, "feedback.csv", doc)
}

func (h *Handler) HandleAttachFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "could not read file content"))
		return
	}

	sub, err := h.service.AttachFile(ctx, submissionID, r.Header.Get(versionHeader), name, data)
	if err != nil {
		h.logError(ctx, "attach file failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromSubmission(sub))
}

func (h *Handler) HandleDownloadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	fileID, err := id.ParseFileID(chi.URLParam(r, "fileID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	name, data, err := h.service.DownloadFile(ctx, submissionID, fileID)
	if err != nil {
		h.logError(ctx, "download file failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	fileID, err := id.ParseFileID(chi.URLParam(r, "fileID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.DeleteFile(ctx, submissionID, r.Header.Get(versionHeader), fileID)
	if err != nil {
		h.logError(ctx, "delete file failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSubmission(sub))
}

// transition is the shared shape of the bodiless feedback state changes.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error)) {

	ctx := r.Context()
	feedbackID, ok := h.feedbackID(w, r)
	if !ok {
		return
	}
	fb, err := op(ctx, feedbackID, r.Header.Get(versionHeader))
	if err != nil {
		h.logError(ctx, "feedback transition failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromFeedback(fb))
}

func (h *Handler) submissionID(w http.ResponseWriter, r *http.Request) (id.SubmissionID, bool) {
	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.SubmissionID{}, false
	}
	return submissionID, true
}

func (h *Handler) feedbackID(w http.ResponseWriter, r *http.Request) (id.FeedbackID, bool) {
	feedbackID, err := id.ParseFeedbackID(chi.URLParam(r, "feedbackID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.FeedbackID{}, false
	}
	return feedbackID, true
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx))
}

func writeCSV(w http.ResponseWriter, filename string, doc []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
