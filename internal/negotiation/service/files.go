package service

import (
	"context"
	"fmt"

	"dealdesk/internal/negotiation/models"
	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
	"dealdesk/pkg/requestcontext"
)

// AttachFile uploads the blob first, then records the attachment on the
// submission. Upload before save so a token conflict never leaves a dangling
// pointer to a blob that was never written; an orphaned blob from a failed
// save is harmless and overwritten on retry.
func (s *Service) AttachFile(ctx context.Context, submissionID id.SubmissionID, version, name string, data []byte) (*models.DealSubmission, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.AttachFile")
	defer span.End()

	if s.files == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "file storage is not configured")
	}
	if version == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version token is required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "file name is required")
	}

	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}
	sub.Version = version

	fileID := id.NewFileID()
	storedName := fmt.Sprintf("%s/%s", submissionID, fileID)
	if err := s.files.Upload(ctx, submissionID.String(), storedName, data); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	sub.AttachFile(models.AttachedFile{
		ID:         fileID,
		Name:       name,
		StoredName: storedName,
		UploadedAt: now,
	}, now)

	saved, err := s.submissions.Save(ctx, sub)
	if err != nil {
		err = wrapSubmissionErr(err)
		s.countConflict(err)
		return nil, err
	}
	s.logEvent(ctx, "file_attached",
		"submission_id", submissionID.String(),
		"file_id", fileID.String())
	return saved, nil
}

// DownloadFile fetches an attached file's content by its attachment id.
func (s *Service) DownloadFile(ctx context.Context, submissionID id.SubmissionID, fileID id.FileID) (string, []byte, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.DownloadFile")
	defer span.End()

	if s.files == nil {
		return "", nil, dErrors.New(dErrors.CodeInternal, "file storage is not configured")
	}
	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return "", nil, wrapSubmissionErr(err)
	}
	attached, err := findAttachment(sub, fileID)
	if err != nil {
		return "", nil, err
	}
	data, err := s.files.Download(ctx, submissionID.String(), attached.StoredName)
	if err != nil {
		return "", nil, err
	}
	return attached.Name, data, nil
}

// DeleteFile removes the attachment record first, under the caller's version
// token, then deletes the blob. A blob-store failure after the save leaves an
// orphaned blob, never a dangling pointer.
func (s *Service) DeleteFile(ctx context.Context, submissionID id.SubmissionID, version string, fileID id.FileID) (*models.DealSubmission, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.DeleteFile")
	defer span.End()

	if s.files == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "file storage is not configured")
	}
	if version == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version token is required")
	}

	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}
	sub.Version = version

	storedName, err := sub.RemoveFile(fileID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "file not attached to submission")
	}

	saved, err := s.submissions.Save(ctx, sub)
	if err != nil {
		err = wrapSubmissionErr(err)
		s.countConflict(err)
		return nil, err
	}

	if err := s.files.Delete(ctx, submissionID.String(), storedName); err != nil {
		return nil, err
	}
	s.logEvent(ctx, "file_deleted",
		"submission_id", submissionID.String(),
		"file_id", fileID.String())
	return saved, nil
}

func findAttachment(sub *models.DealSubmission, fileID id.FileID) (models.AttachedFile, error) {
	for _, f := range sub.Files {
		if f.ID == fileID {
			return f, nil
		}
	}
	return models.AttachedFile{}, dErrors.New(dErrors.CodeNotFound, "file not attached to submission")
}
