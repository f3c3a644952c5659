package filemanager

import (
	"context"
	"io"
	"time"

	"filehub/internal/domain/file"
	"filehub/internal/domain/share"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/metrics"

	"github.com/google/uuid"
)

// ShareFile grants recipient access to a live file the caller owns or
// administers.
func (m *Manager) ShareFile(ctx context.Context, in share.CreateGrantInput) (*share.Grant, error) {
	g, err := m.shareFile(ctx, in)
	metrics.ObserveFileOperation(opShare, err)
	return g, err
}

func (m *Manager) shareFile(ctx context.Context, in share.CreateGrantInput) (*share.Grant, error) {
	e, err := m.mutable(ctx, in.FileEntryID, in.SharedByUserID)
	if err != nil {
		return nil, err
	}
	if e.OwnerID == in.SharedWithUserID {
		return nil, apperrors.Validation(msgShareSelf)
	}
	if err := m.checkFuture(in.ExpiresAt); err != nil {
		return nil, err
	}

	recipient, err := m.users.GetByID(ctx, in.SharedWithUserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation(msgRecipientInvalid)
		}
		return nil, err
	}
	if !recipient.IsActive {
		return nil, apperrors.Validation(msgRecipientInvalid)
	}
	return m.shares.CreateGrant(ctx, in)
}

// ListShares returns the grants of a file visible to its owner or an admin.
func (m *Manager) ListShares(ctx context.Context, fileID int64, userID uuid.UUID) ([]share.Grant, error) {
	if _, err := m.mutable(ctx, fileID, userID); err != nil {
		return nil, err
	}
	return m.shares.ListGrants(ctx, fileID)
}

// RevokeShare deactivates a grant on a file the caller owns or administers.
func (m *Manager) RevokeShare(ctx context.Context, grantID int64, userID uuid.UUID) error {
	g, err := m.shares.GetGrant(ctx, grantID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound(msgGrantNotFound)
		}
		return err
	}
	if _, err := m.mutable(ctx, g.FileEntryID, userID); err != nil {
		return err
	}
	return m.shares.DeactivateGrant(ctx, grantID)
}

// CreateSharedLink issues a public link on a live file. A nil expiration
// never expires.
func (m *Manager) CreateSharedLink(ctx context.Context, fileID int64, expiration *time.Time, userID uuid.UUID) (*share.Link, error) {
	l, err := m.createSharedLink(ctx, fileID, expiration, userID)
	metrics.ObserveFileOperation(opCreateLink, err)
	return l, err
}

func (m *Manager) createSharedLink(ctx context.Context, fileID int64, expiration *time.Time, userID uuid.UUID) (*share.Link, error) {
	e, err := m.mutable(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	if e.IsFolder() {
		return nil, apperrors.Validation(msgNotAFile)
	}
	if err := m.checkFuture(expiration); err != nil {
		return nil, err
	}
	return m.shares.CreateLink(ctx, share.CreateLinkInput{
		FileEntryID:    e.ID,
		FileName:       e.Name,
		OwnerUserID:    userID,
		ExpirationDate: expiration,
	})
}

// ResolveSharedLink returns the link and its live file. Expired links are
// reported with ErrExpired.
func (m *Manager) ResolveSharedLink(ctx context.Context, linkID uuid.UUID) (*share.Link, *file.Entry, error) {
	l, err := m.shares.GetLink(ctx, linkID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NotFound(msgLinkNotFound)
		}
		return nil, nil, err
	}
	if l.Expired(m.now()) {
		return nil, nil, apperrors.Expired(msgLinkExpired)
	}
	e, err := m.GetFileItem(ctx, l.FileEntryID)
	if err != nil {
		return nil, nil, err
	}
	return l, e, nil
}

// OpenSharedLink streams the file behind a valid link.
func (m *Manager) OpenSharedLink(ctx context.Context, linkID uuid.UUID) (*file.Entry, io.ReadCloser, error) {
	_, e, err := m.ResolveSharedLink(ctx, linkID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := m.openBlob(ctx, e)
	if err != nil {
		return nil, nil, err
	}
	return e, rc, nil
}

func (m *Manager) checkFuture(t *time.Time) error {
	if t != nil && !t.After(m.now()) {
		return apperrors.Validation(msgExpirationInPast)
	}
	return nil
}
