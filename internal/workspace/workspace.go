// Package workspace holds the tenant-boundary entities: workspaces and the
// memberships binding users to them.
package workspace

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/id"
)

// InviteCodeLength is the length of generated invite codes.
const InviteCodeLength = 8

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Workspace is the top-level tenant boundary.
type Workspace struct {
	ID         string
	Name       string
	ImageURL   string
	InviteCode string
	// CreatorID records who created the workspace. It is informational
	// only; authorization always flows through Member rows.
	CreatorID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateWorkspaceInput describes the metadata needed to create a workspace.
type CreateWorkspaceInput struct {
	Name      string
	ImageURL  string
	CreatorID string
}

// CreateWorkspace builds a workspace with a generated ID, invite code and
// timestamps.
func CreateWorkspace(input CreateWorkspaceInput, now func() time.Time, idGenerator func() (string, error)) (Workspace, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Workspace{}, apperrors.New(apperrors.CodeWorkspaceNameEmpty, "workspace name is required")
	}
	input.CreatorID = strings.TrimSpace(input.CreatorID)

	workspaceID, err := idGenerator()
	if err != nil {
		return Workspace{}, fmt.Errorf("generate workspace id: %w", err)
	}
	code, err := NewInviteCode()
	if err != nil {
		return Workspace{}, fmt.Errorf("generate invite code: %w", err)
	}

	createdAt := now().UTC()
	return Workspace{
		ID:         workspaceID,
		Name:       input.Name,
		ImageURL:   strings.TrimSpace(input.ImageURL),
		InviteCode: code,
		CreatorID:  input.CreatorID,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}, nil
}

// NewInviteCode generates an opaque alphanumeric invite code.
func NewInviteCode() (string, error) {
	return inviteCodeFrom(rand.Reader)
}

// inviteCodeFrom draws unbiased alphabet indices by discarding bytes at or
// above the largest multiple of the alphabet size.
func inviteCodeFrom(r io.Reader) (string, error) {
	const limit = byte(256 - 256%len(inviteCodeAlphabet))
	code := make([]byte, 0, InviteCodeLength)
	buf := make([]byte, InviteCodeLength)
	for len(code) < InviteCodeLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)])
			if len(code) == InviteCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
