package model

import (
	"strings"
	"time"

	"teachshare/internal/domain"

	"github.com/google/uuid"
)

type AccessLevel string

const (
	AccessFree   AccessLevel = "free"
	AccessMember AccessLevel = "member"
)

type ResourceStatus string

const (
	ResourceActive  ResourceStatus = "active"
	ResourceRemoved ResourceStatus = "removed"
)

// Resource is a catalog entry for a downloadable teaching material. The file
// bytes themselves live in blob storage and are out of scope here; the entry
// carries just enough to list, gate and count downloads.
type Resource struct {
	ID            string
	Title         string
	Description   string
	Category      string
	Access        AccessLevel
	FileName      string
	FileSize      int64
	DownloadCount int
	ViewCount     int
	UploadedBy    string
	Status        ResourceStatus
	CreatedAt     time.Time
}

func NewResource(title, category string, access AccessLevel, uploadedBy string) (*Resource, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(category) == "" {
		return nil, domain.ErrInvalidArgument
	}
	if access != AccessFree && access != AccessMember {
		return nil, domain.ErrInvalidArgument
	}
	return &Resource{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(title),
		Category:   strings.TrimSpace(category),
		Access:     access,
		UploadedBy: uploadedBy,
		Status:     ResourceActive,
		CreatedAt:  time.Now(),
	}, nil
}

// MemberOnly reports whether downloading requires an active membership.
func (r *Resource) MemberOnly() bool { return r.Access == AccessMember }
