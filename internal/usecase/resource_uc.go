package usecase

import (
	"context"
	"time"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/infra/logging"
	"teachshare/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ResourceUseCase = (*resourceUC)(nil)

type ResourceUseCase interface {
	List(ctx context.Context, f repository.ResourceFilter, limit, offset int) ([]*model.Resource, int, error)
	Get(ctx context.Context, id string) (*model.Resource, error)
	// Download authorizes the subject against the resource's access level and
	// bumps the download counter. Streaming the file bytes happens elsewhere.
	Download(ctx context.Context, subject *model.User, id string) (*model.Resource, error)
}

type resourceUC struct {
	resources repository.ResourceRepository
	log       *zerolog.Logger
}

func NewResourceUseCase(resources repository.ResourceRepository, logger *zerolog.Logger) *resourceUC {
	return &resourceUC{resources: resources, log: logger}
}

func (u *resourceUC) List(ctx context.Context, f repository.ResourceFilter, limit, offset int) ([]*model.Resource, int, error) {
	defer logging.TraceDuration(u.log, "ResourceUC.List")()
	return u.resources.List(ctx, repository.NoTX, f, limit, offset)
}

func (u *resourceUC) Get(ctx context.Context, id string) (*model.Resource, error) {
	defer logging.TraceDuration(u.log, "ResourceUC.Get")()

	res, err := u.resources.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if err := u.resources.IncrementViews(ctx, repository.NoTX, id); err != nil {
		u.log.Warn().Err(err).Str("resource_id", id).Msg("failed to bump view count")
	}
	return res, nil
}

func (u *resourceUC) Download(ctx context.Context, subject *model.User, id string) (*model.Resource, error) {
	defer logging.TraceDuration(u.log, "ResourceUC.Download")()

	res, err := u.resources.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if res.MemberOnly() && !subject.Membership.ActiveAt(time.Now()) {
		metrics.IncGateDenial("membership")
		return nil, domain.ErrMembershipRequired
	}
	if err := u.resources.IncrementDownloads(ctx, repository.NoTX, id); err != nil {
		u.log.Warn().Err(err).Str("resource_id", id).Msg("failed to bump download count")
	}
	return res, nil
}
