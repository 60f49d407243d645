package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/infra/logging"
	"teachshare/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ CodeAdminUseCase = (*codeAdminUC)(nil)

type GenerateParams struct {
	Count          int
	MembershipType model.MembershipType
	DurationDays   int
	Batch          string
	Description    string
	IssuerID       string
}

// CodeAdminUseCase covers administrative issuance, listing and CSV export of
// activation codes.
type CodeAdminUseCase interface {
	Generate(ctx context.Context, p GenerateParams) ([]string, error)
	List(ctx context.Context, f repository.CodeFilter, limit, offset int) ([]*model.ActivationCode, int, error)
	// ExportCSV returns the CSV bytes and a suggested filename. At least one
	// of codes/batch must be given.
	ExportCSV(ctx context.Context, codes []string, batch string) ([]byte, string, error)
}

type codeAdminUC struct {
	codes repository.ActivationCodeRepository
	log   *zerolog.Logger
}

func NewCodeAdminUseCase(codes repository.ActivationCodeRepository, logger *zerolog.Logger) *codeAdminUC {
	return &codeAdminUC{codes: codes, log: logger}
}

// saveAttempts bounds the retry loop on a token collision. With 16 random hex
// characters a second collision in a row is effectively unreachable.
const saveAttempts = 3

func (u *codeAdminUC) Generate(ctx context.Context, p GenerateParams) ([]string, error) {
	defer logging.TraceDuration(u.log, "CodeAdminUC.Generate")()

	if p.Count < 1 || p.Count > model.MaxGenerateBatch {
		return nil, domain.ErrInvalidArgument
	}

	now := time.Now()
	out := make([]string, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		var saved bool
		for attempt := 0; attempt < saveAttempts; attempt++ {
			ac, err := model.NewActivationCode(p.MembershipType, p.DurationDays, p.Batch, p.Description, p.IssuerID, now)
			if err != nil {
				return nil, err
			}
			err = u.codes.Save(ctx, repository.NoTX, ac)
			if err == nil {
				out = append(out, ac.Code)
				saved = true
				break
			}
			if !errors.Is(err, domain.ErrAlreadyExists) {
				return nil, err
			}
			u.log.Warn().Str("batch", p.Batch).Msg("code token collision, retrying with a fresh token")
		}
		if !saved {
			return nil, fmt.Errorf("generate codes: %d consecutive token collisions", saveAttempts)
		}
	}

	metrics.AddCodesGenerated(len(out))
	u.log.Info().Int("count", len(out)).Str("batch", p.Batch).
		Str("membership_type", string(p.MembershipType)).Msg("activation codes generated")
	return out, nil
}

func (u *codeAdminUC) List(ctx context.Context, f repository.CodeFilter, limit, offset int) ([]*model.ActivationCode, int, error) {
	defer logging.TraceDuration(u.log, "CodeAdminUC.List")()
	return u.codes.List(ctx, repository.NoTX, f, limit, offset)
}

// exportHeader is the fixed CSV column set; encoding/csv quotes fields that
// contain delimiters or newlines.
var exportHeader = []string{
	"code", "membershipType", "status", "batch", "description",
	"usedBy", "usedAt", "createdAt",
}

func (u *codeAdminUC) ExportCSV(ctx context.Context, codes []string, batch string) ([]byte, string, error) {
	defer logging.TraceDuration(u.log, "CodeAdminUC.ExportCSV")()

	if len(codes) == 0 && strings.TrimSpace(batch) == "" {
		return nil, "", domain.ErrInvalidArgument
	}

	rows, err := u.codes.FindForExport(ctx, repository.NoTX, codes, batch)
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", domain.ErrNotFound
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		usedAt := ""
		if row.UsedAt != nil {
			usedAt = row.UsedAt.Format(time.RFC3339)
		}
		rec := []string{
			row.Code,
			string(row.MembershipType),
			string(row.Status),
			row.Batch,
			row.Description,
			row.RedeemerUsername,
			usedAt,
			row.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	name := batch
	if name == "" {
		name = "export"
	}
	return buf.Bytes(), fmt.Sprintf("activation_codes_%s.csv", name), nil
}
