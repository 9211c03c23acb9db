package registration

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ClaimRegistrationCodeSQL = `UPDATE "registration_codes" AS "regc"
SET
	"used_at" = ?,
	"used_by" = ?
WHERE
	"regc"."code" = ?
AND "regc"."used_at" IS NULL
RETURNING *;`

// RegistrationCodes stores one time signup codes. ClaimTx is a single
// compare-and-set statement: two concurrent registrations presenting the
// same code can not both claim it.
type RegistrationCodes interface {
	GetByCode(ctx context.Context, code string) (*RegistrationCode, error)
	Create(ctx context.Context, record *RegistrationCode) (*RegistrationCode, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *RegistrationCode) (*RegistrationCode, error)
	ClaimTx(ctx context.Context, tx bun.IDB, code string, userID uuid.UUID) (*RegistrationCode, error)
}

type codes struct {
	repository.Repository[*RegistrationCode]
	db *bun.DB
}

var _ RegistrationCodes = (*codes)(nil)

func NewRegistrationCodesRepository(db *bun.DB) RegistrationCodes {
	repo := repository.NewRepository[*RegistrationCode](db, repository.ModelHandlers[*RegistrationCode]{
		NewRecord: func() *RegistrationCode { return &RegistrationCode{} },
		GetID: func(record *RegistrationCode) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *RegistrationCode, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "code"
		},
	})

	return &codes{
		Repository: repo,
		db:         db,
	}
}

func (a *codes) GetByCode(ctx context.Context, code string) (*RegistrationCode, error) {
	record := &RegistrationCode{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.code = ?", strings.TrimSpace(code)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"code": code,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *codes) Create(ctx context.Context, record *RegistrationCode) (*RegistrationCode, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *codes) CreateTx(ctx context.Context, tx bun.IDB, record *RegistrationCode) (*RegistrationCode, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *codes) ClaimTx(ctx context.Context, tx bun.IDB, code string, userID uuid.UUID) (*RegistrationCode, error) {
	now := time.Now()
	res, err := a.Repository.RawTx(ctx, tx, ClaimRegistrationCodeSQL, now, userID.String(), strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"code": code,
			})
	}

	return res[0], nil
}
