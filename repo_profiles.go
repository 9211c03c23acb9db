package registration

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ConsumeActivationKeySQL = `UPDATE "registration_profiles" AS "regp"
SET
	"activated_at" = ?
WHERE
	"regp"."activation_key" = ?
AND "regp"."activated_at" IS NULL
RETURNING *;`

// RegistrationProfiles stores activation records. ConsumeTx is a
// compare-and-set: a key already consumed yields a not-found result, so a
// key grants activation at most once even under concurrent requests.
type RegistrationProfiles interface {
	GetByID(ctx context.Context, id string) (*RegistrationProfile, error)
	GetByActivationKey(ctx context.Context, key string) (*RegistrationProfile, error)
	Create(ctx context.Context, record *RegistrationProfile) (*RegistrationProfile, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *RegistrationProfile) (*RegistrationProfile, error)
	ConsumeTx(ctx context.Context, tx bun.IDB, key string) (*RegistrationProfile, error)
}

type profiles struct {
	repository.Repository[*RegistrationProfile]
	db *bun.DB
}

var _ RegistrationProfiles = (*profiles)(nil)

func NewRegistrationProfilesRepository(db *bun.DB) RegistrationProfiles {
	repo := repository.NewRepository[*RegistrationProfile](db, repository.ModelHandlers[*RegistrationProfile]{
		NewRecord: func() *RegistrationProfile { return &RegistrationProfile{} },
		GetID: func(record *RegistrationProfile) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *RegistrationProfile, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "activation_key"
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (a *profiles) GetByID(ctx context.Context, id string) (*RegistrationProfile, error) {
	return a.Repository.GetByID(ctx, id)
}

func (a *profiles) GetByActivationKey(ctx context.Context, key string) (*RegistrationProfile, error) {
	record := &RegistrationProfile{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.activation_key = ?", strings.TrimSpace(key)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"activation_key": key,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *profiles) Create(ctx context.Context, record *RegistrationProfile) (*RegistrationProfile, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *profiles) CreateTx(ctx context.Context, tx bun.IDB, record *RegistrationProfile) (*RegistrationProfile, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.ActivationKey == "" {
		record.ActivationKey = NewActivationKey()
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *profiles) ConsumeTx(ctx context.Context, tx bun.IDB, key string) (*RegistrationProfile, error) {
	now := time.Now()
	res, err := a.Repository.RawTx(ctx, tx, ConsumeActivationKeySQL, now, strings.TrimSpace(key))
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"activation_key": key,
			})
	}

	return res[0], nil
}
