package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/repomanager"
)

// OwnerResolver maps a caller credential to the owner of a ledger.
// Unknown owners are reported as common.ErrOwnerNotFound.
type OwnerResolver interface {
	Resolve(ctx context.Context, credential string) (string, error)
}

// JWTResolver resolves bearer tokens signed with a shared secret and checks
// that the owner they name is registered.
type JWTResolver struct {
	secret      []byte
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewJWTResolver(secret []byte, db *sql.DB, m repomanager.RepositoryManager) *JWTResolver {
	return &JWTResolver{secret: secret, db: db, repomanager: m}
}

func (r *JWTResolver) Resolve(ctx context.Context, token string) (string, error) {
	owner, err := ParseOwner(token, r.secret)
	if err != nil {
		return "", err
	}

	exists, err := r.repomanager.Owners(r.db).Exists(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("error resolving owner: %w", err)
	}
	if !exists {
		return "", common.ErrOwnerNotFound
	}

	return owner, nil
}
