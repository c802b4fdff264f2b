// Package invite generates and probes the BRIDGE-DDDDD invitation codes
// named in spec §6, backed by the Manager.code partial unique index
// (P7: "generation terminates within a bounded number of attempts").
package invite

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	managerrepo "github.com/bridgeos/bridgeos/internal/data/repos/manager"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

const (
	maxAttempts = 10
	suffixDigits = 5
)

type Service struct {
	managers managerrepo.Repo
	log      *logger.Logger
}

func NewService(managers managerrepo.Repo, log *logger.Logger) *Service {
	return &Service{managers: managers, log: log.With("service", "invite.Service")}
}

// Generate produces a unique BRIDGE-DDDDD code, retrying on collision up
// to maxAttempts times before surfacing CodeCollision.
func (s *Service) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := randomCode()
		if err != nil {
			return "", berrors.Wrap(berrors.CodeInternal, "invite.Generate", err)
		}
		inUse, err := s.managers.CodeInUse(ctx, nil, candidate)
		if err != nil {
			return "", berrors.MapWrite("invite.Generate", err)
		}
		if !inUse {
			return candidate, nil
		}
	}
	return "", berrors.New(berrors.CodeCodeCollision, "invite.Generate", "exhausted attempts generating a unique invitation code")
}

// Resolve implements the redemption side of spec §6's invitation link:
// extract the code, find the Manager that owns it.
func (s *Service) Resolve(ctx context.Context, code string) (*domain.Manager, error) {
	mgr, err := s.managers.GetActiveByCode(ctx, nil, code)
	if err != nil {
		return nil, berrors.Wrap(berrors.CodeNotFound, "invite.Resolve", err)
	}
	return mgr, nil
}

func randomCode() (string, error) {
	max := big.NewInt(100000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate random suffix: %w", err)
	}
	return fmt.Sprintf("BRIDGE-%0*d", suffixDigits, n.Int64()), nil
}
