package balancer

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrNoAdmins = errors.New("no admins configured")

type Repo interface {
	CountPendingByAdmins(ctx context.Context, admins []string) (map[string]int, error)
}

// Roster is the ordered list of admin handles. Order breaks load ties.
type Roster []string

type Balancer struct {
	repo   Repo
	roster Roster
}

func New(repo Repo, roster Roster) *Balancer {
	return &Balancer{
		repo:   repo,
		roster: roster,
	}
}

func (b *Balancer) Roster() Roster {
	return b.roster
}

// PickLeastLoaded returns the handle with the fewest pending requests.
func (b *Balancer) PickLeastLoaded(ctx context.Context) (string, error) {
	if len(b.roster) == 0 {
		return "", ErrNoAdmins
	}
	counts, err := b.repo.CountPendingByAdmins(ctx, b.roster)
	if err != nil {
		zap.L().Error("failed to count pending requests per admin", zap.Error(err))
		return "", err
	}
	return LeastLoaded(b.roster, counts)
}

// LeastLoaded picks the first handle of roster with the lowest count.
// Handles missing from counts have no pending requests.
func LeastLoaded(roster Roster, counts map[string]int) (string, error) {
	if len(roster) == 0 {
		return "", ErrNoAdmins
	}
	best, bestLoad := roster[0], counts[roster[0]]
	for _, handle := range roster[1:] {
		if load := counts[handle]; load < bestLoad {
			best, bestLoad = handle, load
		}
	}
	return best, nil
}
