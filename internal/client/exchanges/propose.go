package exchanges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/session"
	"github.com/virapagina/virapagina/internal/logging"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoBooksOffered = errors.New("select at least one book to offer")
	ErrOwnBook        = errors.New("cannot request your own book")
)

// ProposalLeadTime is how far ahead a new proposal's completion date is set.
const ProposalLeadTime = 7 * 24 * time.Hour

// maxParallelProposals bounds the concurrent POST /exchanges calls.
const maxParallelProposals = 4

type ProposalAPI interface {
	ProposeExchange(ctx context.Context, req models.ProposalRequest) (*models.Exchange, error)
}

// Proposer creates exchange proposals: one record per offered book.
type Proposer struct {
	sess session.Reader
	api  ProposalAPI
	log  logging.Logger
	now  func() time.Time
}

func NewProposer(sess session.Reader, api ProposalAPI, log logging.Logger) *Proposer {
	return &Proposer{
		sess: sess,
		api:  api,
		log:  log.With("component", "proposer"),
		now:  time.Now,
	}
}

// Propose asks for requested in exchange for each of offered. All requests
// are sent concurrently; the first failure cancels the rest and is
// returned together with the records created so far.
func (p *Proposer) Propose(ctx context.Context, requested models.Book, offered []int64) ([]models.Exchange, error) {
	user := p.sess.Current().User
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	offered = dedupe(offered)
	if len(offered) == 0 {
		return nil, ErrNoBooksOffered
	}
	if requested.OwnerID == user.ID {
		return nil, ErrOwnBook
	}

	due := p.now().Add(ProposalLeadTime).UTC()
	created := make([]*models.Exchange, len(offered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelProposals)
	for i, bookID := range offered {
		g.Go(func() error {
			ex, err := p.api.ProposeExchange(gctx, models.ProposalRequest{
				RequesterID:     user.ID,
				ProviderID:      requested.OwnerID,
				RequesterBookID: bookID,
				ProviderBookID:  requested.ID,
				CompletionDate:  due,
			})
			if err != nil {
				return fmt.Errorf("offer book %d: %w", bookID, err)
			}
			created[i] = ex
			return nil
		})
	}
	err := g.Wait()

	out := make([]models.Exchange, 0, len(created))
	for _, ex := range created {
		if ex != nil {
			out = append(out, *ex)
		}
	}

	if err != nil {
		p.log.Warn(ctx, "proposal failed", "book_id", requested.ID, "offered", len(offered), "error", err)
		return out, err
	}
	p.log.Info(ctx, "proposals sent", "book_id", requested.ID, "offered", len(offered))
	return out, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
