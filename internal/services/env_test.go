package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"barter/internal/domain"
	"barter/internal/metrics"
	"barter/internal/repos"
	"barter/internal/services"
)

type recorder struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
}

func (r *recorder) Publish(_ context.Context, subject string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recorder) Close() {}

func (r *recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.subjects...)
}

type env struct {
	db        *sqlx.DB
	users     *repos.UserRepo
	ads       *services.AdService
	proposals *services.ProposalService
	events    *recorder
	metrics   *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := metrics.New("test")
	rec := &recorder{}
	adRepo := repos.NewAdRepo(db)
	e := &env{
		db:        db,
		users:     repos.NewUserRepo(db),
		ads:       services.NewAdService(adRepo, m),
		proposals: services.NewProposalService(db, adRepo, repos.NewProposalRepo(db), rec, m),
		events:    rec,
		metrics:   m,
	}
	// deterministic, strictly increasing clock
	var mu sync.Mutex
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	e.ads.Now = now
	e.proposals.Now = now
	return e
}

func (e *env) user(t *testing.T, name string) domain.Principal {
	t.Helper()
	id, err := e.users.Create(context.Background(), name, name+"@example.com", "x", "2024-01-01T00:00:00.000000Z")
	require.NoError(t, err)
	return domain.Principal{UserID: id, Username: name}
}

func (e *env) ad(t *testing.T, p domain.Principal, title string) domain.Ad {
	t.Helper()
	ad, err := e.ads.Create(context.Background(), p, domain.AdInput{
		Title: title, Description: "a " + title, Category: "books", Condition: "used",
	})
	require.NoError(t, err)
	return ad
}

func (e *env) adExists(t *testing.T, id int64) bool {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, `SELECT COUNT(*) FROM ads WHERE ad_id = ?`, id))
	return n == 1
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
