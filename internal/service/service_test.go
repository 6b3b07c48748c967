package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andalize/proptic/internal/config"
	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	repos     *repository.Repositories
	svc       *Services
	tokens    *TokenIssuer
	published *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	tokens := NewTokenIssuer(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "proptic-test"})
	pub := &recordingPublisher{}
	svc := NewServices(repos, tokens, events.NewEmitter(pub, zap.NewNop()), zap.NewNop())
	return &testEnv{repos: repos, svc: svc, tokens: tokens, published: pub}
}

var passportSeq int64

func nextPassport() string {
	return fmt.Sprintf("P%08d", atomic.AddInt64(&passportSeq, 1))
}

func strPtr(s string) *string            { return &s }
func f64Ptr(f float64) *float64          { return &f }
func boolPtr(b bool) *bool               { return &b }
func datePtr(d domain.Date) *domain.Date { return &d }

func (e *testEnv) createUser(t *testing.T, email string) *UserView {
	t.Helper()
	u, err := e.svc.Users.CreateUser(context.Background(), UserInput{
		Email:          strPtr(email),
		Password:       strPtr("password123"),
		FirstName:      strPtr("Jane"),
		LastName:       strPtr("Doe"),
		PassportNumber: strPtr(nextPassport()),
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createProject(t *testing.T, name string) *ProjectView {
	t.Helper()
	p, err := e.svc.Projects.CreateProject(context.Background(), ProjectInput{Name: strPtr(name), Address: strPtr("1 Main St")})
	require.NoError(t, err)
	return p
}

func (e *testEnv) createUnit(t *testing.T, projectID, name string) *UnitView {
	t.Helper()
	u, err := e.svc.Units.CreateUnit(context.Background(), UnitInput{
		PropertyProject: strPtr(projectID),
		UnitName:        strPtr(name),
		Price:           f64Ptr(1500),
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createTenancy(t *testing.T, tenantID, unitID string) *TenancyView {
	t.Helper()
	tv, err := e.svc.Tenancies.CreateTenancy(context.Background(), TenancyInput{
		TenantID:         strPtr(tenantID),
		PropertyUnitID:   strPtr(unitID),
		TenancyStartDate: datePtr(domain.NewDate(2024, time.January, 1)),
		TenancyEndDate:   datePtr(domain.NewDate(2024, time.December, 31)),
		MonthlyRent:      f64Ptr(1500),
	})
	require.NoError(t, err)
	return tv
}

// fieldErrors asserts err is a validation error and returns its fields.
func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.Error(t, err)
	var v *domain.ValidationError
	require.True(t, errors.As(err, &v), "expected validation error, got %v", err)
	return v.Fields
}
