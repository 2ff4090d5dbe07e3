package deal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/activity"
	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/authz"
	"github.com/vantagecrm/api/internal/client"
	"github.com/vantagecrm/api/internal/user"
)

// mockDealRepo's Mutate runs the caller's closure against the deal the
// expectation returns, the way the real repository runs it against the
// locked row, and records the deltas the closures derive.
type mockDealRepo struct {
	mock.Mock
	deltas []float64
}

func (m *mockDealRepo) CreateWithDelta(db *gorm.DB, d *Deal, delta float64, entry *activity.Activity) error {
	return m.Called(db, d, delta, entry).Error(0)
}

func (m *mockDealRepo) FindByID(db *gorm.DB, id uint) (*Deal, error) {
	args := m.Called(db, id)
	if d, ok := args.Get(0).(*Deal); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDealRepo) List(db *gorm.DB, scope authz.AccessScope, archived bool) ([]Deal, error) {
	args := m.Called(db, scope, archived)
	return args.Get(0).([]Deal), args.Error(1)
}

func (m *mockDealRepo) Mutate(db *gorm.DB, id uint, entry *activity.Activity, fn func(d *Deal) (float64, error)) (*Deal, error) {
	args := m.Called(db, id, entry)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	d := args.Get(0).(*Deal)
	delta, err := fn(d)
	if err != nil {
		return nil, err
	}
	m.deltas = append(m.deltas, delta)
	entry.DealID = &d.ID
	entry.ClientID = &d.ClientID
	return d, nil
}

type mockClientRepo struct{ mock.Mock }

func (m *mockClientRepo) Save(db *gorm.DB, c *client.Client) error {
	return m.Called(db, c).Error(0)
}

func (m *mockClientRepo) FindByID(db *gorm.DB, id uint) (*client.Client, error) {
	args := m.Called(db, id)
	if c, ok := args.Get(0).(*client.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClientRepo) List(db *gorm.DB, scope authz.AccessScope) ([]client.Client, error) {
	args := m.Called(db, scope)
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *mockClientRepo) Update(db *gorm.DB, c *client.Client) error {
	return m.Called(db, c).Error(0)
}

func (m *mockClientRepo) AddToLifetimeValue(db *gorm.DB, clientID uint, delta float64) error {
	return m.Called(db, clientID, delta).Error(0)
}

func (m *mockClientRepo) SetLifetimeValue(db *gorm.DB, clientID uint, value float64) error {
	return m.Called(db, clientID, value).Error(0)
}

func (m *mockClientRepo) Totals(db *gorm.DB, clientID uint) (*client.Totals, error) {
	args := m.Called(db, clientID)
	if t, ok := args.Get(0).(*client.Totals); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Save(db *gorm.DB, u *user.User) error {
	return m.Called(db, u).Error(0)
}

func (m *mockUserRepo) FindByID(db *gorm.DB, id uint) (*user.User, error) {
	args := m.Called(db, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByUsername(db *gorm.DB, username string) (*user.User, error) {
	args := m.Called(db, username)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) List(db *gorm.DB) ([]user.User, error) {
	args := m.Called(db)
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *mockUserRepo) Update(db *gorm.DB, u *user.User) error {
	return m.Called(db, u).Error(0)
}

func newTestService(repo *mockDealRepo, clients *mockClientRepo) *Service {
	return &Service{Repo: repo, Clients: clients, Users: &mockUserRepo{}, Log: zap.NewNop()}
}

func floatPtr(v float64) *float64 { return &v }

func stagePtr(s Stage) *Stage { return &s }

var owner = authz.Requester{UserID: 7, Role: authz.RoleEmployee}

func TestCreateDefaultsAndOwner(t *testing.T) {
	repo := &mockDealRepo{}
	clients := &mockClientRepo{}
	svc := newTestService(repo, clients)

	clients.On("FindByID", mock.Anything, uint(3)).
		Return(&client.Client{ID: 3, AccountManagerID: 7}, nil)
	repo.On("CreateWithDelta", mock.Anything, mock.Anything, 0.0, mock.Anything).Return(nil)

	d, err := svc.Create(owner, 3, &CreateDealRequest{Title: "Annual contract", Value: floatPtr(1000)})
	require.NoError(t, err)

	assert.Equal(t, StageQualification, d.Stage)
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, uint(7), d.OwnerID, "owner defaults to the client's account manager")
	assert.Nil(t, d.ActualCloseDate)
	repo.AssertExpectations(t)
}

func TestCreateBornWonCountsImmediately(t *testing.T) {
	repo := &mockDealRepo{}
	clients := &mockClientRepo{}
	svc := newTestService(repo, clients)

	clients.On("FindByID", mock.Anything, uint(3)).
		Return(&client.Client{ID: 3, AccountManagerID: 7}, nil)
	repo.On("CreateWithDelta", mock.Anything, mock.Anything, 2500.0, mock.Anything).Return(nil)

	d, err := svc.Create(owner, 3, &CreateDealRequest{
		Title: "Renewal",
		Value: floatPtr(2500),
		Stage: stagePtr(StageClosedWon),
	})
	require.NoError(t, err)
	assert.NotNil(t, d.ActualCloseDate)
	repo.AssertExpectations(t)
}

func TestCreateEmployeeCannotReassignOwner(t *testing.T) {
	repo := &mockDealRepo{}
	clients := &mockClientRepo{}
	svc := newTestService(repo, clients)

	clients.On("FindByID", mock.Anything, uint(3)).
		Return(&client.Client{ID: 3, AccountManagerID: 7}, nil)

	other := uint(42)
	_, err := svc.Create(owner, 3, &CreateDealRequest{
		Title:   "Annual contract",
		Value:   floatPtr(1000),
		OwnerID: &other,
	})
	var aErr *apperr.AuthorizationError
	assert.ErrorAs(t, err, &aErr)
	repo.AssertNotCalled(t, "CreateWithDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReassignedOwnerMustExist(t *testing.T) {
	manager := authz.Requester{UserID: 2, Role: authz.RoleManager}

	t.Run("unknown user rejected", func(t *testing.T) {
		repo := &mockDealRepo{}
		clients := &mockClientRepo{}
		users := &mockUserRepo{}
		svc := newTestService(repo, clients)
		svc.Users = users

		clients.On("FindByID", mock.Anything, uint(3)).
			Return(&client.Client{ID: 3, AccountManagerID: 7}, nil)
		users.On("FindByID", mock.Anything, uint(404)).
			Return(nil, apperr.ErrNotFound)

		missing := uint(404)
		_, err := svc.Create(manager, 3, &CreateDealRequest{
			Title:   "Annual contract",
			Value:   floatPtr(1000),
			OwnerID: &missing,
		})
		var vErr *apperr.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "ownerId", vErr.Field)
		repo.AssertNotCalled(t, "CreateWithDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("existing user assigned", func(t *testing.T) {
		repo := &mockDealRepo{}
		clients := &mockClientRepo{}
		users := &mockUserRepo{}
		svc := newTestService(repo, clients)
		svc.Users = users

		clients.On("FindByID", mock.Anything, uint(3)).
			Return(&client.Client{ID: 3, AccountManagerID: 7}, nil)
		users.On("FindByID", mock.Anything, uint(9)).
			Return(&user.User{ID: 9}, nil)
		repo.On("CreateWithDelta", mock.Anything, mock.Anything, 0.0, mock.Anything).Return(nil)

		assignee := uint(9)
		d, err := svc.Create(manager, 3, &CreateDealRequest{
			Title:   "Annual contract",
			Value:   floatPtr(1000),
			OwnerID: &assignee,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(9), d.OwnerID)
	})
}

func TestUpdateOpenToWonAddsPatchedValue(t *testing.T) {
	repo := &mockDealRepo{}
	svc := newTestService(repo, &mockClientRepo{})

	existing := &Deal{ID: 10, Title: "Annual contract", Value: 1000, Stage: StageQualification, ClientID: 3, OwnerID: 7}
	repo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(existing, nil)

	d, err := svc.Update(owner, 10, &UpdateDealRequest{
		Stage: stagePtr(StageClosedWon),
		Value: floatPtr(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, StageClosedWon, d.Stage)
	assert.Equal(t, 1500.0, d.Value)
	assert.NotNil(t, d.ActualCloseDate)
	assert.Equal(t, []float64{1500}, repo.deltas)
	repo.AssertExpectations(t)
}

func TestUpdateWonToOpenReversesPrePatchValue(t *testing.T) {
	repo := &mockDealRepo{}
	svc := newTestService(repo, &mockClientRepo{})

	existing := &Deal{ID: 10, Title: "Annual contract", Value: 1000, Stage: StageClosedWon, ClientID: 3, OwnerID: 7}
	repo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(existing, nil)

	d, err := svc.Update(owner, 10, &UpdateDealRequest{
		Stage: stagePtr(StageNegotiation),
		Value: floatPtr(2000),
	})
	require.NoError(t, err)
	assert.Equal(t, StageNegotiation, d.Stage)
	assert.Equal(t, 2000.0, d.Value)
	// Reversal subtracts what was counted (1000), even though the patch
	// also raises the value to 2000.
	assert.Equal(t, []float64{-1000}, repo.deltas)
	repo.AssertExpectations(t)
}

func TestUpdateWonStaysWonNoDoubleCount(t *testing.T) {
	repo := &mockDealRepo{}
	svc := newTestService(repo, &mockClientRepo{})

	existing := &Deal{ID: 10, Title: "Annual contract", Value: 1000, Stage: StageClosedWon, ClientID: 3, OwnerID: 7}
	repo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(existing, nil)

	_, err := svc.Update(owner, 10, &UpdateDealRequest{
		Stage: stagePtr(StageClosedWon),
		Value: floatPtr(9999),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, repo.deltas)
	repo.AssertExpectations(t)
}

func TestUpdateConcurrentWinsCountOnce(t *testing.T) {
	repo := &mockDealRepo{}
	svc := newTestService(repo, &mockClientRepo{})

	// Both callers snapshot the deal while it is still open, then their
	// mutations run one after the other against the same row, as the row
	// lock serializes them. The second mutation sees CLOSED_WON already
	// committed and must derive a zero delta from that fresh state, not
	// from its stale snapshot.
	shared := &Deal{ID: 10, Title: "Annual contract", Value: 1000, Stage: StageQualification, ClientID: 3, OwnerID: 7}
	staleA := *shared
	staleB := *shared
	repo.On("FindByID", mock.Anything, uint(10)).Return(&staleA, nil).Once()
	repo.On("FindByID", mock.Anything, uint(10)).Return(&staleB, nil).Once()
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(shared, nil)

	patch := &UpdateDealRequest{Stage: stagePtr(StageClosedWon)}
	_, err := svc.Update(owner, 10, patch)
	require.NoError(t, err)
	_, err = svc.Update(owner, 10, patch)
	require.NoError(t, err)

	assert.Equal(t, []float64{1000, 0}, repo.deltas, "the win counts exactly once")
	repo.AssertExpectations(t)
}

func TestUpdateOpenToLostNoDelta(t *testing.T) {
	repo := &mockDealRepo{}
	svc := newTestService(repo, &mockClientRepo{})

	existing := &Deal{ID: 10, Title: "Annual contract", Value: 1000, Stage: StageNegotiation, ClientID: 3, OwnerID: 7}
	repo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(existing, nil)

	d, err := svc.Update(owner, 10, &UpdateDealRequest{Stage: stagePtr(StageClosedLost)})
	require.NoError(t, err)
	assert.NotNil(t, d.ActualCloseDate, "losing still closes the deal")
	assert.Equal(t, []float64{0}, repo.deltas)
	repo.AssertExpectations(t)
}

func TestUpdateArchivedDealRejected(t *testing.T) {
	repo := &mockDealRepo{}
	svc := newTestService(repo, &mockClientRepo{})

	archived := &Deal{ID: 10, Stage: StageClosedWon, OwnerID: 7, IsDeleted: true}
	repo.On("FindByID", mock.Anything, uint(10)).Return(archived, nil)
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(archived, nil)

	_, err := svc.Update(owner, 10, &UpdateDealRequest{Value: floatPtr(1)})
	var cErr *apperr.ConflictError
	assert.ErrorAs(t, err, &cErr)
	assert.Empty(t, repo.deltas, "the rejected patch never reaches the cascade")
}

func TestSoftDelete(t *testing.T) {
	manager := authz.Requester{UserID: 7, Role: authz.RoleManager}

	t.Run("open deal cannot be archived", func(t *testing.T) {
		repo := &mockDealRepo{}
		svc := newTestService(repo, &mockClientRepo{})

		open := &Deal{ID: 10, Stage: StageNegotiation, OwnerID: 7}
		repo.On("FindByID", mock.Anything, uint(10)).Return(open, nil)
		repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(open, nil)

		_, err := svc.SoftDelete(manager, 10)
		var vErr *apperr.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "stage", vErr.Field)
	})

	t.Run("closed lost deal archives", func(t *testing.T) {
		repo := &mockDealRepo{}
		svc := newTestService(repo, &mockClientRepo{})

		existing := &Deal{ID: 10, Stage: StageClosedLost, ClientID: 3, OwnerID: 7}
		repo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
		repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(existing, nil)

		d, err := svc.SoftDelete(manager, 10)
		require.NoError(t, err)
		assert.True(t, d.IsDeleted)
		assert.NotNil(t, d.DeletedAt)
		require.NotNil(t, d.DeletedByID)
		assert.Equal(t, uint(7), *d.DeletedByID)
		// Archiving never touches lifetime value.
		assert.Equal(t, []float64{0}, repo.deltas)
	})

	t.Run("employee denied", func(t *testing.T) {
		repo := &mockDealRepo{}
		svc := newTestService(repo, &mockClientRepo{})

		repo.On("FindByID", mock.Anything, uint(10)).
			Return(&Deal{ID: 10, Stage: StageClosedWon, OwnerID: 7}, nil)

		_, err := svc.SoftDelete(owner, 10)
		var aErr *apperr.AuthorizationError
		assert.ErrorAs(t, err, &aErr)
	})

	t.Run("already archived conflicts", func(t *testing.T) {
		repo := &mockDealRepo{}
		svc := newTestService(repo, &mockClientRepo{})

		archived := &Deal{ID: 10, Stage: StageClosedWon, OwnerID: 7, IsDeleted: true}
		repo.On("FindByID", mock.Anything, uint(10)).Return(archived, nil)
		repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(archived, nil)

		_, err := svc.SoftDelete(manager, 10)
		var cErr *apperr.ConflictError
		assert.ErrorAs(t, err, &cErr)
	})
}

func TestRestore(t *testing.T) {
	manager := authz.Requester{UserID: 7, Role: authz.RoleManager}

	t.Run("archived deal restores", func(t *testing.T) {
		repo := &mockDealRepo{}
		svc := newTestService(repo, &mockClientRepo{})

		deletedBy := uint(7)
		existing := &Deal{ID: 10, Stage: StageClosedWon, ClientID: 3, OwnerID: 7, IsDeleted: true, DeletedByID: &deletedBy}
		repo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
		repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(existing, nil)

		d, err := svc.Restore(manager, 10)
		require.NoError(t, err)
		assert.False(t, d.IsDeleted)
		assert.Nil(t, d.DeletedAt)
		assert.Nil(t, d.DeletedByID)
	})

	t.Run("active deal cannot be restored", func(t *testing.T) {
		repo := &mockDealRepo{}
		svc := newTestService(repo, &mockClientRepo{})

		active := &Deal{ID: 10, Stage: StageClosedWon, OwnerID: 7}
		repo.On("FindByID", mock.Anything, uint(10)).Return(active, nil)
		repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(active, nil)

		_, err := svc.Restore(manager, 10)
		var cErr *apperr.ConflictError
		assert.ErrorAs(t, err, &cErr)
	})
}

func TestBuildPipelineView(t *testing.T) {
	deals := []Deal{
		{ID: 1, Stage: StageQualification, Value: 100},
		{ID: 2, Stage: StageQualification, Value: 200},
		{ID: 3, Stage: StageNegotiation, Value: 400},
		{ID: 4, Stage: StageClosedWon, Value: 800},
		{ID: 5, Stage: StageClosedLost, Value: 1600},
	}

	view := BuildPipelineView(deals)

	assert.Len(t, view.DealsByStage, len(AllStages), "every stage bucket is present")
	for _, st := range AllStages {
		bucket, ok := view.DealsByStage[st]
		require.True(t, ok)
		assert.NotNil(t, bucket.Deals)
	}

	assert.Len(t, view.DealsByStage[StageQualification].Deals, 2)
	assert.Equal(t, 300.0, view.StageValues[StageQualification])
	assert.Equal(t, 400.0, view.StageValues[StageNegotiation])
	assert.Equal(t, 800.0, view.StageValues[StageClosedWon])
	assert.Equal(t, 700.0, view.TotalValue, "closed deals stay out of the open-pipeline total")
}

func TestBuildPipelineViewEmpty(t *testing.T) {
	view := BuildPipelineView(nil)
	assert.Len(t, view.DealsByStage, len(AllStages))
	assert.Zero(t, view.TotalValue)
}
