package approval_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-institute/internal/access"
	"go-institute/internal/approval"
	approvalerrors "go-institute/internal/approval/errors"
	"go-institute/internal/audit"
	"go-institute/internal/domain"
	"go-institute/internal/events"
	"go-institute/internal/messaging/kafka"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/counter"
	counterMock "go-institute/internal/shared/counter/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type memRepository struct {
	mu           sync.Mutex
	rows         map[string]approval.Request
	updates      int
	lastQuery    approval.ListQuery
	beforeUpdate func(rows map[string]approval.Request)
	createErr    error
}

func newMemRepository() *memRepository {
	return &memRepository{rows: map[string]approval.Request{}}
}

func (m *memRepository) WithTx(tx *sql.Tx) approval.Repository { return m }

func (m *memRepository) Create(ctx context.Context, req *approval.Request) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req.CreatedAt = time.Now().UTC()
	m.rows[req.ID.String()] = *req
	return nil
}

func (m *memRepository) FindByID(ctx context.Context, id string) (*approval.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memRepository) List(ctx context.Context, q approval.ListQuery) ([]approval.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	out := make([]approval.Request, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRepository) UpdateStatus(ctx context.Context, id, from, to string, fields map[string]any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeUpdate != nil {
		m.beforeUpdate(m.rows)
	}
	r, ok := m.rows[id]
	if !ok || r.Status != from {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case "branch_approved_by":
			u := v.(uuid.UUID)
			r.BranchApprovedBy = &u
		case "branch_approved_at":
			t := v.(time.Time)
			r.BranchApprovedAt = &t
		case "admin_approved_by":
			u := v.(uuid.UUID)
			r.AdminApprovedBy = &u
		case "admin_approved_at":
			t := v.(time.Time)
			r.AdminApprovedAt = &t
		case "rejected_by":
			u := v.(uuid.UUID)
			r.RejectedBy = &u
		case "rejected_at":
			t := v.(time.Time)
			r.RejectedAt = &t
		case "rejection_reason":
			s := v.(string)
			r.RejectionReason = &s
		}
	}
	r.Status = to
	m.rows[id] = r
	m.updates++
	return true, nil
}

func (m *memRepository) put(r approval.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID.String()] = r
}

func (m *memRepository) get(id string) approval.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type fakeCounter struct {
	next int64
	err  error
}

func (f *fakeCounter) WithTx(tx *sql.Tx) counter.Repository { return f }

func (f *fakeCounter) GetNextValue(ctx context.Context, branchID, counterType string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	return f.next, nil
}

type recordingOutbox struct {
	events []kafka.OutboxEvent
}

func (r *recordingOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return r }

func (r *recordingOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (r *recordingOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (r *recordingOutbox) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakePlacement struct {
	branches map[string]string
}

func (f *fakePlacement) BranchOf(ctx context.Context, accountID string) (string, bool, error) {
	b, ok := f.branches[accountID]
	return b, ok, nil
}

type recordingAuditLogger struct {
	entries []audit.Log
}

func (r *recordingAuditLogger) Log(ctx context.Context, entry audit.Log) {
	r.entries = append(r.entries, entry)
}

type approvalDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	repo      *memRepository
	counter   *fakeCounter
	outbox    *recordingOutbox
	placement *fakePlacement
	audit     *recordingAuditLogger
	service   approval.Service
}

func setupApprovalTest(t *testing.T) *approvalDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	guard, err := access.NewGuard()
	require.NoError(t, err)

	deps := &approvalDeps{
		db:        db,
		sqlMock:   sqlMock,
		repo:      newMemRepository(),
		counter:   &fakeCounter{},
		outbox:    &recordingOutbox{},
		placement: &fakePlacement{branches: map[string]string{}},
		audit:     &recordingAuditLogger{},
	}
	deps.service = approval.NewServiceWithOutbox(db, deps.repo, deps.placement, deps.counter, deps.outbox, guard, deps.audit)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func staff(role domain.Role, branchID string) domain.Actor {
	return domain.NewActor(uuid.NewString(), domain.NewRoleSet(role), domain.BranchScope(branchID, ""))
}

func instituteAdmin() domain.Actor {
	return domain.NewActor(uuid.NewString(), domain.NewRoleSet(domain.RoleInstituteAdmin), domain.GlobalScope())
}

func seedRequest(repo *memRepository, branchID, status string) approval.Request {
	r := approval.Request{
		ID:          uuid.New(),
		ReferenceNo: "REQ-000001",
		BranchID:    uuid.MustParse(branchID),
		RequesterID: uuid.New(),
		RequestType: approval.TypeLeave,
		Subject:     "Day off",
		Status:      status,
	}
	if status == approval.StatusRejected {
		reason := "seeded"
		r.RejectionReason = &reason
	}
	repo.put(r)
	return r
}

func TestTransitionTable(t *testing.T) {
	allowed := map[[2]string]bool{
		{approval.StatusPending, approval.StatusBranchApproved}:       true,
		{approval.StatusPending, approval.StatusRejected}:             true,
		{approval.StatusBranchApproved, approval.StatusAdminApproved}: true,
		{approval.StatusBranchApproved, approval.StatusRejected}:      true,
	}

	for _, from := range approval.AllStatuses {
		for _, to := range approval.AllStatuses {
			assert.Equal(t, allowed[[2]string{from, to}], approval.CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.False(t, approval.IsTerminal(approval.StatusPending))
	assert.False(t, approval.IsTerminal(approval.StatusBranchApproved))
	assert.True(t, approval.IsTerminal(approval.StatusAdminApproved))
	assert.True(t, approval.IsTerminal(approval.StatusRejected))
}

func TestApprovalService_Submit(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.NewString()

	t.Run("success snapshots branch and numbers the request", func(t *testing.T) {
		deps := setupApprovalTest(t)
		actor := staff(domain.RoleTeacher, branchID)
		deps.placement.branches[actor.AccountID] = branchID
		deps.counter.next = 122
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Submit(ctx, actor, approval.SubmitRequest{
			RequestType: approval.TypeResource,
			Subject:     "Projector",
			Description: "Room 2 projector is broken",
		})

		require.NoError(t, err)
		assert.Equal(t, approval.StatusPending, resp.Status)
		assert.Equal(t, "REQ-000123", resp.ReferenceNo)
		assert.Equal(t, branchID, resp.BranchID)
		assert.Equal(t, actor.AccountID, resp.RequesterID)
		assert.Nil(t, resp.RejectionReason)

		require.Len(t, deps.outbox.events, 1)
		ev := deps.outbox.events[0]
		assert.Equal(t, events.RequestLifecycleTopic, ev.Topic)
		assert.Equal(t, events.RequestSubmitted, ev.EventType)
		assert.Equal(t, kafka.OutboxStatusPending, ev.Status)

		var payload events.RequestLifecycleEvent
		require.NoError(t, json.Unmarshal(ev.Payload, &payload))
		assert.Equal(t, resp.ID, payload.RequestID)
		assert.Equal(t, approval.StatusPending, payload.ToStatus)

		require.Len(t, deps.audit.entries, 1)
		assert.Equal(t, "REQUEST_SUBMITTED", deps.audit.entries[0].Action)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative student cannot submit", func(t *testing.T) {
		deps := setupApprovalTest(t)
		actor := staff(domain.RoleStudent, branchID)

		_, err := deps.service.Submit(ctx, actor, approval.SubmitRequest{RequestType: approval.TypeLeave, Subject: "x"})

		assert.ErrorIs(t, err, approvalerrors.ErrRequesterNotEmployee)
	})

	t.Run("negative blocked cannot submit", func(t *testing.T) {
		deps := setupApprovalTest(t)
		actor := domain.NewActor(uuid.NewString(), domain.NewRoleSet(), domain.Scope{})

		_, err := deps.service.Submit(ctx, actor, approval.SubmitRequest{RequestType: approval.TypeLeave, Subject: "x"})

		assert.ErrorIs(t, err, approvalerrors.ErrRequesterNotEmployee)
	})

	t.Run("negative requester without branch", func(t *testing.T) {
		deps := setupApprovalTest(t)
		actor := staff(domain.RoleSupport, branchID)

		_, err := deps.service.Submit(ctx, actor, approval.SubmitRequest{RequestType: approval.TypeProblem, Subject: "x"})

		assert.ErrorIs(t, err, approvalerrors.ErrRequesterBranchMissing)
	})

	t.Run("negative blank subject", func(t *testing.T) {
		deps := setupApprovalTest(t)
		actor := staff(domain.RoleSales, branchID)

		_, err := deps.service.Submit(ctx, actor, approval.SubmitRequest{RequestType: approval.TypeOther, Subject: "   "})

		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("negative unknown type", func(t *testing.T) {
		deps := setupApprovalTest(t)
		actor := staff(domain.RoleSales, branchID)

		_, err := deps.service.Submit(ctx, actor, approval.SubmitRequest{RequestType: "vacation", Subject: "x"})

		assert.ErrorIs(t, err, approvalerrors.ErrInvalidRequestType)
	})

	t.Run("negative counter failure rolls back", func(t *testing.T) {
		deps := setupApprovalTest(t)
		actor := staff(domain.RoleTeacher, branchID)
		deps.placement.branches[actor.AccountID] = branchID
		deps.counter.err = errors.New("db down")
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Submit(ctx, actor, approval.SubmitRequest{RequestType: approval.TypeLeave, Subject: "x"})

		assert.EqualError(t, err, "db down")
		assert.Empty(t, deps.outbox.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestApprovalService_SubmitNumbersPerBranch(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.NewString()

	ctrl := gomock.NewController(t)
	counterRepo := counterMock.NewMockRepository(ctrl)
	txCounter := counterMock.NewMockRepository(ctrl)

	deps := setupApprovalTest(t)
	guard, err := access.NewGuard()
	require.NoError(t, err)
	service := approval.NewService(deps.db, deps.repo, deps.placement, counterRepo, guard, nil)

	actor := staff(domain.RoleSupport, branchID)
	deps.placement.branches[actor.AccountID] = branchID

	counterRepo.EXPECT().WithTx(gomock.Not(gomock.Nil())).Return(txCounter)
	txCounter.EXPECT().GetNextValue(ctx, branchID, counter.TypeRequestReference).Return(int64(42), nil)
	expectTx(t, deps.sqlMock, true)

	resp, err := service.Submit(ctx, actor, approval.SubmitRequest{RequestType: approval.TypeProblem, Subject: "Wifi down"})

	require.NoError(t, err)
	assert.Equal(t, "REQ-000042", resp.ReferenceNo)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestApprovalService_TransitionsFromEveryState(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.NewString()

	type op string
	const (
		opBranch op = "branch_approve"
		opAdmin  op = "admin_approve"
		opReject op = "reject"
	)

	cases := []struct {
		from       string
		op         op
		wantStatus string
		wantErr    error
		writes     bool
	}{
		{approval.StatusPending, opBranch, approval.StatusBranchApproved, nil, true},
		{approval.StatusPending, opAdmin, "", approvalerrors.ErrInvalidTransition, false},
		{approval.StatusPending, opReject, approval.StatusRejected, nil, true},
		{approval.StatusBranchApproved, opBranch, approval.StatusBranchApproved, nil, false},
		{approval.StatusBranchApproved, opAdmin, approval.StatusAdminApproved, nil, true},
		{approval.StatusBranchApproved, opReject, approval.StatusRejected, nil, true},
		{approval.StatusAdminApproved, opBranch, "", approvalerrors.ErrAlreadyFinalized, false},
		{approval.StatusAdminApproved, opAdmin, approval.StatusAdminApproved, nil, false},
		{approval.StatusAdminApproved, opReject, "", approvalerrors.ErrAlreadyFinalized, false},
		{approval.StatusRejected, opBranch, "", approvalerrors.ErrAlreadyFinalized, false},
		{approval.StatusRejected, opAdmin, "", approvalerrors.ErrAlreadyFinalized, false},
		{approval.StatusRejected, opReject, "", approvalerrors.ErrAlreadyFinalized, false},
	}

	for _, tc := range cases {
		t.Run(tc.from+" "+string(tc.op), func(t *testing.T) {
			deps := setupApprovalTest(t)
			seeded := seedRequest(deps.repo, branchID, tc.from)
			actor := instituteAdmin()
			if tc.writes {
				expectTx(t, deps.sqlMock, true)
			}

			var resp approval.RequestResponse
			var err error
			switch tc.op {
			case opBranch:
				resp, err = deps.service.BranchApprove(ctx, actor, seeded.ID.String())
			case opAdmin:
				resp, err = deps.service.AdminApprove(ctx, actor, seeded.ID.String())
			case opReject:
				resp, err = deps.service.Reject(ctx, actor, seeded.ID.String(), "not needed")
			}

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.from, deps.repo.get(seeded.ID.String()).Status)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantStatus, resp.Status)
				assert.Equal(t, tc.wantStatus, deps.repo.get(seeded.ID.String()).Status)
			}
			if tc.writes {
				assert.Equal(t, 1, deps.repo.updates)
				assert.Len(t, deps.outbox.events, 1)
			} else {
				assert.Equal(t, 0, deps.repo.updates)
				assert.Empty(t, deps.outbox.events)
			}
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestApprovalService_Reject(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.NewString()

	t.Run("negative empty reason", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchID, approval.StatusPending)

		for _, reason := range []string{"", "   ", "\t\n"} {
			_, err := deps.service.Reject(ctx, instituteAdmin(), seeded.ID.String(), reason)
			assert.ErrorIs(t, err, approvalerrors.ErrRejectionReasonRequired)
		}
		assert.Equal(t, approval.StatusPending, deps.repo.get(seeded.ID.String()).Status)
	})

	t.Run("success stores reason verbatim", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchID, approval.StatusPending)
		admin := staff(domain.RoleBranchAdmin, branchID)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Reject(ctx, admin, seeded.ID.String(), "  Budget exceeded ")

		require.NoError(t, err)
		assert.Equal(t, approval.StatusRejected, resp.Status)
		require.NotNil(t, resp.RejectionReason)
		assert.Equal(t, "  Budget exceeded ", *resp.RejectionReason)
		assert.Equal(t, admin.AccountID, *resp.RejectedBy)

		stored := deps.repo.get(seeded.ID.String())
		assert.Equal(t, "  Budget exceeded ", *stored.RejectionReason)
		assert.Equal(t, "REQUEST_REJECTED", deps.audit.entries[0].Action)
	})

	t.Run("negative branch admin cannot reject after branch approval", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchID, approval.StatusBranchApproved)

		_, err := deps.service.Reject(ctx, staff(domain.RoleBranchAdmin, branchID), seeded.ID.String(), "late")

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.Equal(t, approval.StatusBranchApproved, deps.repo.get(seeded.ID.String()).Status)
	})
}

func TestApprovalService_BranchApprove(t *testing.T) {
	ctx := context.Background()
	branchX := uuid.NewString()
	branchY := uuid.NewString()

	t.Run("success twice keeps the first approver", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchX, approval.StatusPending)
		admin := staff(domain.RoleBranchAdmin, branchX)
		expectTx(t, deps.sqlMock, true)

		first, err := deps.service.BranchApprove(ctx, admin, seeded.ID.String())
		require.NoError(t, err)

		second, err := deps.service.BranchApprove(ctx, staff(domain.RoleBranchAdmin, branchX), seeded.ID.String())
		require.NoError(t, err)

		assert.Equal(t, approval.StatusBranchApproved, second.Status)
		assert.Equal(t, admin.AccountID, *second.BranchApprovedBy)
		assert.Equal(t, first.BranchApprovedAt, second.BranchApprovedAt)
		assert.Equal(t, 1, deps.repo.updates)
		assert.Len(t, deps.outbox.events, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative cross branch", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchX, approval.StatusPending)

		_, err := deps.service.BranchApprove(ctx, staff(domain.RoleBranchAdmin, branchY), seeded.ID.String())

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.Equal(t, approval.StatusPending, deps.repo.get(seeded.ID.String()).Status)
	})

	t.Run("negative teacher cannot approve", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchX, approval.StatusPending)

		_, err := deps.service.BranchApprove(ctx, staff(domain.RoleTeacher, branchX), seeded.ID.String())

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("negative blocked", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchX, approval.StatusPending)
		blocked := domain.NewActor(uuid.NewString(), domain.NewRoleSet(), domain.Scope{})

		_, err := deps.service.BranchApprove(ctx, blocked, seeded.ID.String())

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("negative unknown and malformed ids", func(t *testing.T) {
		deps := setupApprovalTest(t)
		admin := staff(domain.RoleBranchAdmin, branchX)

		_, err := deps.service.BranchApprove(ctx, admin, uuid.NewString())
		assert.ErrorIs(t, err, approvalerrors.ErrRequestNotFound)

		_, err = deps.service.BranchApprove(ctx, admin, "not-a-uuid")
		assert.ErrorIs(t, err, approvalerrors.ErrRequestNotFound)
	})

	t.Run("success lost race to the same transition", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchX, approval.StatusPending)
		winner := uuid.New()
		deps.repo.beforeUpdate = func(rows map[string]approval.Request) {
			r := rows[seeded.ID.String()]
			r.Status = approval.StatusBranchApproved
			r.BranchApprovedBy = &winner
			rows[seeded.ID.String()] = r
		}
		expectTx(t, deps.sqlMock, false)

		resp, err := deps.service.BranchApprove(ctx, staff(domain.RoleBranchAdmin, branchX), seeded.ID.String())

		require.NoError(t, err)
		assert.Equal(t, approval.StatusBranchApproved, resp.Status)
		assert.Equal(t, winner.String(), *resp.BranchApprovedBy)
		assert.Empty(t, deps.outbox.events)
		assert.Empty(t, deps.audit.entries)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative lost race to a rejection", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchX, approval.StatusPending)
		deps.repo.beforeUpdate = func(rows map[string]approval.Request) {
			r := rows[seeded.ID.String()]
			r.Status = approval.StatusRejected
			rows[seeded.ID.String()] = r
		}
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.BranchApprove(ctx, staff(domain.RoleBranchAdmin, branchX), seeded.ID.String())

		assert.ErrorIs(t, err, apperror.ErrConflict)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestApprovalService_AdminApprove(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.NewString()

	t.Run("negative cannot skip branch tier", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchID, approval.StatusPending)

		_, err := deps.service.AdminApprove(ctx, instituteAdmin(), seeded.ID.String())

		assert.ErrorIs(t, err, approvalerrors.ErrInvalidTransition)
	})

	t.Run("negative branch admin", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchID, approval.StatusBranchApproved)

		_, err := deps.service.AdminApprove(ctx, staff(domain.RoleBranchAdmin, branchID), seeded.ID.String())

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("success self approval across both tiers", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchID, approval.StatusPending)
		both := domain.NewActor(uuid.NewString(),
			domain.NewRoleSet(domain.RoleInstituteAdmin, domain.RoleBranchAdmin),
			domain.GlobalScope(),
		)
		expectTx(t, deps.sqlMock, true)
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.BranchApprove(ctx, both, seeded.ID.String())
		require.NoError(t, err)
		resp, err := deps.service.AdminApprove(ctx, both, seeded.ID.String())
		require.NoError(t, err)

		assert.Equal(t, approval.StatusAdminApproved, resp.Status)
		assert.Equal(t, both.AccountID, *resp.BranchApprovedBy)
		assert.Equal(t, both.AccountID, *resp.AdminApprovedBy)
	})
}

func TestApprovalService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	branchX := uuid.NewString()
	deps := setupApprovalTest(t)

	employee := staff(domain.RoleTeacher, branchX)
	deps.placement.branches[employee.AccountID] = branchX
	branchAdmin := staff(domain.RoleBranchAdmin, branchX)
	firstAdmin := instituteAdmin()
	secondAdmin := instituteAdmin()

	expectTx(t, deps.sqlMock, true)
	expectTx(t, deps.sqlMock, true)
	expectTx(t, deps.sqlMock, true)

	submitted, err := deps.service.Submit(ctx, employee, approval.SubmitRequest{
		RequestType: approval.TypeLeave,
		Subject:     "Two days leave",
	})
	require.NoError(t, err)

	approved, err := deps.service.BranchApprove(ctx, branchAdmin, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusBranchApproved, approved.Status)
	assert.Equal(t, branchAdmin.AccountID, *approved.BranchApprovedBy)

	final, err := deps.service.AdminApprove(ctx, firstAdmin, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusAdminApproved, final.Status)
	assert.Equal(t, firstAdmin.AccountID, *final.AdminApprovedBy)

	again, err := deps.service.AdminApprove(ctx, secondAdmin, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, final, again)

	types := make([]string, 0, len(deps.outbox.events))
	for _, ev := range deps.outbox.events {
		types = append(types, ev.EventType)
	}
	assert.Equal(t, []string{events.RequestSubmitted, events.RequestBranchApproved, events.RequestAdminApproved}, types)

	got, err := deps.service.Get(ctx, employee, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusAdminApproved, got.Status)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestApprovalService_GetAndList(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.NewString()

	t.Run("negative colleague cannot read", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchID, approval.StatusPending)

		_, err := deps.service.Get(ctx, staff(domain.RoleTeacher, branchID), seeded.ID.String())

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("success branch admin reads branch request", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seeded := seedRequest(deps.repo, branchID, approval.StatusPending)

		resp, err := deps.service.Get(ctx, staff(domain.RoleBranchAdmin, branchID), seeded.ID.String())

		require.NoError(t, err)
		assert.Equal(t, seeded.ID.String(), resp.ID)
	})

	t.Run("list scopes by role", func(t *testing.T) {
		deps := setupApprovalTest(t)
		seedRequest(deps.repo, branchID, approval.StatusPending)

		_, err := deps.service.List(ctx, instituteAdmin(), approval.ListFilter{Status: approval.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, approval.ListQuery{Scope: domain.GlobalScope(), Status: approval.StatusPending}, deps.repo.lastQuery)

		_, err = deps.service.List(ctx, staff(domain.RoleBranchAdmin, branchID), approval.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, approval.ListQuery{Scope: domain.BranchScope(branchID, "")}, deps.repo.lastQuery)

		teacher := staff(domain.RoleTeacher, branchID)
		_, err = deps.service.List(ctx, teacher, approval.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, approval.ListQuery{RequesterID: teacher.AccountID}, deps.repo.lastQuery)
	})

	t.Run("negative blocked list", func(t *testing.T) {
		deps := setupApprovalTest(t)

		_, err := deps.service.List(ctx, domain.NewActor(uuid.NewString(), domain.NewRoleSet(), domain.Scope{}), approval.ListFilter{})

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}
