package models

import (
	"context"
	"testing"

	"bitbucket.org/fieldworks/dockets_backend/utils"
)

func roleCtx(role UserRole, contractorId int) context.Context {
	ctx := utils.SetUserRoleInContext(context.Background(), string(role))
	if contractorId > 0 {
		ctx = utils.SetContractorIdInContext(ctx, contractorId)
	}
	return ctx
}

func TestSubmitScopeCheck(t *testing.T) {
	cases := []struct {
		name         string
		ctx          context.Context
		contractorId int
		allowed      bool
	}{
		{"admin any contractor", roleCtx(UserRoleAdmin, 0), 42, true},
		{"worker own contractor", roleCtx(UserRoleWorker, 42), 42, true},
		{"worker other contractor", roleCtx(UserRoleWorker, 7), 42, false},
		{"worker without contractor link", roleCtx(UserRoleWorker, 0), 42, false},
		{"supervisor", roleCtx(UserRoleSupervisor, 0), 42, false},
		{"no session role", context.Background(), 42, false},
	}
	for _, tc := range cases {
		err := SubmitScopeCheck(tc.ctx, tc.contractorId)
		if tc.allowed && err != nil {
			t.Errorf("%s: expected allow, got %v", tc.name, err)
		}
		if !tc.allowed && err != utils.ErrorForbidden {
			t.Errorf("%s: expected forbidden, got %v", tc.name, err)
		}
	}
}

func TestContractorScopeCheck_ReadVisibility(t *testing.T) {
	// Reads stay wider than submission: a supervisor may view any
	// contractor's week, a worker only their own.
	if err := ContractorScopeCheck(roleCtx(UserRoleSupervisor, 0), 42); err != nil {
		t.Errorf("supervisor read should pass, got %v", err)
	}
	if err := ContractorScopeCheck(roleCtx(UserRoleWorker, 42), 42); err != nil {
		t.Errorf("worker reading own week should pass, got %v", err)
	}
	if err := ContractorScopeCheck(roleCtx(UserRoleWorker, 7), 42); err != utils.ErrorForbidden {
		t.Errorf("worker reading another contractor should be forbidden, got %v", err)
	}
}
