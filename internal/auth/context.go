package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxCompanyID
	ctxSquadID
	ctxRole
)

func WithIdentity(ctx context.Context, userID, companyID, squadID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxCompanyID, companyID)
	ctx = context.WithValue(ctx, ctxSquadID, squadID)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func CompanyID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxCompanyID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("company_id not in context")
}

// SquadID is optional; absence is not an error.
func SquadID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxSquadID).(string); ok {
		return s
	}
	return ""
}

func Role(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRole)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
